package matchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_English(t *testing.T) {
	d := NewLanguageDetector()
	code := d.Detect("this is a perfectly ordinary english sentence about keyboards")
	assert.Equal(t, "en", code)
}

func TestDetect_Spanish(t *testing.T) {
	d := NewLanguageDetector()
	code := d.Detect("esta es una frase completamente normal escrita en castellano")
	assert.Equal(t, "es", code)
}

func TestDetect_TooShort(t *testing.T) {
	d := NewLanguageDetector()
	assert.Equal(t, "", d.Detect("hi"))
	assert.Equal(t, "", d.Detect("   "))
	assert.Equal(t, "", d.Detect(""))
}
