package matchers

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector tags match snippets with an ISO 639-1 language code
// for display-side filtering. Restricted to a handful of high-volume
// languages to keep the model footprint small.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Portuguese,
	}

	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			WithLowAccuracyMode().
			Build(),
	}
}

// Detect returns the ISO 639-1 code of the detected language, or ""
// when the text is too short or ambiguous.
func (d *LanguageDetector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 20 {
		return ""
	}

	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
