package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The display layer reads this record from Redis directly, so the field
// names are a wire contract.
func TestReportWireFormat(t *testing.T) {
	errMsg := "status 503"
	report := Report{
		LastFetchAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LastCount:   100,
		NewCount:    97,
		Total:       12345,
		Status:      StatusError,
		Error:       &errMsg,
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "2025-06-01T12:00:00Z", decoded["last_fetch_at"])
	assert.Equal(t, float64(100), decoded["last_count"])
	assert.Equal(t, float64(97), decoded["new_count"])
	assert.Equal(t, float64(12345), decoded["total"])
	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, "status 503", decoded["error"])
}

func TestReportErrorIsNullable(t *testing.T) {
	raw, err := json.Marshal(Report{Status: StatusSuccess})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["error"])
}

func TestConnect(t *testing.T) {
	client, err := Connect("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	client, err = Connect("localhost:6380")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", client.Options().Addr)

	_, err = Connect("redis://bad url^^")
	assert.Error(t, err)
}
