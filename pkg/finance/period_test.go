package finance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodsPerYear(t *testing.T) {
	tests := []struct {
		name      string
		frequency Frequency
		expected  int
	}{
		{"Daily", Daily, 365},
		{"Biweekly", Biweekly, 26},
		{"Monthly", Monthly, 12},
		{"Zero value defaults to monthly", Frequency(0), 12},
		{"Unknown value defaults to monthly", Frequency(42), 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PeriodsPerYear(tt.frequency))
		})
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		input    string
		expected Frequency
		wantErr  bool
	}{
		{"daily", Daily, false},
		{"Biweekly", Biweekly, false},
		{"  MONTHLY ", Monthly, false},
		{"weekly", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrequency(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFrequencyJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Frequency Frequency `json:"frequency"`
	}{Biweekly})
	require.NoError(t, err)
	assert.JSONEq(t, `{"frequency":"biweekly"}`, string(data))

	var decoded struct {
		Frequency Frequency `json:"frequency"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"frequency":"daily"}`), &decoded))
	assert.Equal(t, Daily, decoded.Frequency)

	assert.Error(t, json.Unmarshal([]byte(`{"frequency":"hourly"}`), &decoded))
}

func TestTotalPeriods(t *testing.T) {
	assert.Equal(t, 12, TotalPeriods(1, Monthly))
	assert.Equal(t, 3650, TotalPeriods(10, Daily))
	assert.Equal(t, 26, TotalPeriods(0, Biweekly), "term below range is clamped to one year")
	assert.Equal(t, 600, TotalPeriods(99, Monthly), "term above range is clamped to fifty years")
}
