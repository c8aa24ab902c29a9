package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		from  string
		to    string
		want  string
	}{
		{"seconds to hours", "3600", "s", "h", "1"},
		{"hours to minutes", "1.5", "h", "m", "90"},
		{"working day", "1", "d", "h", "8"},
		{"working week", "1", "w", "d", "5"},
		{"long unit names", "7200", "seconds", "hours", "2"},
		{"fractional result", "5400", "s", "h", "1.5"},
		{"tracker format", "1w 2d", "s", "h", "56"},
		{"tracker format with minutes", "1h 30m", "s", "m", "90"},
		{"empty", "", "s", "h", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertDuration(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertDuration_Errors(t *testing.T) {
	_, err := ConvertDuration("10", "parsec", "s")
	assert.Error(t, err)

	_, err = ConvertDuration("10", "s", "fortnight")
	assert.Error(t, err)

	_, err = ConvertDuration("soon", "s", "h")
	assert.Error(t, err)

	_, err = ConvertDuration("3x", "s", "h")
	assert.Error(t, err)
}

func TestValidUnit(t *testing.T) {
	for _, u := range []string{"s", "m", "h", "d", "w", "Hours", " min "} {
		assert.True(t, ValidUnit(u), u)
	}
	assert.False(t, ValidUnit("y"))
	assert.False(t, ValidUnit(""))
}
