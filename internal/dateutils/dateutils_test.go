package dateutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-01-05", "2024-01-05"},
		{"05.01.2024", "2024-01-05"},
		{"01/05/2024", "2024-01-05"},
		{"5-Jan-2024", "2024-01-05"},
		{"  2024-01-05  ", "2024-01-05"},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got.Format(LayoutISO), "input %q", tt.input)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestToISODate(t *testing.T) {
	assert.Equal(t, "2024-03-15", ToISODate("15.03.2024"))
	assert.Equal(t, "whatever", ToISODate("whatever"))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-01", MonthKey("2024-01-05"))
	assert.Equal(t, "2023-12", MonthKey("31.12.2023"))
	assert.Equal(t, "", MonthKey("junk"))
}
