package date_test

import (
	"testing"

	"github.com/rakaly/hoi4save/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesBounds(t *testing.T) {
	cases := []struct {
		name                   string
		year                   int16
		month, day, hour       uint8
		ok                     bool
	}{
		{"valid", 1936, 1, 1, 12, true},
		{"zero month rejected", 1936, 0, 1, 12, false},
		{"zero day rejected", 1936, 1, 0, 12, false},
		{"zero hour rejected", 1936, 1, 1, 0, false},
		{"hour above 24 rejected", 1936, 1, 1, 25, false},
		{"hour 24 accepted", 1936, 1, 1, 24, true},
		{"year at floor rejected", -100, 1, 1, 12, false},
		{"year above floor accepted", -99, 1, 1, 12, true},
		{"february 28 ok", 1936, 2, 28, 1, true},
		{"february 29 rejected (no leap years)", 1936, 2, 29, 1, false},
		{"month 13 rejected", 1936, 13, 1, 1, false},
		{"day 31 in april rejected", 1936, 4, 31, 1, false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := date.New(tt.year, tt.month, tt.day, tt.hour)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestGameFormatNoPadding(t *testing.T) {
	d, ok := date.New(1936, 1, 1, 12)
	require.True(t, ok)
	assert.Equal(t, "1936.1.1.12", d.GameFormat())
	assert.Equal(t, "1936.1.1.12", d.String())
}

func TestISO8601Padding(t *testing.T) {
	d, ok := date.New(5, 3, 4, 1)
	require.True(t, ok)
	assert.Equal(t, "0005-03-04T01", d.ISO8601())
}

func TestParseFromStrRoundTrip(t *testing.T) {
	for _, d := range []date.Date{
		mustDate(t, 1936, 1, 1, 12),
		mustDate(t, 1, 1, 1, 1),
		mustDate(t, -99, 12, 31, 24),
		mustDate(t, 3000, 6, 15, 13),
	} {
		parsed, ok := date.ParseFromStr(d.GameFormat())
		require.True(t, ok)
		assert.Equal(t, d, parsed)
	}
}

func TestParseFromStrRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not.a.date.at.all",
		"1936.1.1",
		"1936.1.1.12.5",
		"1936..1.12",
		"abc.1.1.12",
	}
	for _, c := range cases {
		_, ok := date.ParseFromStr(c)
		assert.Falsef(t, ok, "expected %q to be rejected", c)
	}
}

func TestFromBinary(t *testing.T) {
	d, ok := date.FromBinary(60759371)
	require.True(t, ok)
	assert.Equal(t, int16(1936), d.Year())
	assert.Equal(t, uint8(1), d.Month())
	assert.Equal(t, uint8(1), d.Day())
	assert.Equal(t, uint8(12), d.Hour())
	assert.Equal(t, "1936.1.1.12", d.GameFormat())
}

func TestFromBinaryRejectsNegative(t *testing.T) {
	_, ok := date.FromBinary(-1)
	assert.False(t, ok)
}

func TestFromBinaryHeuristic(t *testing.T) {
	d, ok := date.FromBinaryHeuristic(60759371)
	require.True(t, ok)
	assert.Equal(t, "1936.1.1.12", d.GameFormat())

	_, ok = date.FromBinaryHeuristic(-5)
	assert.False(t, ok)
}

func TestDaysUntilAndAddDays(t *testing.T) {
	start := mustDate(t, 1936, 1, 1, 12)
	end := mustDate(t, 1936, 1, 2, 12)

	assert.Equal(t, int32(1), start.DaysUntil(end))
	assert.Equal(t, end, start.AddDays(1))
	assert.Equal(t, start, end.AddDays(-1))
}

func TestCompare(t *testing.T) {
	earlier := mustDate(t, 1936, 1, 1, 1)
	later := mustDate(t, 1936, 1, 1, 2)

	assert.Negative(t, earlier.Compare(later))
	assert.Positive(t, later.Compare(earlier))
	assert.Zero(t, earlier.Compare(earlier))
}

func mustDate(t *testing.T, year int16, month, day, hour uint8) date.Date {
	t.Helper()
	d, ok := date.New(year, month, day, hour)
	require.True(t, ok)

	return d
}
