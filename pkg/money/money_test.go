package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"100.10", 10010},
		{"99.99", 9999},
		{"150.00", 15000},
		{"150", 15000},
		{"0.5", 50},
		{".75", 75},
		{"1000000.01", 100000001},
	}
	for _, c := range cases {
		got, err := ToMinorUnits(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestToMinorUnitsRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "10.123", "-5.00", "1.2.3", "12.-5", "+12.00", "1e2"} {
		_, err := ToMinorUnits(in)
		assert.Error(t, err, in)
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.Equal(t, "170.00", FromMinorUnits(17000))
	assert.Equal(t, "0.05", FromMinorUnits(5))
	assert.Equal(t, "99.99", FromMinorUnits(9999))
	assert.Equal(t, "-1.50", FromMinorUnits(-150))
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{"0.01", "12.34", "150.00", "99999.99"} {
		minor, err := ToMinorUnits(in)
		require.NoError(t, err)
		assert.Equal(t, in, FromMinorUnits(minor))
	}
}

func TestApplyPercentage(t *testing.T) {
	// 15% off 200.00 -> 170.00
	assert.Equal(t, int64(17000), ApplyPercentage(20000, 15))
	assert.Equal(t, int64(10000), ApplyPercentage(10000, 0))
	assert.Equal(t, int64(0), ApplyPercentage(10000, 100))
	assert.Equal(t, int64(0), ApplyPercentage(10000, 150))
	// rounding: 33.333% of 100.00 -> discount 3333.3 rounds to 3333
	assert.Equal(t, int64(6667), ApplyPercentage(10000, 33.33))
}

func TestApplyFixed(t *testing.T) {
	assert.Equal(t, int64(5000), ApplyFixed(15000, 10000))
	assert.Equal(t, int64(0), ApplyFixed(5000, 10000))
	assert.Equal(t, int64(5000), ApplyFixed(5000, 0))
}
