package rate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/flowbalance/rate"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want rate.Rate
	}{
		{"0", 0},
		{"1", 100_000_000},
		{"2.5", 250_000_000},
		{" 7.5 ", 750_000_000},
		{".5", 50_000_000},
		{"3.", 300_000_000},
		{"0.00000001", 1},
		{"1200", 120_000_000_000},
	}
	for _, tc := range cases {
		got, err := rate.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", ".", "-1", "1e3", "abc", "1.2.3", "1,5"} {
		_, err := rate.Parse(in)
		assert.ErrorIs(t, err, rate.ErrSyntax, in)
	}
	_, err := rate.Parse("0.123456789")
	assert.ErrorIs(t, err, rate.ErrPrecision)
	_, err = rate.Parse("999999999999999999999")
	assert.ErrorIs(t, err, rate.ErrRange)
}

func TestString(t *testing.T) {
	assert.Equal(t, "0", rate.Rate(0).String())
	assert.Equal(t, "1", rate.MustParse("1").String())
	assert.Equal(t, "2.5", rate.MustParse("2.5").String())
	assert.Equal(t, "0.33333333", rate.Rate(33_333_333).String())
	assert.Equal(t, "0.00000001", rate.Rate(1).String())
	assert.Equal(t, "1200.05", rate.MustParse("1200.050").String())
}

func TestFromUnits(t *testing.T) {
	r, err := rate.FromUnits(1200)
	require.NoError(t, err)
	assert.Equal(t, rate.MustParse("1200"), r)

	_, err = rate.FromUnits(1 << 62)
	assert.ErrorIs(t, err, rate.ErrRange)
}

func TestGCD(t *testing.T) {
	assert.Equal(t, rate.Rate(10), rate.GCD(270, 260))
	assert.Equal(t, rate.Rate(10), rate.GCDOf([]rate.Rate{270, 270, 260}))
	assert.Equal(t, rate.Rate(7), rate.GCD(0, 7))
	assert.Equal(t, rate.Rate(7), rate.GCD(7, 0))
	assert.Equal(t, rate.Rate(1), rate.GCD(17, 4))
	assert.Equal(t, rate.Rate(0), rate.GCDOf(nil))
	assert.Equal(t, rate.MustParse("0.5"), rate.GCDOf([]rate.Rate{rate.MustParse("1.5"), rate.MustParse("1")}))
}

func TestAdd(t *testing.T) {
	sum, ok := rate.Add(rate.MustParse("1"), rate.MustParse("2.5"))
	assert.True(t, ok)
	assert.Equal(t, rate.MustParse("3.5"), sum)

	_, ok = rate.Add(rate.Max, 1)
	assert.False(t, ok)
	sum, ok = rate.Add(rate.Max, 0)
	assert.True(t, ok)
	assert.Equal(t, rate.Max, sum)
}

// TestSum_Overflow: 2 x 1e11 exceeds rate.Max and must not wrap.
func TestSum_Overflow(t *testing.T) {
	big := rate.MustParse("100000000000")
	_, err := rate.Sum([]rate.Rate{big, big})
	assert.ErrorIs(t, err, rate.ErrOverflow)

	total, err := rate.Sum([]rate.Rate{big, rate.MustParse("0.5")})
	require.NoError(t, err)
	assert.Equal(t, "100000000000.5", total.String())

	total, err = rate.Sum(nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

// TestText: JSON and YAML carry the decimal form.
func TestText(t *testing.T) {
	data, err := json.Marshal([]rate.Rate{rate.MustParse("2.5"), rate.MustParse("1200")})
	require.NoError(t, err)
	assert.Equal(t, `["2.5","1200"]`, string(data))

	var back []rate.Rate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []rate.Rate{rate.MustParse("2.5"), rate.MustParse("1200")}, back)

	var r rate.Rate
	assert.ErrorIs(t, r.UnmarshalText([]byte("1.5.0")), rate.ErrSyntax)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"0.000000001"`), &r), rate.ErrPrecision)
}
