package batteryaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMagnitude(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"(3+4j)", 5},
		{"(0-5j)", 5},
		{"(-3-4j)", 5},
		{"(-3+4j)", 5},
		{" (6+8j) ", 10},
		{"(3e-02+4e-02j)", 0.05},
		{"(1.5E+01-2E+01j)", 25},
		{"(0+0j)", 0},
		{"(1+-2j)", math.Sqrt(5)},
		{"(1--2j)", math.Sqrt(5)},
		{"(-1e-3+-2j)", math.Sqrt(4.000001)},
	}
	for _, c := range cases {
		got, ok := ParseMagnitude(c.in)
		assert.True(t, ok, c.in)
		assert.InDelta(t, c.want, got, 1e-12, c.in)
	}
}

func TestParseMagnitudeMissing(t *testing.T) {
	for _, in := range []string{
		"not-a-number",
		"",
		"3+4j",
		"(3+4)",
		"(+4j)",
		"(abc+4j)",
		"(3+xyzj)",
		"(nan+nanj)",
		"(+-2j)",
		"(1+-j)",
	} {
		got, ok := ParseMagnitude(in)
		assert.False(t, ok, in)
		assert.Zero(t, got, in)
	}
}

func TestModulo(t *testing.T) {
	got := Modulo([][2]float64{{3, 4}, {0, -5}, {6, 8}})
	assert.Equal(t, []float64{5, 5, 10}, got)
	assert.Empty(t, Modulo(nil))
}

func TestParseComplex(t *testing.T) {
	re, im, ok := ParseComplex("(1.5e+01-2E-01j)")
	assert.True(t, ok)
	assert.Equal(t, 15.0, re)
	assert.Equal(t, -0.2, im)

	re, im, ok = ParseComplex("(1+-2j)")
	assert.True(t, ok)
	assert.Equal(t, 1.0, re)
	assert.Equal(t, -2.0, im)

	_, _, ok = ParseComplex("(3+4)")
	assert.False(t, ok)
}
