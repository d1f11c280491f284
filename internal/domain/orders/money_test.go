package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want Money
	}{
		{0, 0},
		{3.50, 350},
		{11.96, 1196},
		{10.999, 1100},
		{0.005, 1},
		{19.99, 1999},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NewMoneyFromFloat(tc.in), "input %v", tc.in)
	}
}

func TestMoneyFloatRoundTrip(t *testing.T) {
	for _, cents := range []Money{0, 1, 99, 350, 1196, 123456789} {
		assert.Equal(t, cents, NewMoneyFromFloat(cents.Float()))
	}
}

func TestWithinCent(t *testing.T) {
	assert.True(t, WithinCent(1196, 1196))
	assert.True(t, WithinCent(1196, 1197))
	assert.True(t, WithinCent(1197, 1196))
	assert.False(t, WithinCent(1196, 1198))
	assert.False(t, WithinCent(1198, 1196))
}

func TestFloatArithmeticDoesNotLeakIntoCents(t *testing.T) {
	// 0.1 + 0.2 != 0.3 in float64; the cent conversion must still agree
	a := NewMoneyFromFloat(0.1)
	b := NewMoneyFromFloat(0.2)
	assert.Equal(t, NewMoneyFromFloat(0.3), a+b)
}
