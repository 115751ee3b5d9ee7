package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		v      float64
		digits int
		want   string
	}{
		{0, 0, "$ 0"},
		{150, 0, "$ 150"},
		{1234567, 0, "$ 1.234.567"},
		{1234567.891, 2, "$ 1.234.567,89"},
		{-2500, 0, "-$ 2.500"},
		{999.6, 0, "$ 1.000"},
		{12.5, -1, "$ 13"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.v, tt.digits))
		})
	}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "+$ 1.000", Amount(1000, true))
	assert.Equal(t, "-$ 150", Amount(150, false))
}
