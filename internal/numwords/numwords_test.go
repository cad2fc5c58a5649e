package numwords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Zero Rupees Only"},
		{1, "One Rupees Only"},
		{19, "Nineteen Rupees Only"},
		{20, "Twenty Rupees Only"},
		{21, "Twenty One Rupees Only"},
		{100, "One Hundred Rupees Only"},
		{105, "One Hundred Five Rupees Only"},
		{999, "Nine Hundred Ninety Nine Rupees Only"},
		{1000, "One Thousand Rupees Only"},
		{1500, "One Thousand Five Hundred Rupees Only"},
		{99999, "Ninety Nine Thousand Nine Hundred Ninety Nine Rupees Only"},
		{100000, "One Lakh Rupees Only"},
		{250000, "Two Lakh Fifty Thousand Rupees Only"},
		{10000000, "One Crore Rupees Only"},
		{12345678, "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Rupees Only"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.amount))
		})
	}
}

func TestWordsTruncatesPaise(t *testing.T) {
	// Paise are dropped, never rounded up.
	assert.Equal(t, "One Hundred Rupees Only", Words(100.99))
	assert.Equal(t, "Zero Rupees Only", Words(0.75))
}

func TestWordsNoStrayWhitespace(t *testing.T) {
	for _, amount := range []float64{7, 40, 808, 5000, 123456, 70000007} {
		got := Words(amount)
		assert.Equal(t, strings.TrimSpace(got), got)
		assert.NotContains(t, got, "  ")
	}
}
