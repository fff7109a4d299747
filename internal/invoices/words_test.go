package invoices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "Zero Rupees Only"},
		{7, "Seven Rupees Only"},
		{19, "Nineteen Rupees Only"},
		{45, "Forty Five Rupees Only"},
		{100, "One Hundred Rupees Only"},
		{2468, "Two Thousand Four Hundred Sixty Eight Rupees Only"},
		{2468.50, "Two Thousand Four Hundred Sixty Eight Rupees and Fifty Paise Only"},
		{1_00_000, "One Lakh Rupees Only"},
		{12_34_567, "Twelve Lakh Thirty Four Thousand Five Hundred Sixty Seven Rupees Only"},
		{2_50_00_000, "Two Crore Fifty Lakh Rupees Only"},
		{105.05, "One Hundred Five Rupees and Five Paise Only"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AmountInWords(tc.amount), "amount %v", tc.amount)
	}
}

func TestAmountInWordsRoundsPaiseCarry(t *testing.T) {
	// 9.999 rounds paise to 100, carrying into rupees.
	assert.Equal(t, "Ten Rupees Only", AmountInWords(9.999))
}
