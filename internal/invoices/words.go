package invoices

import (
	"math"
	"strings"
)

var wordsBelowTwenty = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var wordsTens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords renders a monetary amount in words using the Indian numbering
// system (crore/lakh), as printed on the tax invoice.
func AmountInWords(amount float64) string {
	amount = math.Abs(amount)
	rupees := int64(amount)
	paise := int64(math.Round((amount - float64(rupees)) * 100))
	if paise >= 100 {
		rupees++
		paise -= 100
	}

	var b strings.Builder
	if rupees == 0 {
		b.WriteString("Zero")
	} else {
		b.WriteString(numberWords(rupees))
	}
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(numberWords(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

func numberWords(n int64) string {
	switch {
	case n >= 1_00_00_000:
		return joinWords(numberWords(n/1_00_00_000)+" Crore", n%1_00_00_000)
	case n >= 1_00_000:
		return joinWords(numberWords(n/1_00_000)+" Lakh", n%1_00_000)
	case n >= 1_000:
		return joinWords(numberWords(n/1_000)+" Thousand", n%1_000)
	case n >= 100:
		return joinWords(numberWords(n/100)+" Hundred", n%100)
	case n >= 20:
		return joinWords(wordsTens[n/10], n%10)
	default:
		return wordsBelowTwenty[n]
	}
}

func joinWords(head string, rest int64) string {
	if rest == 0 {
		return head
	}
	return head + " " + numberWords(rest)
}
