// Package numwords renders rupee amounts as English words using the Indian
// numbering system (Thousand, Lakh, Crore) for printing on invoices.
package numwords

var ones = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen",
	"Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}

var tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty",
	"Seventy", "Eighty", "Ninety"}

const (
	lakh  = 100000
	crore = 10000000
)

// Words converts an amount to words, e.g. 1500 -> "One Thousand Five Hundred
// Rupees Only". Fractional paise are truncated, not rounded.
func Words(amount float64) string {
	if amount == 0 {
		return "Zero Rupees Only"
	}
	n := int(amount)
	if n == 0 {
		return "Zero Rupees Only"
	}
	return convert(n) + " Rupees Only"
}

func belowThousand(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 20:
		return ones[n]
	case n < 100:
		s := tens[n/10]
		if n%10 != 0 {
			s += " " + ones[n%10]
		}
		return s
	default:
		s := ones[n/100] + " Hundred"
		if n%100 != 0 {
			s += " " + belowThousand(n%100)
		}
		return s
	}
}

func convert(n int) string {
	switch {
	case n < 1000:
		return belowThousand(n)
	case n < lakh:
		s := belowThousand(n/1000) + " Thousand"
		if n%1000 != 0 {
			s += " " + belowThousand(n%1000)
		}
		return s
	case n < crore:
		s := belowThousand(n/lakh) + " Lakh"
		if n%lakh != 0 {
			s += " " + convert(n%lakh)
		}
		return s
	default:
		s := convert(n/crore) + " Crore"
		if n%crore != 0 {
			s += " " + convert(n%crore)
		}
		return s
	}
}
