// Package format masks raw digit strings into Brazilian display formats.
// Partial inputs yield partial masks so the functions work as live-typing
// masks as well as for canonical storage.
package format

import "strings"

const (
	cnpjDigits  = 14
	phoneDigits = 11
)

// StripNonDigits keeps only the ASCII digits of s.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func digitsUpTo(s string, max int) string {
	d := StripNonDigits(s)
	if len(d) > max {
		d = d[:max]
	}
	return d
}

// FormatCNPJ renders up to 14 digits as NN.NNN.NNN/NNNN-NN.
func FormatCNPJ(s string) string {
	d := digitsUpTo(s, cnpjDigits)
	switch n := len(d); {
	case n == 0:
		return ""
	case n <= 2:
		return d
	case n <= 5:
		return d[:2] + "." + d[2:]
	case n <= 8:
		return d[:2] + "." + d[2:5] + "." + d[5:]
	case n <= 12:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:]
	default:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
	}
}

// FormatPhoneBR renders up to 11 digits as (DD) NNNN-NNNN for landlines and
// (DD) NNNNN-NNNN for mobiles. While the area code is being typed the
// parenthesis stays open.
func FormatPhoneBR(s string) string {
	d := digitsUpTo(s, phoneDigits)
	n := len(d)
	if n == 0 {
		return ""
	}
	if n <= 2 {
		return "(" + d
	}

	ddd, rest := d[:2], d[2:]
	switch {
	case n <= 6:
		return "(" + ddd + ") " + rest
	case n <= 10:
		return "(" + ddd + ") " + rest[:4] + "-" + rest[4:]
	default:
		return "(" + ddd + ") " + rest[:5] + "-" + rest[5:]
	}
}
