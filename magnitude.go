package batteryaging

import (
	"math"
	"strconv"
	"strings"
)

// ParseMagnitude reads an impedance sample written as "(re+imj)" and returns
// its modulus. The sign of either part may be negative and both parts may use
// exponent notation. ok is false when the text is not a complex literal or the
// modulus is not a number; the caller must treat that sample as missing.
func ParseMagnitude(text string) (magnitude float64, ok bool) {
	re, im, ok := ParseComplex(text)
	if !ok {
		return 0, false
	}
	magnitude = Modulo([][2]float64{{re, im}})[0]
	if math.IsNaN(magnitude) {
		return 0, false
	}
	return magnitude, true
}

// ParseComplex splits an impedance sample written as "(re+imj)" into its
// real and imaginary parts.
func ParseComplex(text string) (re, im float64, ok bool) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, "j)") {
		return 0, 0, false
	}
	body := strings.TrimSpace(s[1 : len(s)-2])

	split := splitIndex(body)
	if split <= 0 {
		return 0, 0, false
	}

	var err error
	if re, err = strconv.ParseFloat(strings.TrimSpace(body[:split]), 64); err != nil {
		return 0, 0, false
	}
	imText := strings.ReplaceAll(body[split:], " ", "")
	negate := false
	if len(imText) > 1 && (imText[1] == '+' || imText[1] == '-') {
		negate = imText[0] == '-'
		imText = imText[1:]
	}
	if im, err = strconv.ParseFloat(imText, 64); err != nil {
		return 0, 0, false
	}
	if negate {
		im = -im
	}
	return re, im, true
}

// splitIndex finds the sign that separates the real part from the imaginary
// part, skipping signs that belong to an exponent.
func splitIndex(body string) int {
	for i := len(body) - 1; i > 0; i-- {
		if body[i] != '+' && body[i] != '-' {
			continue
		}
		prev := body[i-1]
		if prev == 'e' || prev == 'E' {
			continue
		}
		// "1+-2": the imaginary part carries its own sign
		if (prev == '+' || prev == '-') && i > 1 {
			return i - 1
		}
		return i
	}
	return -1
}

func modulus(re, im float64) float64 {
	return math.Sqrt(math.Pow(re, 2) + math.Pow(im, 2))
}

// Modulo returns |Z| for every (real, imag) pair. NaN entries are kept; the
// caller decides whether they count as missing.
func Modulo(data [][2]float64) []float64 {
	var res []float64
	for _, v := range data {
		res = append(res, modulus(v[0], v[1]))
	}
	return res
}
