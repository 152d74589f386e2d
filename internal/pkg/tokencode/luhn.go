// internal/pkg/tokencode/luhn.go
package tokencode

// luhnCheckDigit computes the Luhn check digit for a string of digits.
// Twenty hand-typed digits invite transcription errors; Luhn catches every
// single-digit mistake and most adjacent transpositions.
func luhnCheckDigit(digits string) int {
	sum := 0
	// Walk right to left; the rightmost body digit is doubled because the
	// check digit will sit immediately after it.
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// luhnValid reports whether the final digit of token is the correct Luhn
// check digit for the preceding digits.
func luhnValid(token string) bool {
	body := token[:len(token)-1]
	check := int(token[len(token)-1] - '0')
	return luhnCheckDigit(body) == check
}
