// internal/pkg/tokencode/codec.go
//
// Fixed-width numeric token codec. A token is 20 digits, displayed in groups
// of four ("1234 5678 9012 3456 7890"), and is fully self-describing:
//
//	digits  1-4   customer code            (0-9999)
//	digits  5-6   service code             (0-99)
//	digits  7-10  hours purchased          (0-9999)
//	digits 11-19  issue time, seconds since 2024-01-01T00:00:00Z
//	digit   20    Luhn check digit over digits 1-19
//
// Encoding a field that does not fit its width fails fast rather than
// silently truncating. Decoding is pure and idempotent.
package tokencode

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	xerrors "groupgate-service/internal/pkg/errors"
)

// Width is the canonical token length in digits, separators excluded.
const Width = 20

const (
	customerWidth = 4
	serviceWidth  = 2
	hoursWidth    = 4
	timeWidth     = 9

	// MaxCustomerCode is the largest encodable customer identifier.
	MaxCustomerCode = 9999
	// MaxServiceCode is the largest encodable service identifier.
	MaxServiceCode = 99
	// MaxHours is the largest encodable hours grant.
	MaxHours = 9999

	maxSeconds = 999999999
)

// epoch anchors the issue-time field. Nine digits of seconds cover roughly
// 31 years from this instant.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Payload is the information packed into a token's digits.
type Payload struct {
	CustomerCode int64
	ServiceCode  int64
	Hours        int64
	IssuedAt     time.Time
}

// ExpiresAt returns the instant the grant runs out: issue time plus the
// purchased hours.
func (p Payload) ExpiresAt() time.Time {
	return p.IssuedAt.Add(time.Duration(p.Hours) * time.Hour)
}

// Encode packs the payload into a 20-digit token string. The issue time is
// truncated to whole seconds, so two encodings of the same allocation at
// different instants yield different tokens.
func Encode(p Payload) (string, error) {
	if p.CustomerCode < 0 || p.CustomerCode > MaxCustomerCode {
		return "", fmt.Errorf("customer code %d: %w", p.CustomerCode, xerrors.ErrFieldOverflow)
	}
	if p.ServiceCode < 0 || p.ServiceCode > MaxServiceCode {
		return "", fmt.Errorf("service code %d: %w", p.ServiceCode, xerrors.ErrFieldOverflow)
	}
	if p.Hours < 0 || p.Hours > MaxHours {
		return "", fmt.Errorf("hours %d: %w", p.Hours, xerrors.ErrFieldOverflow)
	}

	seconds := p.IssuedAt.UTC().Unix() - epoch.Unix()
	if seconds < 0 || seconds > maxSeconds {
		return "", fmt.Errorf("issue time %s: %w", p.IssuedAt.UTC().Format(time.RFC3339), xerrors.ErrFieldOverflow)
	}

	var b strings.Builder
	b.Grow(Width)
	fmt.Fprintf(&b, "%0*d", customerWidth, p.CustomerCode)
	fmt.Fprintf(&b, "%0*d", serviceWidth, p.ServiceCode)
	fmt.Fprintf(&b, "%0*d", hoursWidth, p.Hours)
	fmt.Fprintf(&b, "%0*d", timeWidth, seconds)

	body := b.String()
	return body + strconv.Itoa(luhnCheckDigit(body)), nil
}

// Decode recovers the payload from a token string. Whitespace separators are
// stripped first; after stripping, anything that is not exactly 20 digits or
// fails the check digit is rejected with ErrMalformedToken.
func Decode(token string) (Payload, error) {
	clean := stripSeparators(token)

	if len(clean) != Width {
		return Payload{}, fmt.Errorf("expected %d digits, got %d: %w", Width, len(clean), xerrors.ErrMalformedToken)
	}
	for _, r := range clean {
		if r < '0' || r > '9' {
			return Payload{}, fmt.Errorf("non-digit character %q: %w", r, xerrors.ErrMalformedToken)
		}
	}
	if !luhnValid(clean) {
		return Payload{}, fmt.Errorf("check digit mismatch: %w", xerrors.ErrMalformedToken)
	}

	pos := 0
	next := func(width int) int64 {
		v, _ := strconv.ParseInt(clean[pos:pos+width], 10, 64)
		pos += width
		return v
	}

	p := Payload{
		CustomerCode: next(customerWidth),
		ServiceCode:  next(serviceWidth),
		Hours:        next(hoursWidth),
	}
	p.IssuedAt = epoch.Add(time.Duration(next(timeWidth)) * time.Second)
	return p, nil
}

// Normalize validates a token string and returns its canonical 20-digit
// form with separators stripped.
func Normalize(token string) (string, error) {
	if _, err := Decode(token); err != nil {
		return "", err
	}
	return stripSeparators(token), nil
}

// Format renders a raw token in the display grouping: runs of four digits
// separated by single spaces.
func Format(token string) string {
	clean := stripSeparators(token)
	var b strings.Builder
	for i, r := range clean {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
}
