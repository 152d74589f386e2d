package tokencode

import (
	"errors"
	"strings"
	"testing"
	"time"

	xerrors "groupgate-service/internal/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Payload{
		{CustomerCode: 1, ServiceCode: 1, Hours: 1, IssuedAt: time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)},
		{CustomerCode: 42, ServiceCode: 2, Hours: 720, IssuedAt: time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)},
		{CustomerCode: 9999, ServiceCode: 99, Hours: 9999, IssuedAt: time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC)},
		{CustomerCode: 0, ServiceCode: 0, Hours: 0, IssuedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, p := range tests {
		token, err := Encode(p)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", p, err)
		}
		if len(token) != Width {
			t.Fatalf("token %q has length %d, want %d", token, len(token), Width)
		}

		got, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode(%q): %v", token, err)
		}
		if got.CustomerCode != p.CustomerCode || got.ServiceCode != p.ServiceCode || got.Hours != p.Hours {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
		}
		if !got.IssuedAt.Equal(p.IssuedAt.Truncate(time.Second)) {
			t.Fatalf("issue time mismatch: got %s, want %s", got.IssuedAt, p.IssuedAt)
		}
	}
}

func TestEncodeDifferentInstantsDifferentTokens(t *testing.T) {
	base := Payload{CustomerCode: 12, ServiceCode: 1, Hours: 10, IssuedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	later := base
	later.IssuedAt = base.IssuedAt.Add(time.Second)

	t1, err := Encode(base)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	t2, err := Encode(later)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if t1 == t2 {
		t.Fatalf("tokens for distinct instants must differ, both %q", t1)
	}
}

func TestEncodeOverflowFailsFast(t *testing.T) {
	valid := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		p    Payload
	}{
		{"customer too large", Payload{CustomerCode: 10000, ServiceCode: 1, Hours: 1, IssuedAt: valid}},
		{"service too large", Payload{CustomerCode: 1, ServiceCode: 100, Hours: 1, IssuedAt: valid}},
		{"hours too large", Payload{CustomerCode: 1, ServiceCode: 1, Hours: 10000, IssuedAt: valid}},
		{"negative customer", Payload{CustomerCode: -1, ServiceCode: 1, Hours: 1, IssuedAt: valid}},
		{"issue time before epoch", Payload{CustomerCode: 1, ServiceCode: 1, Hours: 1, IssuedAt: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.p); !errors.Is(err, xerrors.ErrFieldOverflow) {
				t.Fatalf("err = %v, want ErrFieldOverflow", err)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"letters", "abc"},
		{"nineteen digits", "1234567890123456789"},
		{"twenty-one digits", "123456789012345678901"},
		{"embedded letter", "1234a678901234567890"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.token); !errors.Is(err, xerrors.ErrMalformedToken) {
				t.Fatalf("Decode(%q): err = %v, want ErrMalformedToken", tt.token, err)
			}
		})
	}

	t.Run("bad check digit", func(t *testing.T) {
		token, err := Encode(Payload{CustomerCode: 12, ServiceCode: 1, Hours: 10, IssuedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		flipped := byte('0' + (token[Width-1]-'0'+1)%10)
		bad := token[:Width-1] + string(flipped)
		if _, err := Decode(bad); !errors.Is(err, xerrors.ErrMalformedToken) {
			t.Fatalf("Decode(%q): err = %v, want ErrMalformedToken", bad, err)
		}
	})
}

func TestDecodeAcceptsDisplayFormat(t *testing.T) {
	p := Payload{CustomerCode: 1234, ServiceCode: 56, Hours: 789, IssuedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)}
	token, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	formatted := Format(token)
	if strings.Count(formatted, " ") != 4 {
		t.Fatalf("Format(%q) = %q, want four separators", token, formatted)
	}

	plain, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode raw: %v", err)
	}
	spaced, err := Decode(formatted)
	if err != nil {
		t.Fatalf("Decode formatted: %v", err)
	}
	if plain != spaced {
		t.Fatalf("formatted and raw decode diverge: %+v vs %+v", plain, spaced)
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	token, err := Encode(Payload{CustomerCode: 7, ServiceCode: 3, Hours: 48, IssuedAt: time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	first, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode #%d: %v", i, err)
		}
		if again != first {
			t.Fatalf("decode not stable: %+v vs %+v", again, first)
		}
	}
}

func TestLuhnCatchesSingleDigitErrors(t *testing.T) {
	token, err := Encode(Payload{CustomerCode: 4321, ServiceCode: 12, Hours: 100, IssuedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for i := 0; i < Width; i++ {
		for d := byte('0'); d <= '9'; d++ {
			if token[i] == d {
				continue
			}
			corrupted := token[:i] + string(d) + token[i+1:]
			if _, err := Decode(corrupted); err == nil {
				t.Fatalf("corruption at digit %d (%c→%c) went undetected", i, token[i], d)
			}
		}
	}
}

func TestExpiresAt(t *testing.T) {
	issued := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	p := Payload{CustomerCode: 1, ServiceCode: 1, Hours: 5, IssuedAt: issued}
	if got, want := p.ExpiresAt(), issued.Add(5*time.Hour); !got.Equal(want) {
		t.Fatalf("ExpiresAt = %s, want %s", got, want)
	}
}
