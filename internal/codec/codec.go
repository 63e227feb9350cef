package codec

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidEncoding is returned when input decodes under neither base64
// alphabet.
var ErrInvalidEncoding = errors.New("not base64 or base64url")

// Encode returns the canonical text form: standard alphabet, no padding.
func Encode(b []byte) string { return base64.RawStdEncoding.EncodeToString(b) }

// Decode parses text written by either common base64 dialect. Trailing
// padding is stripped, then the standard alphabet is tried before the URL
// alphabet. Non-canonical trailing bits are tolerated; DecodeStrict
// rejects them.
func Decode(s string) ([]byte, error) {
	trimmed := strings.TrimRight(s, "=")
	if b, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
		return b, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return b, nil
}

// DecodeStrict is Decode for callers that require canonical input: a final
// character carrying nonzero unused bits fails the decode.
func DecodeStrict(s string) ([]byte, error) {
	trimmed := strings.TrimRight(s, "=")
	if b, err := base64.RawStdEncoding.Strict().DecodeString(trimmed); err == nil {
		return b, nil
	}
	b, err := base64.RawURLEncoding.Strict().DecodeString(trimmed)
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return b, nil
}
