package binio

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// TextDecoding selects how a length-prefixed text field is decoded.
type TextDecoding int

const (
	// TextLossy keeps valid UTF-8 unchanged; otherwise every byte outside
	// ASCII becomes a single space.
	TextLossy TextDecoding = iota

	// TextStrict rejects fields that are not valid UTF-8.
	TextStrict
)

// String returns the configuration name of the mode.
func (m TextDecoding) String() string {
	switch m {
	case TextLossy:
		return "lossy"
	case TextStrict:
		return "strict"
	default:
		return fmt.Sprintf("TextDecoding(%d)", int(m))
	}
}

// ParseTextDecoding converts a configuration name to a mode.
func ParseTextDecoding(s string) (TextDecoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lossy":
		return TextLossy, nil
	case "strict":
		return TextStrict, nil
	default:
		return TextLossy, fmt.Errorf("unknown text decoding %q", s)
	}
}

// DecodeText decodes raw field bytes according to mode.
func DecodeText(b []byte, mode TextDecoding) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}
	if mode == TextStrict {
		return "", fmt.Errorf("%w: %d bytes are not valid UTF-8", ErrInvalidText, len(b))
	}
	// Latin-1 maps every byte to exactly one rune, which then lets the
	// non-ASCII ones be blanked one for one.
	t := transform.Chain(charmap.ISO8859_1.NewDecoder(), runes.Map(asciiOrSpace))
	s, _, err := transform.String(t, string(b))
	if err != nil {
		return "", fmt.Errorf("decode text field: %w", err)
	}
	return s, nil
}

func asciiOrSpace(r rune) rune {
	if r > unicode.MaxASCII {
		return ' '
	}
	return r
}
