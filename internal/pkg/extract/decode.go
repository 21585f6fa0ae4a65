package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yigit/photoalbum/internal/pkg/apperrors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding matches the code page legacy DBF extracts are written in.
const DefaultEncoding = "latin1"

var knownEncodings = map[string]encoding.Encoding{
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"utf8":         unicode.UTF8,
	"utf-8":        unicode.UTF8,
}

// LookupEncoding resolves a configured encoding name. Short aliases are
// checked first, then the IANA registry.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultEncoding
	}
	if enc, ok := knownEncodings[key]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: unknown text encoding %q", apperrors.ErrUnsupportedFormat, name)
	}
	return enc, nil
}

// decodeBytes converts raw field bytes to UTF-8. Undecodable input is never
// fatal: invalid sequences are dropped.
func decodeBytes(dec *encoding.Decoder, raw []byte) string {
	out, err := dec.Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "")
	}
	return strings.ToValidUTF8(string(out), "")
}

// looksUTF8 reports whether b is valid UTF-8, ignoring a rune cut off at the end.
func looksUTF8(b []byte) bool {
	end := len(b)
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				end = i
			}
			break
		}
	}
	return utf8.Valid(b[:end])
}
