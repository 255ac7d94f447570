package lyrics

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Load reads a lyric file and decodes it to UTF-8. The configured encoding
// label is tried first via IANA lookup; malformed byte sequences are
// replaced rather than failing the decode, since .lrc files shared online
// are frequently mislabeled or truncated. When the label is unknown or the
// decode errors, the encoding is detected from the raw bytes instead.
// A leading byte order mark is stripped from the result.
func Load(path, encodingName string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(raw, encodingName)
}

// Decode converts raw lyric bytes to UTF-8 using the two-tier strategy
// described on Load.
func Decode(raw []byte, encodingName string) (string, error) {
	if enc := resolveEncoding(encodingName); enc != nil {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
		if err == nil {
			return stripBOM(string(decoded)), nil
		}
	}

	detected, name, _ := charset.DetermineEncoding(raw, "")
	decoded, _, err := transform.Bytes(detected.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode lyrics as %s: %w", name, err)
	}
	return stripBOM(string(decoded)), nil
}

// resolveEncoding maps an encoding label to an implementation. IANA names
// are tried first; WHATWG labels cover common aliases the IANA index lacks
// an implementation for. Returns nil when the label resolves to nothing.
func resolveEncoding(name string) encoding.Encoding {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	if enc, err := htmlindex.Get(name); err == nil {
		return enc
	}
	return nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
