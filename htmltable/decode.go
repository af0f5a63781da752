/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadFile reads an HTML file and decodes it to a string with Decode.
func ReadFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return Decode(raw), nil
}

// Decode converts an HTML document to UTF-8. A byte order mark wins,
// then valid UTF-8 is kept as is, then a charset declared in the document
// is honoured. Anything else is read as Windows-1251 with undecodable
// bytes becoming U+FFFD. The sniffer's own windows-1252 guess is not
// distinguishable from a declaration, so it also ends up as Windows-1251.
func Decode(raw []byte) string {
	// Only a BOM makes the sniffer certain; a meta charset is reported
	// uncertain under its own name.
	enc, name, certain := charset.DetermineEncoding(raw, "")
	if certain {
		if s, ok := decodeWith(enc, raw); ok {
			return s
		}
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	if name != "windows-1252" {
		if s, ok := decodeWith(enc, raw); ok {
			return s
		}
	}
	if s, ok := decodeWith(charmap.Windows1251, raw); ok {
		return s
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, bool) {
	s, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", false
	}
	return string(s), true
}
