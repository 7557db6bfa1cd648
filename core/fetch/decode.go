package fetch

import (
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// fallbackEncoding is reported when the detected charset could not decode
// the body and invalid bytes were replaced instead.
const fallbackEncoding = "utf-8 (lossy)"

// Decode converts a response body to a UTF-8 string.
// The charset is sniffed from a BOM, the Content-Type header and any <meta>
// declaration, in that order. If the detected encoding cannot decode the
// bytes, they are read as UTF-8 with U+FFFD substituted for invalid bytes.
func Decode(body []byte, contentType string) (string, string) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil || !utf8.Valid(decoded) {
		// The UTF-8 decoder substitutes U+FFFD and never fails.
		lossy, _ := unicode.UTF8.NewDecoder().Bytes(body)
		return string(lossy), fallbackEncoding
	}
	return string(decoded), name
}
