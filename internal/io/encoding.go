package ioutils

import (
	"golang.org/x/text/encoding/charmap"
)

// DecodeLatin1 converts ISO-8859-1 bytes to a UTF-8 string.
//
// The table service publishes CSV files in ISO-8859-1. Every byte maps to
// exactly one code point, so decoding never fails and never drops bytes.
//
// Example:
//
//	DecodeLatin1([]byte{'S', 0xE3, 'o'}) // "São"
func DecodeLatin1(data []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
