// Package encoding converts legacy log encodings to UTF-8 before the
// segmenter sees the bytes. DM servers commonly write sqllog files in
// GBK or GB18030 on Chinese-locale installations.
package encoding

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrInvalidUTF8 is returned by Validate for input that is not well
// formed UTF-8.
var ErrInvalidUTF8 = fmt.Errorf("input is not valid UTF-8")

// Resolve maps an encoding name to its decoder. The empty name and
// "utf-8" resolve to nil, meaning no conversion. Undecodable byte
// sequences are replaced with U+FFFD rather than failing the read;
// callers that need strict decoding validate separately.
func Resolve(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// NewReader wraps r so downstream readers always see UTF-8. With the
// empty name or "utf-8" the reader is returned unchanged.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// Validate asserts that b is well formed UTF-8. Decoding via NewReader
// is lossy; callers that must reject dirty input run Validate on the raw
// bytes first.
func Validate(b []byte) error {
	if !utf8.Valid(b) {
		return ErrInvalidUTF8
	}
	return nil
}

// Decoder converts individual strings from a source encoding to UTF-8,
// for callers that receive text line by line instead of as a stream.
// Neither GBK nor GB18030 ever place a newline byte inside a multi-byte
// sequence, so per-line decoding is lossless. A nil Decoder passes
// strings through unchanged.
type Decoder struct {
	dec *encoding.Decoder
}

// NewDecoder returns a Decoder for the named encoding. The empty name
// and "utf-8" yield a passthrough decoder.
func NewDecoder(name string) (*Decoder, error) {
	enc, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	d := &Decoder{}
	if enc != nil {
		d.dec = enc.NewDecoder()
	}
	return d, nil
}

// DecodeString converts s to UTF-8. Undecodable bytes become U+FFFD,
// same as NewReader.
func (d *Decoder) DecodeString(s string) string {
	if d == nil || d.dec == nil {
		return s
	}
	out, err := d.dec.String(s)
	if err != nil {
		return s
	}
	return out
}
