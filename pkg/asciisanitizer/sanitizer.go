// Package asciisanitizer implements an ASCII control character sanitizer
// for UTF-8 text. C0 control characters are replaced with their Unicode
// control picture equivalents so registry responses can never smuggle
// escape sequences into the terminal.
package asciisanitizer

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// Sanitizer implements the transform.Transformer interface.
type Sanitizer struct{}

// Transform replaces C0 control characters with their picture
// representations as the stream is read. Tab, newline and carriage return
// pass through untouched.
func (t *Sanitizer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for len(src) > 0 {
		// Only sanitize complete UTF-8 characters.
		if !atEOF && !utf8.FullRune(src) {
			err = transform.ErrShortSrc
			return
		}

		r, size := utf8.DecodeRune(src)
		if r == utf8.RuneError && size < 2 {
			err = errors.New("invalid UTF-8 string")
			return
		}

		write := src[:size]
		var picture [4]byte
		if isUnsafeC0(r) {
			// U+2400 is the control picture block base.
			n := utf8.EncodeRune(picture[:], 0x2400+r)
			write = picture[:n]
		}

		if len(write) > len(dst)-nDst {
			err = transform.ErrShortDst
			return
		}

		copy(dst[nDst:], write)
		nDst += len(write)
		nSrc += size
		src = src[size:]
	}

	return
}

// Reset resets the state and allows the Sanitizer to be reused.
func (t *Sanitizer) Reset() {}

func isUnsafeC0(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r >= 0x00 && r <= 0x1F
}
