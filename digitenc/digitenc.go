// Package digitenc turns nonnegative integers into fixed-width digit
// strings, in either hexadecimal or Crockford base-32 (spec §4.5, §6).
//
// Both encodings are zero-padded, width-2 positional representations —
// not byte-stream codecs — so neither is a fit for stdlib's
// encoding/base32 (RFC 4648 bit-packing over arbitrary byte slices); these
// are small, self-contained integer-to-digit-string converters instead.
package digitenc

import (
	"fmt"
	"strconv"
)

// Base selects the digit alphabet used by Encode and ceilings consulted by
// minter.Minter.
type Base int

const (
	// Hex renders digits 0-9a-f, width 2, zero-padded.
	Hex Base = iota
	// Crockford renders digits using the Crockford base-32 alphabet
	// (no I, L, O, U), width 2, zero-padded.
	Crockford
)

// crockfordAlphabet is the Crockford base-32 digit set (spec §6).
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Width is the fixed digit-group width used throughout this module.
const Width = 2

// Encode renders n as a width-2, zero-padded digit string in base b.
// n must be nonnegative and representable in width-2 digits of base b
// (callers enforce the ceiling; Encode itself does not truncate silently —
// a value too large for width 2 returns a string longer than 2, which a
// caller-side ceiling check must never let happen).
func Encode(n int, b Base) string {
	switch b {
	case Crockford:
		return encodeCrockford(n)
	default:
		return encodeHex(n)
	}
}

func encodeHex(n int) string {
	s := strconv.FormatInt(int64(n), 16)
	return padLeft(s, Width, '0')
}

func encodeCrockford(n int) string {
	if n == 0 {
		return padLeft("0", Width, '0')
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, crockfordAlphabet[n%32])
		n /= 32
	}
	// digits were accumulated least-significant first; reverse in place.
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return padLeft(string(digits), Width, '0')
}

func padLeft(s string, width int, pad byte) string {
	for len(s) < width {
		s = string(pad) + s
	}
	return s
}

// DecodeHex parses a width-2 hex digit string back to an integer. It is
// used by the Label Compactor to re-encode the main-stem segment (which is
// stored as hex in the raw label regardless of the active base) into
// Crockford base-32 (spec §4.5 step 2).
func DecodeHex(s string) (int, error) {
	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("digitenc: DecodeHex(%q): %w", s, err)
	}
	return int(n), nil
}
