// Package compact turns a hierarchical, separator-delimited raw label into
// the fixed-width compact string the Driver emits (spec §4.5).
package compact

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lwi-gis/nhdlabel/digitenc"
)

// MaxLabelLen is the compact label's fixed total width (spec §6).
const MaxLabelLen = 14

// hierarchySep matches the raw-label separator used by minter and traverse.
const hierarchySep = "-"

// Compact renders raw label L in digit base b (spec §4.5):
//   - segment 0 (the main-stem/first-order prefix) is already a hex string;
//     kept as-is for Hex, or reparsed as hex and re-encoded width-2 for
//     Crockford.
//   - segments at index >= 1 are decimal integer strings; each is encoded
//     in b, width 2, zero-padded.
//   - the result is right-padded with '0' to MaxLabelLen.
//
// A result longer than MaxLabelLen is a defect in the caller's raw label,
// not a recoverable condition, so Compact returns an error rather than
// silently truncating (spec §4.5 step 4, §7).
func Compact(rawLabel string, b digitenc.Base) (string, error) {
	segments := strings.Split(rawLabel, hierarchySep)

	var out strings.Builder
	for i, seg := range segments {
		if i == 0 {
			rendered, err := renderMainstemSegment(seg, b)
			if err != nil {
				return "", fmt.Errorf("compact: segment 0 %q: %w", seg, err)
			}
			out.WriteString(rendered)
			continue
		}
		n, err := strconv.Atoi(seg)
		if err != nil {
			return "", fmt.Errorf("compact: segment %d %q is not decimal: %w", i, seg, err)
		}
		out.WriteString(digitenc.Encode(n, b))
	}

	padded := out.String()
	if len(padded) > MaxLabelLen {
		return "", fmt.Errorf("compact: label %q exceeds max length %d", padded, MaxLabelLen)
	}
	for len(padded) < MaxLabelLen {
		padded += "0"
	}
	return padded, nil
}

func renderMainstemSegment(seg string, b digitenc.Base) (string, error) {
	if b != digitenc.Crockford {
		return seg, nil
	}
	n, err := digitenc.DecodeHex(seg)
	if err != nil {
		return "", err
	}
	return digitenc.Encode(n, digitenc.Crockford), nil
}
