// Package encoding resolves the text encoding of raw journal bytes.
//
// Journal files do not reliably declare their encoding. Resolution is a
// small ordered-candidate retry loop: a byte-order-mark check handles the
// 16-bit encodings deterministically, UTF-8 is the primary 8-bit
// candidate, and a configurable list of single-byte legacy code pages is
// tried last. The result is a tagged value (text + encoding name +
// fallback flag) rather than exception-driven control flow.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	textunicode "golang.org/x/text/encoding/unicode"
)

// Result is decoded text plus the encoding that produced it.
type Result struct {
	// Text is the decoded character stream.
	Text string

	// Encoding names the candidate that decoded the input,
	// e.g. "utf-8", "utf-16le", "windows-1252".
	Encoding string

	// FallbackUsed is true when a non-primary candidate was required.
	FallbackUsed bool
}

// ExhaustedError reports that no candidate encoding decoded the input.
// Fatal for the single file load; recoverable at the session level.
type ExhaustedError struct {
	// Tried lists the candidate encodings in attempt order.
	Tried []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no candidate encoding decoded the input (tried %v)", e.Tried)
}

// IsExhausted reports whether err is an encoding exhaustion failure.
// Uses errors.As to handle wrapped errors.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// DefaultFallbacks is the ordered list of single-byte legacy code pages
// tried after UTF-8 validation fails.
var DefaultFallbacks = []string{"latin-1", "windows-1252", "iso-8859-15"}

// fallbackCharmaps maps fallback names to their decoders.
var fallbackCharmaps = map[string]*charmap.Charmap{
	"latin-1":      charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"iso-8859-15":  charmap.ISO8859_15,
}

// minPrintableRatio is the share of printable runes required for the
// primary UTF-8 candidate to be accepted without falling back.
const minPrintableRatio = 0.85

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Resolve determines the correct text encoding for raw and decodes it.
// Pure function of the input bytes; returns an ExhaustedError when every
// candidate fails.
func Resolve(raw []byte) (Result, error) {
	return ResolveWith(raw, DefaultFallbacks)
}

// ResolveWith is Resolve with an explicit fallback candidate list.
// Unknown fallback names are skipped.
func ResolveWith(raw []byte, fallbacks []string) (Result, error) {
	// BOM check first: deterministic for the 16-bit encodings, and a
	// fast path for UTF-8 files written with a marker.
	if r, ok := resolveBOM(raw); ok {
		return r, nil
	}

	tried := []string{"utf-8"}

	// Primary candidate: UTF-8, validated by requiring a clean decode
	// and mostly printable content.
	if utf8.Valid(raw) && !bytes.ContainsRune(raw, utf8.RuneError) && mostlyPrintable(string(raw)) {
		return Result{Text: string(raw), Encoding: "utf-8"}, nil
	}

	for _, name := range fallbacks {
		cm, ok := fallbackCharmaps[name]
		if !ok {
			continue
		}
		tried = append(tried, name)
		decoded, err := cm.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		return Result{Text: string(decoded), Encoding: name, FallbackUsed: true}, nil
	}

	return Result{}, &ExhaustedError{Tried: tried}
}

// resolveBOM decodes inputs that carry a recognizable byte-order mark.
func resolveBOM(raw []byte) (Result, bool) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return Result{Text: string(raw[len(bomUTF8):]), Encoding: "utf-8"}, true

	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeUTF16(raw[len(bomUTF16LE):], textunicode.LittleEndian, "utf-16le")

	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeUTF16(raw[len(bomUTF16BE):], textunicode.BigEndian, "utf-16be")
	}
	return Result{}, false
}

func decodeUTF16(payload []byte, endian textunicode.Endianness, name string) (Result, bool) {
	dec := textunicode.UTF16(endian, textunicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(payload)
	if err != nil {
		return Result{}, false
	}
	return Result{Text: string(decoded), Encoding: name}, true
}

// mostlyPrintable reports whether at least minPrintableRatio of the runes
// in s are printable or whitespace. Guards against mojibake that happens
// to be structurally valid UTF-8.
func mostlyPrintable(s string) bool {
	if s == "" {
		return true
	}
	var total, printable int
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) >= minPrintableRatio
}
