package utils

import (
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// FindURL returns the first http(s) URL found in s, or "" when there is none.
func FindURL(s string) string {
	return urlPattern.FindString(s)
}

func JoinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// Truncate cuts s to at most max runes, appending an ellipsis when it had to cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}

// TruncateUTF16 cuts s to at most max UTF-16 code units, the unit Telegram
// counts message length in. Runes outside the BMP take two units.
func TruncateUTF16(s string, max int) string {
	if max <= 0 {
		return s
	}
	units := 0
	for _, r := range s {
		units += utf16.RuneLen(r)
		if units > max {
			break
		}
	}
	if units <= max {
		return s
	}

	const ellipsis = '…'
	budget := max - utf16.RuneLen(ellipsis)
	var sb strings.Builder
	units = 0
	for _, r := range s {
		n := utf16.RuneLen(r)
		if units+n > budget {
			break
		}
		units += n
		sb.WriteRune(r)
	}
	sb.WriteRune(ellipsis)
	return sb.String()
}

// EncodeVector packs vec as little-endian IEEE 754 float32 values.
func EncodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
