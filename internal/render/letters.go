package render

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/verte-zerg/keyscore/internal/model"
)

// Markers used when converting codes back to symbols.
const (
	EmptyMarker   = ""
	UnknownMarker = "?"
)

// ErrUnknownSymbol is returned when a layout string uses a symbol the
// keymap does not define.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ToLetters converts a numeric layout to symbols. Code 0 becomes
// EmptyMarker and codes missing from the keymap become UnknownMarker.
func ToLetters(layout [][]int, km model.Keymap) [][]string {
	out := make([][]string, len(layout))
	for r, row := range layout {
		letters := make([]string, len(row))
		for c, v := range row {
			switch sym, ok := km.Symbol(model.Code(v)); {
			case v == 0:
				letters[c] = EmptyMarker
			case ok:
				letters[c] = sym
			default:
				letters[c] = UnknownMarker
			}
		}
		out[r] = letters
	}
	return out
}

// ParseLayout converts a layout string to a candidate sequence. "_" and
// "." stand for code 0, whitespace is ignored.
func ParseLayout(s string, km model.Keymap) ([]model.Code, error) {
	seq := make([]model.Code, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if r == '_' || r == '.' {
			if _, ok := km.Lookup(r); !ok {
				seq = append(seq, 0)
				continue
			}
		}
		code, ok := km.Lookup(r)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSymbol, r)
		}
		seq = append(seq, code)
	}
	return seq, nil
}

// FormatLayout converts a candidate sequence back to a layout string.
func FormatLayout(seq []model.Code, km model.Keymap) string {
	out := make([]rune, 0, len(seq))
	for _, code := range seq {
		if code == 0 {
			out = append(out, '_')
			continue
		}
		sym, ok := km.Symbol(code)
		if !ok {
			out = append(out, []rune(UnknownMarker)...)
			continue
		}
		out = append(out, []rune(sym)...)
	}
	return string(out)
}
