package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ErrKeymap is returned for keymaps that are not a bijection onto positive codes.
var ErrKeymap = errors.New("invalid keymap")

// Keymap is a bijective symbol <-> code mapping.
type Keymap struct {
	codes   map[string]Code
	symbols map[Code]string
}

// NewKeymap builds a keymap, rejecting non-positive and duplicate codes.
// Lookups are case-insensitive; Symbol returns the symbol as given.
func NewKeymap(symbols map[string]Code) (Keymap, error) {
	km := Keymap{
		codes:   make(map[string]Code, len(symbols)),
		symbols: make(map[Code]string, len(symbols)),
	}
	for sym, code := range symbols {
		if sym == "" {
			return Keymap{}, fmt.Errorf("%w: empty symbol", ErrKeymap)
		}
		if code <= 0 {
			return Keymap{}, fmt.Errorf("%w: symbol %q has non-positive code %d", ErrKeymap, sym, code)
		}
		key := strings.ToLower(sym)
		if _, ok := km.codes[key]; ok {
			return Keymap{}, fmt.Errorf("%w: symbol %q defined twice", ErrKeymap, key)
		}
		if other, ok := km.symbols[code]; ok {
			return Keymap{}, fmt.Errorf("%w: code %d shared by %q and %q", ErrKeymap, code, other, sym)
		}
		km.codes[key] = code
		km.symbols[code] = sym
	}
	return km, nil
}

// DefaultKeymap maps a-z to 1-26.
func DefaultKeymap() Keymap {
	symbols := make(map[string]Code, 26)
	for r := 'a'; r <= 'z'; r++ {
		symbols[string(r)] = Code(r-'a') + 1
	}
	km, _ := NewKeymap(symbols)
	return km
}

// Code returns the code of a symbol. Symbols are case-insensitive.
func (k Keymap) Code(symbol string) (Code, bool) {
	c, ok := k.codes[strings.ToLower(symbol)]
	return c, ok
}

// Lookup returns the code of a single rune.
func (k Keymap) Lookup(r rune) (Code, bool) {
	return k.Code(string(unicode.ToLower(r)))
}

// Symbol returns the symbol of a code.
func (k Keymap) Symbol(code Code) (string, bool) {
	s, ok := k.symbols[code]
	return s, ok
}

// Len returns the number of mapped symbols.
func (k Keymap) Len() int {
	return len(k.codes)
}

// Symbols returns all symbols ordered by code.
func (k Keymap) Symbols() []string {
	codes := make([]Code, 0, len(k.symbols))
	for c := range k.symbols {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = k.symbols[c]
	}
	return out
}
