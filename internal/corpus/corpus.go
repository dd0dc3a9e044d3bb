// Package corpus loads character frequency tables.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/keyscore/internal/model"
)

// ErrFormat is returned for tables that cannot be read at all, such as a
// missing column or an unparsable frequency.
var ErrFormat = errors.New("malformed frequency table")

// Default file names inside a corpus directory.
const (
	UnigramFile = "unigrams.csv"
	BigramFile  = "bigrams.csv"
	TrigramFile = "trigrams.csv"
)

// Dropped counts rows skipped while loading because the n-gram had the
// wrong length or used an unmapped character.
type Dropped struct {
	Unigrams int
	Bigrams  int
	Trigrams int
}

// LoadUnigrams reads a table with "unigram" and "freq" columns. A
// character listed more than once keeps its first position and its last
// frequency.
func LoadUnigrams(r io.Reader, km model.Keymap) ([]model.Unigram, int, error) {
	var out []model.Unigram
	index := make(map[model.Code]int)
	dropped, err := readTable(r, "unigram", 1, km, func(codes []model.Code, freq float64) {
		if i, ok := index[codes[0]]; ok {
			out[i].Freq = freq
			return
		}
		index[codes[0]] = len(out)
		out = append(out, model.Unigram{Code: codes[0], Freq: freq})
	})
	return out, dropped, err
}

// LoadBigrams reads a table with "bigram" and "freq" columns.
func LoadBigrams(r io.Reader, km model.Keymap) ([]model.Bigram, int, error) {
	var out []model.Bigram
	dropped, err := readTable(r, "bigram", 2, km, func(codes []model.Code, freq float64) {
		out = append(out, model.Bigram{A: codes[0], B: codes[1], Freq: freq})
	})
	return out, dropped, err
}

// LoadTrigrams reads a table with "trigram" and "freq" columns.
func LoadTrigrams(r io.Reader, km model.Keymap) ([]model.Trigram, int, error) {
	var out []model.Trigram
	dropped, err := readTable(r, "trigram", 3, km, func(codes []model.Code, freq float64) {
		out = append(out, model.Trigram{A: codes[0], B: codes[1], C: codes[2], Freq: freq})
	})
	return out, dropped, err
}

// LoadDir loads the three tables of a corpus directory. The trigram
// table is optional.
func LoadDir(dir string, km model.Keymap) (model.Corpus, Dropped, error) {
	c := model.Corpus{Name: filepath.Base(dir)}
	var d Dropped
	err := withFile(filepath.Join(dir, UnigramFile), func(r io.Reader) (err error) {
		c.Unigrams, d.Unigrams, err = LoadUnigrams(r, km)
		return err
	})
	if err != nil {
		return model.Corpus{}, Dropped{}, err
	}
	err = withFile(filepath.Join(dir, BigramFile), func(r io.Reader) (err error) {
		c.Bigrams, d.Bigrams, err = LoadBigrams(r, km)
		return err
	})
	if err != nil {
		return model.Corpus{}, Dropped{}, err
	}
	err = withFile(filepath.Join(dir, TrigramFile), func(r io.Reader) (err error) {
		c.Trigrams, d.Trigrams, err = LoadTrigrams(r, km)
		return err
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return model.Corpus{}, Dropped{}, err
	}
	return c, d, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only table.
			_ = cerr
		}
	}()
	if err := fn(file); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func readTable(r io.Reader, column string, n int, km model.Keymap, emit func([]model.Code, float64)) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: missing header", ErrFormat)
		}
		return 0, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	keyIdx, freqIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case column:
			keyIdx = i
		case "freq":
			freqIdx = i
		}
	}
	if keyIdx < 0 || freqIdx < 0 {
		return 0, fmt.Errorf("%w: header must contain %q and \"freq\"", ErrFormat, column)
	}

	dropped := 0
	codes := make([]model.Code, n)
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		if keyIdx >= len(rec) || freqIdx >= len(rec) {
			dropped++
			continue
		}
		runes := []rune(rec[keyIdx])
		if len(runes) != n || !lookupAll(km, runes, codes) {
			dropped++
			continue
		}
		freq, err := strconv.ParseFloat(strings.TrimSpace(rec[freqIdx]), 64)
		if err != nil || freq < 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
			return 0, fmt.Errorf("%w: line %d: invalid frequency %q", ErrFormat, line, rec[freqIdx])
		}
		emit(codes, freq)
	}
	return dropped, nil
}

func lookupAll(km model.Keymap, runes []rune, codes []model.Code) bool {
	for i, r := range runes {
		c, ok := km.Lookup(r)
		if !ok {
			return false
		}
		codes[i] = c
	}
	return true
}
