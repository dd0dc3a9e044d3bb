package corpus

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/verte-zerg/keyscore/internal/model"
)

// LoadWords reads one word per line from the provided file path. An
// optional second whitespace-separated field is the word's count; words
// without one count once.
func LoadWords(path string) (map[string]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	words := map[string]float64{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		count := 1.0
		if len(fields) > 1 {
			if _, err := fmt.Sscanf(fields[1], "%g", &count); err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid count %q for %q", ErrFormat, fields[1], fields[0])
			}
		}
		words[fields[0]] += count
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// FromWords counts the n-grams inside each word. Runs of mapped
// characters are counted; an unmapped character breaks the run, so no
// n-gram spans it. Tables are sorted by descending frequency.
func FromWords(name string, words map[string]float64, km model.Keymap) model.Corpus {
	uni := map[model.Code]float64{}
	bi := map[[2]model.Code]float64{}
	tri := map[[3]model.Code]float64{}
	for word, count := range words {
		var run []model.Code
		for _, r := range word {
			code, ok := km.Lookup(r)
			if !ok {
				run = run[:0]
				continue
			}
			run = append(run, code)
			n := len(run)
			uni[code] += count
			if n >= 2 {
				bi[[2]model.Code{run[n-2], run[n-1]}] += count
			}
			if n >= 3 {
				tri[[3]model.Code{run[n-3], run[n-2], run[n-1]}] += count
			}
		}
	}

	c := model.Corpus{Name: name}
	for code, f := range uni {
		c.Unigrams = append(c.Unigrams, model.Unigram{Code: code, Freq: f})
	}
	for k, f := range bi {
		c.Bigrams = append(c.Bigrams, model.Bigram{A: k[0], B: k[1], Freq: f})
	}
	for k, f := range tri {
		c.Trigrams = append(c.Trigrams, model.Trigram{A: k[0], B: k[1], C: k[2], Freq: f})
	}
	sort.Slice(c.Unigrams, func(i, j int) bool {
		a, b := c.Unigrams[i], c.Unigrams[j]
		if a.Freq == b.Freq {
			return a.Code < b.Code
		}
		return a.Freq > b.Freq
	})
	sort.Slice(c.Bigrams, func(i, j int) bool {
		a, b := c.Bigrams[i], c.Bigrams[j]
		if a.Freq == b.Freq {
			return a.A < b.A || (a.A == b.A && a.B < b.B)
		}
		return a.Freq > b.Freq
	})
	sort.Slice(c.Trigrams, func(i, j int) bool {
		a, b := c.Trigrams[i], c.Trigrams[j]
		if a.Freq == b.Freq {
			if a.A != b.A {
				return a.A < b.A
			}
			if a.B != b.B {
				return a.B < b.B
			}
			return a.C < b.C
		}
		return a.Freq > b.Freq
	})
	return c
}
