package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/keyscore/internal/model"
)

func TestLoadBigramsDropsMalformedRows(t *testing.T) {
	input := "bigram,freq\nth,100\nHe,50\nt,7\nthe,3\nt1,9\n,4\n"
	bigrams, dropped, err := LoadBigrams(strings.NewReader(input), model.DefaultKeymap())
	if err != nil {
		t.Fatalf("LoadBigrams failed: %v", err)
	}
	if len(bigrams) != 2 {
		t.Fatalf("expected 2 bigrams, got %d", len(bigrams))
	}
	if dropped != 4 {
		t.Fatalf("expected 4 dropped rows, got %d", dropped)
	}
	if bigrams[0] != (model.Bigram{A: 20, B: 8, Freq: 100}) {
		t.Fatalf("unexpected first bigram: %+v", bigrams[0])
	}
	if bigrams[1] != (model.Bigram{A: 8, B: 5, Freq: 50}) {
		t.Fatalf("expected lower-cased second bigram, got %+v", bigrams[1])
	}
}

func TestLoadUnigramsColumnOrder(t *testing.T) {
	input := "freq,rank,unigram\n12,1,e\n8.5,2,t\n"
	unigrams, _, err := LoadUnigrams(strings.NewReader(input), model.DefaultKeymap())
	if err != nil {
		t.Fatalf("LoadUnigrams failed: %v", err)
	}
	if len(unigrams) != 2 || unigrams[0].Code != 5 || unigrams[1].Freq != 8.5 {
		t.Fatalf("unexpected unigrams: %+v", unigrams)
	}
}

func TestLoadUnigramsLastFrequencyWins(t *testing.T) {
	input := "unigram,freq\nA,10\nb,5\na,5\n"
	unigrams, _, err := LoadUnigrams(strings.NewReader(input), model.DefaultKeymap())
	if err != nil {
		t.Fatalf("LoadUnigrams failed: %v", err)
	}
	want := []model.Unigram{{Code: 1, Freq: 5}, {Code: 2, Freq: 5}}
	if len(unigrams) != len(want) {
		t.Fatalf("expected %v, got %v", want, unigrams)
	}
	for i := range want {
		if unigrams[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, unigrams)
		}
	}
}

func TestLoadTrigramsErrors(t *testing.T) {
	km := model.DefaultKeymap()
	if _, _, err := LoadTrigrams(strings.NewReader("gram,freq\nthe,1\n"), km); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for missing column, got %v", err)
	}
	if _, _, err := LoadTrigrams(strings.NewReader("trigram,freq\nthe,many\n"), km); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for bad frequency, got %v", err)
	}
	if _, _, err := LoadTrigrams(strings.NewReader(""), km); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for empty input, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		UnigramFile: "unigram,freq\na,3\nb,1\n",
		BigramFile:  "bigram,freq\nab,2\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	c, dropped, err := LoadDir(dir, model.DefaultKeymap())
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(c.Unigrams) != 2 || len(c.Bigrams) != 1 || len(c.Trigrams) != 0 {
		t.Fatalf("unexpected corpus sizes: %+v", c)
	}
	if dropped != (Dropped{}) {
		t.Fatalf("expected nothing dropped, got %+v", dropped)
	}
	if c.Name != filepath.Base(dir) {
		t.Fatalf("expected corpus name from directory, got %q", c.Name)
	}
}

func TestLoadDirRequiresUnigrams(t *testing.T) {
	if _, _, err := LoadDir(t.TempDir(), model.DefaultKeymap()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestFromWords(t *testing.T) {
	c := FromWords("test", map[string]float64{
		"abc":  2,
		"ab-a": 1,
	}, model.DefaultKeymap())
	if c.Name != "test" {
		t.Fatalf("unexpected name %q", c.Name)
	}
	if c.Unigrams[0] != (model.Unigram{Code: 1, Freq: 4}) {
		t.Fatalf("unexpected top unigram: %+v", c.Unigrams[0])
	}
	if c.Bigrams[0] != (model.Bigram{A: 1, B: 2, Freq: 3}) {
		t.Fatalf("unexpected top bigram: %+v", c.Bigrams[0])
	}
	if len(c.Bigrams) != 2 {
		t.Fatalf("hyphen must break bigrams, got %+v", c.Bigrams)
	}
	if len(c.Trigrams) != 1 || c.Trigrams[0] != (model.Trigram{A: 1, B: 2, C: 3, Freq: 2}) {
		t.Fatalf("unexpected trigrams: %+v", c.Trigrams)
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	if err := os.WriteFile(path, []byte("the 10\nof\n\nthe 2\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("LoadWords failed: %v", err)
	}
	if words["the"] != 12 || words["of"] != 1 {
		t.Fatalf("unexpected counts: %v", words)
	}
}
