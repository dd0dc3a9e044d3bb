// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/keyscore/internal/metrics"
	"github.com/verte-zerg/keyscore/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Keymap   map[string]int `toml:"keymap"`
	Geometry GeometryConfig `toml:"geometry"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Corpus   CorpusConfig   `toml:"corpus"`
}

// GeometryConfig maps the per-hand key matrices.
type GeometryConfig struct {
	Left  *HandConfig `toml:"left"`
	Right *HandConfig `toml:"right"`
}

// HandConfig maps the four matrices of one hand.
type HandConfig struct {
	Template [][]int     `toml:"template"`
	Fingers  [][]int     `toml:"fingers"`
	Effort   [][]float64 `toml:"effort"`
	Distance [][]float64 `toml:"distance"`
}

// ScoringConfig maps metric engine settings.
type ScoringConfig struct {
	Scale        *float64 `toml:"scale"`
	Unplaced     *string  `toml:"unplaced"`
	Workers      *int     `toml:"workers"`
	Format       *string  `toml:"format"`
	StretchPairs [][2]int `toml:"stretch-pairs"`
}

// CorpusConfig maps the default frequency corpus.
type CorpusConfig struct {
	Name *string `toml:"name"`
	Dir  *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// KeymapOrDefault returns the configured keymap, or a-z when none is set.
func (c FileConfig) KeymapOrDefault() (model.Keymap, error) {
	if len(c.Keymap) == 0 {
		return model.DefaultKeymap(), nil
	}
	symbols := make(map[string]model.Code, len(c.Keymap))
	for sym, code := range c.Keymap {
		symbols[sym] = model.Code(code)
	}
	km, err := model.NewKeymap(symbols)
	if err != nil {
		return model.Keymap{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return km, nil
}

// GeometryOrDefault returns the configured geometry with unset hands
// taken from the default keyboard. The result is validated.
func (c FileConfig) GeometryOrDefault() (model.Geometry, error) {
	g := model.DefaultGeometry()
	if h := c.Geometry.Left; h != nil {
		g.Left = h.hand()
	}
	if h := c.Geometry.Right; h != nil {
		g.Right = h.hand()
	}
	if err := Validate(g); err != nil {
		return model.Geometry{}, err
	}
	return g, nil
}

// StretchPairs returns the configured lateral stretch column pairs.
func (c FileConfig) StretchPairs() []metrics.ColumnPair {
	if len(c.Scoring.StretchPairs) == 0 {
		return nil
	}
	pairs := make([]metrics.ColumnPair, len(c.Scoring.StretchPairs))
	for i, p := range c.Scoring.StretchPairs {
		pairs[i] = metrics.ColumnPair{A: p[0], B: p[1]}
	}
	return pairs
}

func (h HandConfig) hand() model.Hand {
	return model.Hand{
		Template: h.Template,
		Fingers:  h.Fingers,
		Effort:   h.Effort,
		Distance: h.Distance,
	}
}

// ParsePolicy parses an unplaced-character policy name.
func ParsePolicy(name string) (model.UnplacedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exclude":
		return model.Exclude, nil
	case "strict":
		return model.Strict, nil
	default:
		return model.Exclude, fmt.Errorf("%w: unknown unplaced policy %q (want exclude or strict)", ErrConfig, name)
	}
}
