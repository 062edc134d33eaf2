// Package scenario loads field populations and timelines from YAML or JSON.
package scenario

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/triad-field/internal/resonance"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// #region load
// LoadFile reads a scenario file. The format is chosen by extension.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Load parses a scenario. ext is a format hint (".yaml", ".yml", ".json");
// empty means detect from content. The result is validated.
func Load(data []byte, ext string) (*Scenario, error) {
	var s Scenario
	ext = strings.ToLower(ext)
	isJSON := ext == ".json" ||
		(ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{"))
	if isJSON {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse scenario json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse scenario yaml: %w", err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadBuiltin returns one of the scenarios shipped with the binary.
func LoadBuiltin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("scenario %q not found (available: %s): %w",
			name, strings.Join(ListBuiltin(), ", "), err)
	}
	s, err := Load(data, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin %q: %w", name, err)
	}
	return s, nil
}

// ListBuiltin returns the names of the shipped scenarios, sorted.
func ListBuiltin() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}

// #endregion load

// #region validate
// Validate rejects empty scenarios, blank or duplicate entity ids and
// malformed generators.
func (s *Scenario) Validate() error {
	if len(s.Entities) == 0 && s.Generate == nil && len(s.Timeline) == 0 {
		return ErrEmpty
	}
	if s.Steps < 0 {
		return fmt.Errorf("scenario %s: steps must be >= 0, got %d", s.Name, s.Steps)
	}
	if g := s.Generate; g != nil {
		if g.Count <= 0 {
			return fmt.Errorf("scenario %s: generate.count must be > 0, got %d", s.Name, g.Count)
		}
		if g.Octaves < 0 {
			return fmt.Errorf("scenario %s: generate.octaves must be >= 0", s.Name)
		}
	}
	seen := make(map[string]bool)
	for _, e := range s.Population() {
		if e.ID == "" {
			return fmt.Errorf("scenario %s: entity with empty id", s.Name)
		}
		if seen[e.ID] {
			return fmt.Errorf("scenario %s: duplicate entity id %q", s.Name, e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// #endregion validate

// #region population
// Population is the explicit entities followed by the generated ones.
func (s *Scenario) Population() []resonance.Entity {
	out := append([]resonance.Entity(nil), s.Entities...)
	if s.Generate != nil {
		out = append(out, Generate(*s.Generate, s.Seed)...)
	}
	return out
}

// BuildField creates a field holding the scenario's population.
func (s *Scenario) BuildField(cfg resonance.FieldConfig) *resonance.Field {
	f := resonance.NewField(cfg)
	for _, e := range s.Population() {
		f.Add(e)
	}
	return f
}

// Generate produces g.Count entities named gen-000, gen-001, ... Each
// component is base + amplitude*(2n-1), where n is normalized simplex noise
// sampled along the entity index with one generator per component. The same
// seed always yields the same population.
func Generate(g GenerateSpec, seed int64) []resonance.Entity {
	freq := g.Frequency
	if freq <= 0 {
		freq = 0.1
	}
	octaves := g.Octaves
	if octaves <= 0 {
		octaves = 1
	}
	patternNoise := opensimplex.NewNormalized(seed)
	intentNoise := opensimplex.NewNormalized(seed + 1)
	presenceNoise := opensimplex.NewNormalized(seed + 2)

	out := make([]resonance.Entity, g.Count)
	for i := range out {
		x := float64(i)
		out[i].ID = fmt.Sprintf("gen-%03d", i)
		out[i].Pattern = g.Base + g.Amplitude*(2*octaveNoise(patternNoise, x, 0, octaves, freq)-1)
		out[i].Intent = g.Base + g.Amplitude*(2*octaveNoise(intentNoise, x, 0, octaves, freq)-1)
		out[i].Presence = g.Base + g.Amplitude*(2*octaveNoise(presenceNoise, x, 0, octaves, freq)-1)
	}
	return out
}

// octaveNoise layers octaves of noise, halving amplitude and doubling
// frequency each time. The result stays in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		frequency *= 2
	}

	return total / maxVal
}

// #endregion population
