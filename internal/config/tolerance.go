package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tolerances holds the point-matching tolerance in meters, optionally
// overridden per highway:
//
//	default_m: 50
//	rodovias:
//	  BR-101: 30
//	  SC-401: 80
type Tolerances struct {
	DefaultM float64            `yaml:"default_m"`
	Rodovias map[string]float64 `yaml:"rodovias"`
}

// LoadTolerances reads path. An empty path gives def for every highway.
func LoadTolerances(path string, def float64) (*Tolerances, error) {
	t := &Tolerances{DefaultM: def}
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tolerance file: %w", err)
	}
	if err := yaml.Unmarshal(b, t); err != nil {
		return nil, fmt.Errorf("parse tolerance file %s: %w", path, err)
	}
	if t.DefaultM <= 0 {
		return nil, fmt.Errorf("tolerance file %s: default_m must be positive", path)
	}
	norm := make(map[string]float64, len(t.Rodovias))
	for k, v := range t.Rodovias {
		if v <= 0 {
			return nil, fmt.Errorf("tolerance file %s: %s must be positive", path, k)
		}
		norm[rodoviaKey(k)] = v
	}
	t.Rodovias = norm
	return t, nil
}

// ToleranceFor returns the tolerance for a highway; "br101", "BR 101" and
// "BR-101" are the same highway.
func (t *Tolerances) ToleranceFor(rodovia string) float64 {
	if v, ok := t.Rodovias[rodoviaKey(rodovia)]; ok {
		return v
	}
	return t.DefaultM
}

func rodoviaKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", " ", "", "/", "").Replace(s)
}
