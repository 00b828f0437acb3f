package candidate

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedEntry struct {
	DaysAgo   int   `yaml:"days_ago"`
	Candidate Input `yaml:"candidate"`
}

// SeedCandidates returns the demo dataset with application dates counted back
// from now.
func SeedCandidates(now time.Time) ([]Candidate, error) {
	var entries []seedEntry
	if err := yaml.Unmarshal(seedYAML, &entries); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}

	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		in := e.Candidate
		applied := now.AddDate(0, 0, -e.DaysAgo)
		in.ApplicationDate = &applied
		c, err := in.Build(now)
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", in.Email, err)
		}
		out = append(out, c)
	}
	return out, nil
}
