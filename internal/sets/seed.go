package sets

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// sampleSets parses the embedded starter sets and stamps them with now.
func sampleSets(now time.Time) ([]FlashcardSet, error) {
	var out []FlashcardSet
	if err := yaml.Unmarshal(seedYAML, &out); err != nil {
		return nil, fmt.Errorf("decode sample sets: %w", err)
	}
	for i := range out {
		out[i].CreatedAt = now.UTC().Format(time.RFC3339)
	}
	return out, nil
}
