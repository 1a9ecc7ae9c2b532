package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

type seedFile struct {
	Items    []Item             `json:"items"`
	TaxRates map[string]float64 `json:"taxRates"`
}

// LoadFile seeds a Memory lookup from a JSON catalog file. An empty path
// yields an empty catalog.
func LoadFile(path string) (*Memory, error) {
	if path == "" {
		return NewMemory(nil, nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewMemory(seed.Items, seed.TaxRates), nil
}
