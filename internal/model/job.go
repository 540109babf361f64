package model

import (
	"time"

	"github.com/google/uuid"
)

// Job is a saved nesting request: a cut list, the sheet sizes to pack it
// against and the settings to use. Results are never stored with it.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CreatedAt  string          `json:"created_at"`
	Parts      []PartSpec      `json:"parts"`
	SheetSizes SheetSizeConfig `json:"sheet_sizes"`
	Settings   NestSettings    `json:"settings"`
}

func NewJob(name string, parts []PartSpec, sizes SheetSizeConfig, settings NestSettings) Job {
	if sizes == nil {
		sizes = SheetSizeConfig{}
	}
	return Job{
		ID:         uuid.New().String()[:8],
		Name:       name,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Parts:      copySpecs(parts),
		SheetSizes: copySizes(sizes),
		Settings:   settings,
	}
}

// TotalQuantity returns the number of part instances the job expands to.
func (j Job) TotalQuantity() int {
	total := 0
	for _, p := range j.Parts {
		total += p.Quantity
	}
	return total
}

// Materials returns the distinct material keys in first-appearance order.
func (j Job) Materials() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range j.Parts {
		m := p.MaterialKey()
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func copySpecs(specs []PartSpec) []PartSpec {
	if specs == nil {
		return []PartSpec{}
	}
	cp := make([]PartSpec, len(specs))
	copy(cp, specs)
	return cp
}

func copySizes(sizes SheetSizeConfig) SheetSizeConfig {
	cp := make(SheetSizeConfig, len(sizes))
	for k, v := range sizes {
		cp[k] = v
	}
	return cp
}
