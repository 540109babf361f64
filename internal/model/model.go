package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DefaultMaterial is the material key used for parts that do not name one.
const DefaultMaterial = "Default_Material"

// Grain represents the grain direction constraint for a part.
type Grain int

const (
	GrainNone    Grain = iota // No grain constraint, can rotate freely
	GrainWith                 // Grain follows the part as defined, no rotation
	GrainReverse              // Grain runs across the part, width and height are exchanged
)

func (g Grain) String() string {
	switch g {
	case GrainWith:
		return "with"
	case GrainReverse:
		return "reverse"
	default:
		return "none"
	}
}

// Valid reports whether g is one of the known grain variants.
func (g Grain) Valid() bool {
	return g == GrainNone || g == GrainWith || g == GrainReverse
}

// ParseGrain converts a grain direction string to a Grain value.
// Matching is case-insensitive and an empty string means GrainNone.
func ParseGrain(s string) (Grain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n", "-":
		return GrainNone, nil
	case "with", "w":
		return GrainWith, nil
	case "reverse", "r":
		return GrainReverse, nil
	default:
		return GrainNone, fmt.Errorf("unknown grain direction %q", s)
	}
}

func (g Grain) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func (g *Grain) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = GrainNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("grain must be a string: %w", err)
	}
	parsed, err := ParseGrain(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// PartSpec is one line of a cut list: a rectangular part and how many to cut.
type PartSpec struct {
	Name     string  `json:"name"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Quantity int     `json:"quantity"`
	Material string  `json:"material,omitempty"`
	Grain    Grain   `json:"grain"`
}

func NewPartSpec(name string, w, h float64, qty int) PartSpec {
	return PartSpec{
		Name:     name,
		Width:    w,
		Height:   h,
		Quantity: qty,
		Grain:    GrainNone,
	}
}

// MaterialKey returns the material the spec is packed against.
func (p PartSpec) MaterialKey() string {
	if p.Material == "" {
		return DefaultMaterial
	}
	return p.Material
}

// PartInstance is a single unit of a PartSpec.
type PartInstance struct {
	InstanceID     string  `json:"instance_id"`
	Name           string  `json:"name"`
	OriginalWidth  float64 `json:"original_width"`
	OriginalHeight float64 `json:"original_height"`
	Material       string  `json:"material"`
	Grain          Grain   `json:"grain"`
	Packed         bool    `json:"packed"`
}

// Square reports whether the part has equal sides.
func (p PartInstance) Square() bool {
	return p.OriginalWidth == p.OriginalHeight
}

// PlacedPart is a PartInstance positioned on a sheet.
type PlacedPart struct {
	PartInstance
	X            float64 `json:"x"` // Position from left edge (mm)
	Y            float64 `json:"y"` // Position from top edge (mm)
	PlacedWidth  float64 `json:"placed_width"`
	PlacedHeight float64 `json:"placed_height"`
	Rotated      bool    `json:"rotated"` // Whether part was rotated 90°
}

// SheetSize is the nominal size of one raw material sheet.
type SheetSize struct {
	Width  float64 `json:"width" mapstructure:"width" yaml:"width"`
	Height float64 `json:"height" mapstructure:"height" yaml:"height"`
}

// DefaultSheetSize is used for any material without an explicit sheet size.
var DefaultSheetSize = SheetSize{Width: 2440, Height: 1220}

// Area returns the sheet area in square mm.
func (s SheetSize) Area() float64 {
	return s.Width * s.Height
}

// Transposed returns the size with width and height exchanged.
func (s SheetSize) Transposed() SheetSize {
	return SheetSize{Width: s.Height, Height: s.Width}
}

// SheetSizeConfig maps a material key to its sheet size.
type SheetSizeConfig map[string]SheetSize

// Lookup returns the sheet size for material, or fallback when none is configured.
func (c SheetSizeConfig) Lookup(material string, fallback SheetSize) SheetSize {
	if s, ok := c[material]; ok {
		return s
	}
	return fallback
}

// SheetLayout represents one sheet with its placed parts.
type SheetLayout struct {
	ID                int          `json:"id"`
	Material          string       `json:"material"`
	SheetWidth        float64      `json:"sheet_width"`
	SheetHeight       float64      `json:"sheet_height"`
	Parts             []PlacedPart `json:"parts"`
	UsedWidth         float64      `json:"used_width"`
	UsedHeight        float64      `json:"used_height"`
	EfficiencyPercent float64      `json:"efficiency_percent"`
}

// Size returns the nominal sheet size.
func (sl SheetLayout) Size() SheetSize {
	return SheetSize{Width: sl.SheetWidth, Height: sl.SheetHeight}
}

// Area returns the sheet area.
func (sl SheetLayout) Area() float64 {
	return sl.SheetWidth * sl.SheetHeight
}

// PartsArea returns the area claimed by placed parts including kerf.
func (sl SheetLayout) PartsArea(kerf float64) float64 {
	var total float64
	for _, p := range sl.Parts {
		total += (p.OriginalWidth + kerf) * (p.OriginalHeight + kerf)
	}
	return total
}

// RoundTenth rounds v to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// NestSettings holds the packing parameters.
type NestSettings struct {
	// Clearance added to both dims of every part (mm)
	Kerf float64 `json:"kerf" mapstructure:"kerf" yaml:"kerf"`
	// Used when a material has no sheet size
	DefaultSheet SheetSize `json:"default_sheet" mapstructure:"default_sheet" yaml:"default_sheet"`
	// Safety bound on sheets opened per material
	MaxSheetsPerMaterial int `json:"max_sheets_per_material" mapstructure:"max_sheets_per_material" yaml:"max_sheets_per_material"`
	// Pack material groups concurrently
	Parallel bool `json:"parallel" mapstructure:"parallel" yaml:"parallel"`
}

func DefaultSettings() NestSettings {
	return NestSettings{
		Kerf:                 3.0,
		DefaultSheet:         DefaultSheetSize,
		MaxSheetsPerMaterial: 50,
		Parallel:             false,
	}
}

// HaltReason records why packing for a material stopped with parts left over.
type HaltReason int

const (
	HaltNone       HaltReason = iota
	HaltNoProgress            // A fresh sheet could not take any remaining part
	HaltSheetCap              // MaxSheetsPerMaterial was reached
)

func (h HaltReason) String() string {
	switch h {
	case HaltNoProgress:
		return "no_progress"
	case HaltSheetCap:
		return "sheet_cap"
	default:
		return "none"
	}
}

func (h HaltReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *HaltReason) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "no_progress":
		*h = HaltNoProgress
	case "sheet_cap":
		*h = HaltSheetCap
	case "", "none":
		*h = HaltNone
	default:
		return fmt.Errorf("unknown halt reason %q", s)
	}
	return nil
}

// MaterialSummary reports the packing outcome of one material group.
type MaterialSummary struct {
	Material    string     `json:"material"`
	SheetWidth  float64    `json:"sheet_width"`
	SheetHeight float64    `json:"sheet_height"`
	Instances   int        `json:"instances"`
	Packed      int        `json:"packed"`
	Unpacked    int        `json:"unpacked"`
	Sheets      int        `json:"sheets"`
	Halt        HaltReason `json:"halt"`
}

// NestResult holds the full outcome of a nesting run.
type NestResult struct {
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	Sheets         []SheetLayout     `json:"sheets"`
	Unpacked       []PartInstance    `json:"unpacked"`
	Materials      []MaterialSummary `json:"materials"`
	TotalInstances int               `json:"total_instances"`
	TotalPacked    int               `json:"total_packed"`
	TotalUnpacked  int               `json:"total_unpacked"`
}

// TotalEfficiency returns the overall material usage percentage.
func (r NestResult) TotalEfficiency(kerf float64) float64 {
	var usedArea, totalArea float64
	for _, s := range r.Sheets {
		usedArea += s.PartsArea(kerf)
		totalArea += s.Area()
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}

// SheetsForMaterial returns the sheets packed for one material in run order.
func (r NestResult) SheetsForMaterial(material string) []SheetLayout {
	var out []SheetLayout
	for _, s := range r.Sheets {
		if s.Material == material {
			out = append(out, s)
		}
	}
	return out
}
