package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ErrNothingToPack is returned when the cut list is empty.
var ErrNothingToPack = errors.New("nothing to pack: part list is empty")

// Issue describes one invalid input record. Index is the position of the
// part spec in the input, or -1 for problems outside the part list.
type Issue struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	Reasons []string `json:"reasons"`
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Name, strings.Join(i.Reasons, ", "))
	}
	return fmt.Sprintf("part %d (%q): %s", i.Index+1, i.Name, strings.Join(i.Reasons, ", "))
}

// ValidationError is returned when the input is structurally invalid.
// No packing is attempted when it occurs.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid input: " + e.Issues[0].String()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("invalid input (%d problems): %s", len(e.Issues), strings.Join(parts, "; "))
}

// NewValidationError builds a ValidationError for a single non-part problem.
func NewValidationError(field string, reasons ...string) *ValidationError {
	return &ValidationError{Issues: []Issue{{Index: -1, Name: field, Reasons: reasons}}}
}

// MaxInstances caps the number of part instances one cut list may expand to.
const MaxInstances = 100_000

// ValidateSpecs checks every part spec and reports all violations at once.
func ValidateSpecs(specs []model.PartSpec) error {
	var issues []Issue
	total := 0
	for i, p := range specs {
		var reasons []string
		if strings.TrimSpace(p.Name) == "" {
			reasons = append(reasons, "name must not be empty")
		}
		if !(p.Width > 0) {
			reasons = append(reasons, fmt.Sprintf("width must be positive (got %g)", p.Width))
		}
		if !(p.Height > 0) {
			reasons = append(reasons, fmt.Sprintf("height must be positive (got %g)", p.Height))
		}
		switch {
		case p.Quantity <= 0:
			reasons = append(reasons, fmt.Sprintf("quantity must be positive (got %d)", p.Quantity))
		case p.Quantity > MaxInstances:
			reasons = append(reasons, fmt.Sprintf("quantity must be at most %d (got %d)", MaxInstances, p.Quantity))
		case total <= MaxInstances:
			total += p.Quantity
		}
		if !p.Grain.Valid() {
			reasons = append(reasons, fmt.Sprintf("unknown grain direction %d", int(p.Grain)))
		}
		if len(reasons) > 0 {
			issues = append(issues, Issue{Index: i, Name: p.Name, Reasons: reasons})
		}
	}
	if total > MaxInstances {
		issues = append(issues, Issue{Index: -1, Name: "parts", Reasons: []string{
			fmt.Sprintf("total quantity exceeds %d instances", MaxInstances),
		}})
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// ValidateSheetSizes checks that every configured sheet size is usable.
func ValidateSheetSizes(sizes model.SheetSizeConfig) error {
	var issues []Issue
	for _, mat := range sortedMaterials(sizes) {
		s := sizes[mat]
		var reasons []string
		if strings.TrimSpace(mat) == "" {
			reasons = append(reasons, "material name must not be empty")
		}
		if !(s.Width > 0) || !(s.Height > 0) {
			reasons = append(reasons, fmt.Sprintf("sheet size must be positive (got %gx%g)", s.Width, s.Height))
		}
		if len(reasons) > 0 {
			issues = append(issues, Issue{Index: -1, Name: fmt.Sprintf("sheet_sizes[%s]", mat), Reasons: reasons})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// ValidateSettings checks the packing parameters.
func ValidateSettings(s model.NestSettings) error {
	var issues []Issue
	if s.Kerf < 0 {
		issues = append(issues, Issue{Index: -1, Name: "kerf", Reasons: []string{fmt.Sprintf("must not be negative (got %g)", s.Kerf)}})
	}
	if !(s.DefaultSheet.Width > 0) || !(s.DefaultSheet.Height > 0) {
		issues = append(issues, Issue{Index: -1, Name: "default_sheet", Reasons: []string{
			fmt.Sprintf("must be positive (got %gx%g)", s.DefaultSheet.Width, s.DefaultSheet.Height),
		}})
	}
	if s.MaxSheetsPerMaterial < 1 {
		issues = append(issues, Issue{Index: -1, Name: "max_sheets_per_material", Reasons: []string{
			fmt.Sprintf("must be at least 1 (got %d)", s.MaxSheetsPerMaterial),
		}})
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
