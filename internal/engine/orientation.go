package engine

import "github.com/piwi3910/sheetnest/internal/model"

// Orientations lists which placements of a part are allowed.
type Orientations struct {
	AsDefined bool // width along the sheet width
	Rotated   bool // turned 90°, width and height exchanged
}

// LegalOrientations returns the placements the part's grain allows.
// Square parts may always take either orientation since rotating them
// changes nothing.
func LegalOrientations(inst model.PartInstance) Orientations {
	if inst.Square() {
		return Orientations{AsDefined: true, Rotated: true}
	}
	switch inst.Grain {
	case model.GrainWith:
		return Orientations{AsDefined: true}
	case model.GrainReverse:
		return Orientations{Rotated: true}
	default:
		return Orientations{AsDefined: true, Rotated: true}
	}
}
