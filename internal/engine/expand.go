package engine

import (
	"fmt"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Expand validates the cut list and turns every spec into Quantity
// individual instances, in input order.
func Expand(specs []model.PartSpec) ([]model.PartInstance, error) {
	if len(specs) == 0 {
		return nil, ErrNothingToPack
	}
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range specs {
		total += p.Quantity
	}

	instances := make([]model.PartInstance, 0, total)
	for i, p := range specs {
		mat := p.MaterialKey()
		for unit := 0; unit < p.Quantity; unit++ {
			instances = append(instances, model.PartInstance{
				InstanceID:     instanceID(p.Name, i, unit),
				Name:           p.Name,
				OriginalWidth:  p.Width,
				OriginalHeight: p.Height,
				Material:       mat,
				Grain:          p.Grain,
			})
		}
	}
	return instances, nil
}

// instanceID is unique per expansion even when spec names repeat.
func instanceID(name string, specIndex, unit int) string {
	return fmt.Sprintf("%s#%d.%d", name, specIndex+1, unit+1)
}
