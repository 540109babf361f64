package engine

import (
	"sort"

	"github.com/piwi3910/sheetnest/internal/model"
)

// MaterialGroup holds the instances of a single material.
type MaterialGroup struct {
	Material  string
	Instances []model.PartInstance
}

// GroupByMaterial splits instances into one group per material key.
// Groups come out in order of first appearance and keep input order inside
// each group, so the split is deterministic.
func GroupByMaterial(instances []model.PartInstance) []MaterialGroup {
	index := make(map[string]int)
	var groups []MaterialGroup

	for _, inst := range instances {
		mat := inst.Material
		if mat == "" {
			mat = model.DefaultMaterial
		}
		i, ok := index[mat]
		if !ok {
			i = len(groups)
			index[mat] = i
			groups = append(groups, MaterialGroup{Material: mat})
		}
		groups[i].Instances = append(groups[i].Instances, inst)
	}
	return groups
}

func sortedMaterials(sizes model.SheetSizeConfig) []string {
	materials := make([]string, 0, len(sizes))
	for m := range sizes {
		materials = append(materials, m)
	}
	sort.Strings(materials)
	return materials
}
