package model

import (
	"math"
	"sort"
)

// Remnant is a usable rectangular area left on a sheet after nesting.
type Remnant struct {
	SheetID  int     `json:"sheet_id"`
	Material string  `json:"material"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Area returns the area of the remnant in square mm.
func (r Remnant) Area() float64 {
	return r.Width * r.Height
}

// MinRemnantDimension is the minimum width or height (in mm) for a remnant
// to be worth keeping. Anything narrower is waste.
const MinRemnantDimension = 50.0

// MinRemnantArea is the minimum area (in sq mm) for a remnant to be kept.
const MinRemnantArea = 10000.0 // 100mm x 100mm equivalent

// DetectRemnants finds the strips outside the used bounding box of a sheet:
// the full-height strip to the right of it and the strip below it.
func DetectRemnants(sl SheetLayout) []Remnant {
	if len(sl.Parts) == 0 {
		return []Remnant{{
			SheetID:  sl.ID,
			Material: sl.Material,
			Width:    sl.SheetWidth,
			Height:   sl.SheetHeight,
		}}
	}

	usedRight := math.Min(sl.UsedWidth, sl.SheetWidth)
	usedBottom := math.Min(sl.UsedHeight, sl.SheetHeight)

	var remnants []Remnant

	rightW := sl.SheetWidth - usedRight
	if keepRemnant(rightW, sl.SheetHeight) {
		remnants = append(remnants, Remnant{
			SheetID:  sl.ID,
			Material: sl.Material,
			X:        usedRight,
			Y:        0,
			Width:    rightW,
			Height:   sl.SheetHeight,
		})
	}

	// Only up to the used right edge so it does not overlap the right strip
	bottomH := sl.SheetHeight - usedBottom
	if keepRemnant(usedRight, bottomH) {
		remnants = append(remnants, Remnant{
			SheetID:  sl.ID,
			Material: sl.Material,
			X:        0,
			Y:        usedBottom,
			Width:    usedRight,
			Height:   bottomH,
		})
	}

	sort.SliceStable(remnants, func(i, j int) bool {
		return remnants[i].Area() > remnants[j].Area()
	})
	return remnants
}

func keepRemnant(w, h float64) bool {
	return w >= MinRemnantDimension && h >= MinRemnantDimension && w*h >= MinRemnantArea
}

// DetectAllRemnants finds remnants across all sheets in a result.
func DetectAllRemnants(result NestResult) []Remnant {
	var all []Remnant
	for _, sheet := range result.Sheets {
		all = append(all, DetectRemnants(sheet)...)
	}
	return all
}

// TotalRemnantArea returns the total area of all remnants in square mm.
func TotalRemnantArea(remnants []Remnant) float64 {
	var total float64
	for _, r := range remnants {
		total += r.Area()
	}
	return total
}
