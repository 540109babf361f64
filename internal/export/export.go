// Package export renders nesting results to PDF reports, QR part labels,
// DXF cutting layouts, Excel cut lists, PNG previews and HTML charts.
package export

import (
	"errors"
	"hash/fnv"

	"github.com/piwi3910/sheetnest/internal/model"
)

// ErrNoSheets is returned when a result has nothing to render.
var ErrNoSheets = errors.New("no sheets to export")

// rgb is an 8-bit colour shared by the PDF and PNG renderers.
type rgb struct {
	R, G, B int
}

func (c rgb) floats() (float64, float64, float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

var palette = []rgb{
	{76, 175, 80},  // green
	{33, 150, 243}, // blue
	{255, 152, 0},  // orange
	{156, 39, 176}, // purple
	{0, 188, 212},  // cyan
	{244, 67, 54},  // red
	{255, 235, 59}, // yellow
	{121, 85, 72},  // brown
}

// Sheet and remnant colours.
var (
	sheetFill   = rgb{222, 196, 160}
	remnantFill = rgb{200, 230, 201}
	outline     = rgb{40, 40, 40}
)

// partColor gives every part name a stable colour across sheets and formats.
func partColor(name string) rgb {
	h := fnv.New32a()
	h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}

func requireSheets(result model.NestResult) error {
	if len(result.Sheets) == 0 {
		return ErrNoSheets
	}
	return nil
}
