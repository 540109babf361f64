package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/sheetnest/internal/model"
)

// Nester runs the shelf nesting algorithm.
type Nester struct {
	Settings model.NestSettings
	logger   *zap.Logger
}

// Option configures a Nester.
type Option func(*Nester)

// WithLogger sets the logger used for per-material diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(n *Nester) {
		if l != nil {
			n.logger = l
		}
	}
}

func New(settings model.NestSettings, opts ...Option) *Nester {
	n := &Nester{Settings: settings, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Nest packs the cut list onto sheets. Each material is packed against its
// own sheet size from sizes, falling back to Settings.DefaultSheet.
//
// Structural input problems return a *ValidationError (or ErrNothingToPack)
// before anything is packed. Parts that cannot be placed are not an error:
// the result then has Success=false and still carries the partial layout.
func (n *Nester) Nest(ctx context.Context, specs []model.PartSpec, sizes model.SheetSizeConfig) (model.NestResult, error) {
	if err := ValidateSettings(n.Settings); err != nil {
		return model.NestResult{}, err
	}
	if err := ValidateSheetSizes(sizes); err != nil {
		return model.NestResult{}, err
	}
	instances, err := Expand(specs)
	if err != nil {
		return model.NestResult{}, err
	}

	groups := GroupByMaterial(instances)
	outcomes := make([]materialOutcome, len(groups))

	if n.Settings.Parallel && len(groups) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, group := range groups {
			g.Go(func() error {
				out, err := packMaterial(gctx, group, sizes.Lookup(group.Material, n.Settings.DefaultSheet), n.Settings)
				if err != nil {
					return err
				}
				outcomes[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return model.NestResult{}, err
		}
	} else {
		for i, group := range groups {
			out, err := packMaterial(ctx, group, sizes.Lookup(group.Material, n.Settings.DefaultSheet), n.Settings)
			if err != nil {
				return model.NestResult{}, err
			}
			outcomes[i] = out
		}
	}

	for _, o := range outcomes {
		n.logMaterial(o)
	}

	result := aggregate(outcomes)
	n.logger.Info("nesting finished",
		zap.Bool("success", result.Success),
		zap.Int("sheets", len(result.Sheets)),
		zap.Int("packed", result.TotalPacked),
		zap.Int("unpacked", result.TotalUnpacked),
	)
	return result, nil
}

func (n *Nester) logMaterial(o materialOutcome) {
	fields := []zap.Field{
		zap.String("material", o.material),
		zap.Float64("sheet_width", o.sheet.Width),
		zap.Float64("sheet_height", o.sheet.Height),
		zap.Int("sheets", len(o.sheets)),
		zap.Int("packed", o.packed),
		zap.Int("unpacked", len(o.unpacked)),
	}
	switch o.halt {
	case model.HaltNoProgress:
		n.logger.Warn("material halted: no remaining part fits an empty sheet", fields...)
	case model.HaltSheetCap:
		n.logger.Warn("material halted: sheet cap reached",
			append(fields, zap.Int("max_sheets", n.Settings.MaxSheetsPerMaterial))...)
	default:
		n.logger.Debug("material packed", fields...)
	}
}
