package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/eqsource/internal/model"
)

// Classification is a classification result plus the per-fault distance
// table it was derived from.
type Classification struct {
	model.Result `yaml:",inline"`
	Distances    []model.FaultDistance `json:"distances,omitempty" yaml:"distances,omitempty"`
}

// Classifier classifies earthquakes against a fixed pair of layers. It holds
// no mutable state and is safe for concurrent use.
type Classifier struct {
	land   *model.LandLayer
	faults *model.FaultLayer
}

// NewClassifier creates a Classifier over already loaded layers.
func NewClassifier(land *model.LandLayer, faults *model.FaultLayer) *Classifier {
	return &Classifier{land: land, faults: faults}
}

// Classify runs containment and nearest-fault lookup concurrently, then
// attributes the source. Either a full classification or an error is
// returned, never a partial result.
func (c *Classifier) Classify(ctx context.Context, ep model.Epicenter) (*Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "source: classify")
	}

	var (
		inland  bool
		nearest *NearestResult
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		inland, err = IsInland(ep, c.land)
		return err
	})
	g.Go(func() error {
		var err error
		nearest, err = NearestFault(ep, c.faults)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res, err := Attribute(model.LocationFromInland(inland), &nearest.Nearest, ep.Depth)
	if err != nil {
		return nil, err
	}

	zap.L().Info("classified earthquake source",
		zap.String("latitude", ep.Latitude.String()),
		zap.String("longitude", ep.Longitude.String()),
		zap.Float64("depth_km", res.DepthKM),
		zap.Stringer("location", res.Location),
		zap.String("segment", res.Segment),
		zap.String("nearest_fault", nearest.Nearest.Name),
		zap.Float64("distance_km", nearest.Nearest.DistanceKM),
	)

	return &Classification{Result: res, Distances: nearest.Distances}, nil
}
