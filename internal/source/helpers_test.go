package source

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/eqsource/internal/model"
)

// box returns an axis-aligned square polygon.
func box(t *testing.T, minLon, minLat, maxLon, maxLat float64) *geom.Polygon {
	t.Helper()
	poly := geom.NewPolygon(geom.XY)
	require.NoError(t, poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		minLon, minLat, maxLon, minLat, maxLon, maxLat, minLon, maxLat, minLon, minLat,
	})))
	return poly
}

func line(coords ...float64) *geom.LineString {
	return geom.NewLineStringFlat(geom.XY, coords)
}

func fault(name string, g geom.T) model.FaultRecord {
	return model.FaultRecord{ID: name, Name: name, Type: "strike-slip", MaxMagnitude: 7.4, SlipRate: 10, Geometry: g}
}

func faultLayer(records ...model.FaultRecord) *model.FaultLayer {
	return &model.FaultLayer{Ref: "faults.geojson", EPSG: 4326, Records: records}
}
