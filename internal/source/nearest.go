package source

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eqsource/internal/geo"
	"github.com/sells-group/eqsource/internal/model"
)

// NearestResult holds the distance from an epicenter to every usable fault
// record, in layer order, and the selected nearest record.
type NearestResult struct {
	Distances []model.FaultDistance
	Nearest   model.FaultDistance
}

// NearestFault measures the planar distance from the epicenter to each fault
// line and returns the closest one. Distances are degrees scaled by
// geo.KMPerDegree. Ties go to the record that comes first in the layer.
//
// Latitude and longitude must have been supplied as floats; an integer
// coordinate is a TypeMismatchError.
func NearestFault(ep model.Epicenter, faults *model.FaultLayer) (*NearestResult, error) {
	lat, lon, err := latLon(ep, true)
	if err != nil {
		return nil, err
	}
	if faults.Empty() {
		return nil, &model.ResourceError{Ref: faults.String(), Err: eris.New("fault layer has no records")}
	}

	records, err := geographic(faults)
	if err != nil {
		return nil, err
	}

	p := geo.NewPoint(lon, lat)
	res := &NearestResult{Distances: make([]model.FaultDistance, 0, len(records))}
	best := -1
	for i, r := range records {
		d, ok := geo.DistanceToLine(r.Geometry, p)
		if !ok {
			zap.L().Debug("source: skipping fault without line geometry",
				zap.String("layer", faults.Ref),
				zap.Int("record", i),
				zap.String("name", r.Name),
			)
			continue
		}
		fd := model.NewFaultDistance(r, geo.KMPerDegree*d)
		res.Distances = append(res.Distances, fd)
		if best < 0 || fd.DistanceKM < res.Distances[best].DistanceKM {
			best = len(res.Distances) - 1
		}
	}
	if best < 0 {
		return nil, &model.ResourceError{Ref: faults.Ref, Err: eris.New("fault layer has no line geometries")}
	}
	res.Nearest = res.Distances[best]
	return res, nil
}

// geographic returns the layer's records with geometries in EPSG:4326,
// reprojecting copies when the layer is in a projected CRS.
func geographic(faults *model.FaultLayer) ([]model.FaultRecord, error) {
	if faults.EPSG == geo.EPSGWGS84 || faults.EPSG == geo.EPSGUnknown {
		return faults.Records, nil
	}
	proj, err := geo.ToGeographic(faults.EPSG)
	if err != nil {
		return nil, &model.ResourceError{Ref: faults.Ref, Err: err}
	}
	out := make([]model.FaultRecord, len(faults.Records))
	for i, r := range faults.Records {
		g, err := geo.Reproject(r.Geometry, proj)
		if err != nil {
			return nil, &model.ResourceError{Ref: faults.Ref, Err: eris.Wrapf(err, "reproject fault %q", r.Name)}
		}
		r.Geometry = g
		out[i] = r
	}
	return out, nil
}
