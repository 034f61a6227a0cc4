package source

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/eqsource/internal/geo"
	"github.com/sells-group/eqsource/internal/model"
)

// IsInland reports whether the epicenter lies strictly inside any polygon of
// the land layer. A point touching only a boundary is at sea.
//
// Integer-valued coordinates are accepted here, unlike NearestFault.
func IsInland(ep model.Epicenter, land *model.LandLayer) (bool, error) {
	lat, lon, err := latLon(ep, false)
	if err != nil {
		return false, err
	}
	if land.Empty() {
		return false, &model.ResourceError{Ref: land.String(), Err: eris.New("land layer has no polygons")}
	}
	return geo.ContainsAny(land.Polygons, geo.NewPoint(lon, lat)), nil
}
