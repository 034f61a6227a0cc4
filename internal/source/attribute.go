package source

import (
	"fmt"

	"github.com/sells-group/eqsource/internal/model"
)

// Attribution thresholds (kilometers).
const (
	// SubductionDepthKM: events deeper than this are attributed to the
	// subduction zone whatever their location.
	SubductionDepthKM = 50.0
	// LandAttributionKM: a shallow onshore event is attributed to the nearest
	// named fault only when it is strictly closer than this.
	LandAttributionKM = 16.0
)

// Attribute combines the location class, the nearest fault and the focal
// depth into a classification. Rules, first match wins:
//   - depth > 50 km: subduction zone
//   - LAND and nearest fault < 16 km: the fault's name
//   - LAND otherwise: Local Fault
//   - SEA: the nearest fault's name, at any distance
func Attribute(location model.LocationClass, nearest *model.FaultDistance, depth model.Scalar) (model.Result, error) {
	if location == model.LocationUnknown {
		return model.Result{}, model.MissingField("location_class")
	}
	if nearest == nil {
		return model.Result{}, model.MissingField("nearest_fault")
	}
	if !depth.Present() {
		return model.Result{}, model.MissingField("depth")
	}
	if !depth.Numeric() {
		return model.Result{}, &model.TypeMismatchError{Field: "depth", Want: "number", Got: fmt.Sprintf("%s %q", depth.Kind, depth.Raw)}
	}
	if !location.Valid() {
		return model.Result{}, &model.TypeMismatchError{Field: "location_class", Want: "LAND or SEA", Got: location.String()}
	}
	if depth.Value < 0 {
		return model.Result{}, &model.ValidationError{Field: "depth", Reason: fmt.Sprintf("must be >= 0, got %g", depth.Value)}
	}

	fault := *nearest
	res := model.Result{Location: location, Nearest: &fault, DepthKM: depth.Value}
	switch {
	case depth.Value > SubductionDepthKM:
		res.Segment = model.SegmentSubduction
	case location == model.LocationSea:
		res.Segment = fault.Name
	case fault.DistanceKM < LandAttributionKM:
		res.Segment = fault.Name
	default:
		res.Segment = model.SegmentLocalFault
	}
	return res, nil
}
