package source

import (
	"fmt"

	"github.com/sells-group/eqsource/internal/model"
)

// coordinate checks that s is a numeric value within [min, max].
// With floatOnly set, integer-kinded values are rejected.
func coordinate(field string, s model.Scalar, min, max float64, floatOnly bool) (float64, error) {
	switch {
	case !s.Present():
		return 0, model.MissingField(field)
	case !s.Numeric():
		return 0, &model.TypeMismatchError{Field: field, Want: "number", Got: fmt.Sprintf("%s %q", s.Kind, s.Raw)}
	case floatOnly && s.Kind != model.KindFloat:
		return 0, &model.TypeMismatchError{Field: field, Want: "float", Got: fmt.Sprintf("%s %s", s.Kind, s.Raw)}
	}
	if s.Value < min || s.Value > max {
		return 0, &model.ValidationError{Field: field, Reason: fmt.Sprintf("must be within [%g, %g], got %g", min, max, s.Value)}
	}
	return s.Value, nil
}

func latLon(ep model.Epicenter, floatOnly bool) (lat, lon float64, err error) {
	lat, err = coordinate("latitude", ep.Latitude, model.MinLatitude, model.MaxLatitude, floatOnly)
	if err != nil {
		return 0, 0, err
	}
	lon, err = coordinate("longitude", ep.Longitude, model.MinLongitude, model.MaxLongitude, floatOnly)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
