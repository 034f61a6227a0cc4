package model

// Coordinate bounds in degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Epicenter is the surface location and focal depth of one earthquake event.
// Fields keep the kind they were supplied as so that each pipeline stage can
// apply its own input contract.
type Epicenter struct {
	Latitude  Scalar
	Longitude Scalar
	Depth     Scalar // kilometers
}

// NewEpicenter builds an epicenter from float coordinates and depth.
func NewEpicenter(lat, lon, depth float64) Epicenter {
	return Epicenter{Latitude: Float(lat), Longitude: Float(lon), Depth: Float(depth)}
}

// ParseEpicenter builds an epicenter from raw text values, e.g. CLI flags.
func ParseEpicenter(lat, lon, depth string) Epicenter {
	return Epicenter{Latitude: ParseScalar(lat), Longitude: ParseScalar(lon), Depth: ParseScalar(depth)}
}
