package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// WGS84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563

	utmK0             = 0.9996
	utmFalseEasting   = 500000.0
	utmFalseNorthings = 10000000.0
)

// Projector converts projected x/y to longitude/latitude in degrees.
type Projector func(x, y float64) (lon, lat float64)

// ToGeographic returns the inverse projection for epsg. EPSG:4326 and an
// undeclared CRS map to the identity.
func ToGeographic(epsg int) (Projector, error) {
	switch epsg {
	case EPSGUnknown, EPSGWGS84:
		return func(x, y float64) (float64, float64) { return x, y }, nil
	case EPSGWebMercator:
		return inverseWebMercator, nil
	case EPSGUnsupported:
		return nil, eris.New("geo: unrecognised projected crs")
	}
	if zone, south, ok := utmZone(epsg); ok {
		return inverseUTM(zone, south), nil
	}
	return nil, eris.Errorf("geo: unsupported crs EPSG:%d", epsg)
}

// Reproject returns a copy of g with every coordinate passed through proj.
// Z and M ordinates are kept as-is.
func Reproject(g geom.T, proj Projector) (geom.T, error) {
	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(t.Layout(), project(t, proj)).SetSRID(EPSGWGS84), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(t.Layout(), project(t, proj)).SetSRID(EPSGWGS84), nil
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(t.Layout(), project(t, proj), t.Ends()).SetSRID(EPSGWGS84), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(t.Layout(), project(t, proj), t.Ends()).SetSRID(EPSGWGS84), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(t.Layout(), project(t, proj), t.Endss()).SetSRID(EPSGWGS84), nil
	case nil:
		return nil, nil
	default:
		return nil, eris.Errorf("geo: cannot reproject %T", g)
	}
}

func project(g geom.T, proj Projector) []float64 {
	stride := g.Stride()
	src := g.FlatCoords()
	flat := make([]float64, len(src))
	copy(flat, src)
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = proj(flat[i], flat[i+1])
	}
	return flat
}

func inverseWebMercator(x, y float64) (float64, float64) {
	lon := x / wgs84A * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/wgs84A)) - math.Pi/2) * 180 / math.Pi
	return lon, lat
}

// inverseUTM implements the inverse transverse Mercator series for the
// WGS84 ellipsoid (Snyder, Map Projections, eq. 8-12 to 8-18).
func inverseUTM(zone int, south bool) Projector {
	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)
	sq := math.Sqrt(1 - e2)
	e1 := (1 - sq) / (1 + sq)
	lon0 := float64((zone-1)*6-180+3) * math.Pi / 180

	return func(x, y float64) (float64, float64) {
		x -= utmFalseEasting
		if south {
			y -= utmFalseNorthings
		}

		m := y / utmK0
		mu := m / (wgs84A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))
		phi1 := mu +
			(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
			(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
			(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
			(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

		sinPhi, cosPhi, tanPhi := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
		c1 := ep2 * cosPhi * cosPhi
		t1 := tanPhi * tanPhi
		n1 := wgs84A / math.Sqrt(1-e2*sinPhi*sinPhi)
		r1 := wgs84A * (1 - e2) / math.Pow(1-e2*sinPhi*sinPhi, 1.5)
		d := x / (n1 * utmK0)

		lat := phi1 - (n1*tanPhi/r1)*(d*d/2-
			(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
			(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
		lon := lon0 + (d-
			(1+2*t1+c1)*math.Pow(d, 3)/6+
			(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi

		return lon * 180 / math.Pi, lat * 180 / math.Pi
	}
}
