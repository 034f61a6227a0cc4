// Package geo provides the planar geometry predicates and coordinate
// reference handling used for earthquake source attribution.
package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"
)

// KMPerDegree converts planar degrees to kilometers. It is the length of one
// degree of latitude at the equator; distances computed with it are
// approximate and the error grows with latitude and with east-west extent.
const KMPerDegree = 111.18

// NewPoint builds an XY point from longitude and latitude.
func NewPoint(lon, lat float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}

// Contains reports whether p lies strictly inside poly. Points on the shell
// or on a hole boundary are not contained, nor are points inside a hole.
func Contains(poly *geom.Polygon, p *geom.Point) bool {
	if poly == nil || p == nil || poly.NumLinearRings() == 0 || len(p.FlatCoords()) < 2 {
		return false
	}
	c := p.Coords()
	layout := poly.Layout()
	shell := poly.LinearRing(0)
	if xy.LocatePointInRing(layout, c, shell.FlatCoords()) != location.Interior {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.LocatePointInRing(layout, c, poly.LinearRing(i).FlatCoords()) != location.Exterior {
			return false
		}
	}
	return true
}

// ContainsAny reports whether any polygon strictly contains p.
func ContainsAny(polys []*geom.Polygon, p *geom.Point) bool {
	for _, poly := range polys {
		if Contains(poly, p) {
			return true
		}
	}
	return false
}

// DistanceToLine returns the planar distance from p to a line geometry in
// the geometry's own units. ok is false for empty or non-linear geometries.
func DistanceToLine(g geom.T, p *geom.Point) (dist float64, ok bool) {
	c := p.Coords()
	switch line := g.(type) {
	case *geom.LineString:
		if line == nil || line.NumCoords() == 0 {
			return 0, false
		}
		return xy.DistanceFromPointToLineString(line.Layout(), c, line.FlatCoords()), true
	case *geom.MultiLineString:
		if line == nil {
			return 0, false
		}
		for i := 0; i < line.NumLineStrings(); i++ {
			d, partOK := DistanceToLine(line.LineString(i), p)
			if !partOK {
				continue
			}
			if !ok || d < dist {
				dist, ok = d, true
			}
		}
		return dist, ok
	default:
		return 0, false
	}
}
