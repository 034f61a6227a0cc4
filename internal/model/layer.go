package model

import "github.com/twpayne/go-geom"

// LandLayer is an ordered, read-only set of land-boundary polygons in
// geographic coordinates (EPSG:4326, x = longitude, y = latitude).
type LandLayer struct {
	Ref        string
	EPSG       int
	SourceEPSG int // CRS declared by the file before reprojection
	Polygons   []*geom.Polygon
}

// Empty reports whether the layer holds no polygons.
func (l *LandLayer) Empty() bool {
	return l == nil || len(l.Polygons) == 0
}

// String returns the layer reference; empty for a nil layer.
func (l *LandLayer) String() string {
	if l == nil {
		return ""
	}
	return l.Ref
}

// FaultLayer is an ordered, read-only set of fault records. EPSG is the
// coordinate reference system the record geometries are expressed in.
type FaultLayer struct {
	Ref        string
	EPSG       int
	SourceEPSG int
	Records    []FaultRecord
}

// Empty reports whether the layer holds no records.
func (l *FaultLayer) Empty() bool {
	return l == nil || len(l.Records) == 0
}

// String returns the layer reference; empty for a nil layer.
func (l *FaultLayer) String() string {
	if l == nil {
		return ""
	}
	return l.Ref
}
