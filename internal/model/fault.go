package model

import "github.com/twpayne/go-geom"

// FaultRecord is one fault segment from a fault layer.
type FaultRecord struct {
	ID           string
	Name         string
	Type         string
	MaxMagnitude float64
	SlipRate     float64 // mm/yr
	Geometry     geom.T  // *geom.LineString or *geom.MultiLineString
}

// FaultDistance is a fault record's attributes plus its distance to an epicenter.
type FaultDistance struct {
	ID           string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name         string  `json:"name" yaml:"name"`
	Type         string  `json:"type,omitempty" yaml:"type,omitempty"`
	MaxMagnitude float64 `json:"max_magnitude" yaml:"max_magnitude"`
	SlipRate     float64 `json:"slip_rate" yaml:"slip_rate"`
	DistanceKM   float64 `json:"distance_km" yaml:"distance_km"`
}

// NewFaultDistance copies the record's attributes alongside distanceKM.
func NewFaultDistance(r FaultRecord, distanceKM float64) FaultDistance {
	return FaultDistance{
		ID:           r.ID,
		Name:         r.Name,
		Type:         r.Type,
		MaxMagnitude: r.MaxMagnitude,
		SlipRate:     r.SlipRate,
		DistanceKM:   distanceKM,
	}
}
