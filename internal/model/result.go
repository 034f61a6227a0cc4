package model

import (
	"fmt"
	"strings"
)

// LocationClass says whether an epicenter lies on land or at sea.
type LocationClass int

const (
	LocationUnknown LocationClass = iota
	LocationLand
	LocationSea
)

// LocationFromInland maps a containment result to a location class.
func LocationFromInland(inland bool) LocationClass {
	if inland {
		return LocationLand
	}
	return LocationSea
}

// Valid reports whether c is LAND or SEA.
func (c LocationClass) Valid() bool {
	return c == LocationLand || c == LocationSea
}

func (c LocationClass) String() string {
	switch c {
	case LocationLand:
		return "LAND"
	case LocationSea:
		return "SEA"
	case LocationUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("LocationClass(%d)", int(c))
	}
}

// MarshalText renders the class as LAND or SEA.
func (c LocationClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("model: cannot marshal location class %s", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses LAND or SEA, case-insensitively.
func (c *LocationClass) UnmarshalText(b []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(b))) {
	case "LAND":
		*c = LocationLand
	case "SEA":
		*c = LocationSea
	default:
		return fmt.Errorf("model: unknown location class %q", string(b))
	}
	return nil
}

// Source labels produced by attribution besides fault segment names.
const (
	SegmentSubduction = "subduction zone"
	SegmentLocalFault = "Local Fault"
)

// Result is the final classification of one earthquake event.
type Result struct {
	Location LocationClass  `json:"location_class" yaml:"location_class"`
	Segment  string         `json:"segment_name" yaml:"segment_name"`
	Nearest  *FaultDistance `json:"nearest,omitempty" yaml:"nearest,omitempty"`
	DepthKM  float64        `json:"depth_km" yaml:"depth_km"`
}

// Summary is a one-line human readable description of the result.
func (r Result) Summary() string {
	where := "on land"
	if r.Location == LocationSea {
		where = "at sea"
	}
	return fmt.Sprintf("earthquake located %s, source: %s", where, r.Segment)
}
