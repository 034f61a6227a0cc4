package geo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EPSG codes handled by Reproject.
const (
	EPSGUnknown     = 0  // not declared
	EPSGUnsupported = -1 // declared but not recognised
	EPSGWGS84       = 4326
	EPSGWebMercator = 3857
)

// UTM returns the EPSG code of a WGS84 UTM zone.
func UTM(zone int, south bool) int {
	if south {
		return 32700 + zone
	}
	return 32600 + zone
}

// utmZone reports the zone and hemisphere of a WGS84 UTM EPSG code.
func utmZone(epsg int) (zone int, south, ok bool) {
	switch {
	case epsg > 32600 && epsg <= 32660:
		return epsg - 32600, false, true
	case epsg > 32700 && epsg <= 32760:
		return epsg - 32700, true, true
	}
	return 0, false, false
}

var (
	utmNameRe  = regexp.MustCompile(`(?i)UTM[ _]zone[ _](\d{1,2})\s*([NS])`)
	epsgNameRe = regexp.MustCompile(`(?i)EPSG:{1,2}(\d+)\s*$`)
)

// ParsePRJ detects the EPSG code declared by an ESRI .prj WKT string.
// Geographic (GEOGCS) definitions are treated as WGS84 whatever their datum.
// Projections other than UTM and Web Mercator yield EPSGUnsupported.
func ParsePRJ(wkt string) int {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return EPSGUnknown
	}
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "GEOGCS") {
		return EPSGWGS84
	}
	if !strings.HasPrefix(upper, "PROJCS") {
		return EPSGUnsupported
	}
	if m := utmNameRe.FindStringSubmatch(s); m != nil {
		zone, err := strconv.Atoi(m[1])
		if err != nil || zone < 1 || zone > 60 {
			return EPSGUnsupported
		}
		return UTM(zone, strings.EqualFold(m[2], "S"))
	}
	if strings.Contains(upper, "MERCATOR_AUXILIARY_SPHERE") || strings.Contains(upper, "PSEUDO-MERCATOR") ||
		strings.Contains(upper, "PSEUDO_MERCATOR") || strings.Contains(upper, "POPULAR_VISUALISATION") {
		return EPSGWebMercator
	}
	return EPSGUnsupported
}

// ParseCRSName detects the EPSG code of a GeoJSON "crs" name such as
// "EPSG:32747", "urn:ogc:def:crs:EPSG::4326" or "urn:ogc:def:crs:OGC:1.3:CRS84".
func ParseCRSName(name string) int {
	s := strings.TrimSpace(name)
	if s == "" {
		return EPSGUnknown
	}
	if strings.HasSuffix(strings.ToUpper(s), "CRS84") {
		return EPSGWGS84
	}
	if m := epsgNameRe.FindStringSubmatch(s); m != nil {
		code, err := strconv.Atoi(m[1])
		if err == nil {
			return code
		}
	}
	return EPSGUnknown
}

// CRSName renders an EPSG code for display.
func CRSName(epsg int) string {
	switch epsg {
	case EPSGUnknown:
		return "undeclared"
	case EPSGUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("EPSG:%d", epsg)
	}
}
