package layer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/eqsource/internal/geo"
)

// legacyCRS captures the pre-RFC 7946 "crs" member some exports still carry.
type legacyCRS struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// readGeoJSON reads a FeatureCollection. Without a crs member the data is
// WGS84, as RFC 7946 requires.
func readGeoJSON(path string) ([]feature, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "layer: read geojson %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, eris.Wrapf(err, "layer: decode geojson %s", path)
	}

	epsg := geo.EPSGWGS84
	var crs legacyCRS
	if err := json.Unmarshal(data, &crs); err == nil && crs.CRS != nil {
		epsg = geo.ParseCRSName(crs.CRS.Properties.Name)
		if epsg == geo.EPSGUnknown {
			return nil, 0, eris.Errorf("layer: unrecognised geojson crs %q", crs.CRS.Properties.Name)
		}
	}

	features := make([]feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		attrs := make(map[string]string, len(f.Properties)+1)
		for k, v := range f.Properties {
			attrs[strings.ToLower(k)] = propertyString(v)
		}
		if _, ok := attrs["id"]; !ok && f.ID != "" {
			attrs["id"] = f.ID
		}
		features = append(features, feature{geometry: f.Geometry, attrs: attrs})
	}
	return features, epsg, nil
}

func propertyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
