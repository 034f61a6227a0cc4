// Package layer loads land-boundary and fault-line layers from shapefiles,
// zipped shapefiles and GeoJSON, on disk or over HTTP, and normalizes them to
// geographic coordinates.
package layer

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/eqsource/internal/geo"
	"github.com/sells-group/eqsource/internal/model"
)

// FaultFields names the attribute columns fault records are read from.
// Matching is case-insensitive.
type FaultFields struct {
	ID           string
	Name         string
	Type         string
	MaxMagnitude string
	SlipRate     string
}

// DefaultFaultFields matches the national fault model shapefiles.
func DefaultFaultFields() FaultFields {
	return FaultFields{
		ID:           "Id",
		Name:         "Segment",
		Type:         "Type",
		MaxMagnitude: "Mmax",
		SlipRate:     "SlipRate",
	}
}

// nameFallback is read when the configured name column is absent or blank.
const nameFallback = "name"

// Options configures a Loader.
type Options struct {
	CacheDir   string
	HTTPClient *http.Client
	Fields     FaultFields

	// LoadTimeout bounds a load shared through Cache, independent of the
	// callers waiting on it.
	LoadTimeout time.Duration
}

// Loader reads geometry layers. It keeps no state between loads.
type Loader struct {
	opts Options
}

// NewLoader creates a Loader, filling unset options with defaults.
func NewLoader(opts Options) *Loader {
	if opts.CacheDir == "" {
		opts.CacheDir = filepath.Join(os.TempDir(), "eqsource")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = time.Minute
	}
	if opts.Fields == (FaultFields{}) {
		opts.Fields = DefaultFaultFields()
	}
	return &Loader{opts: opts}
}

// feature is one record read from a layer file before interpretation.
type feature struct {
	geometry geom.T
	attrs    map[string]string // lower-cased keys
}

// LoadLand loads a polygon layer and reprojects it to EPSG:4326.
// Non-polygonal features are skipped.
func (l *Loader) LoadLand(ctx context.Context, ref string) (*model.LandLayer, error) {
	features, epsg, err := l.read(ctx, ref)
	if err != nil {
		return nil, &model.ResourceError{Ref: ref, Err: err}
	}
	proj, err := geo.ToGeographic(epsg)
	if err != nil {
		return nil, &model.ResourceError{Ref: ref, Err: err}
	}

	out := &model.LandLayer{Ref: ref, EPSG: geo.EPSGWGS84, SourceEPSG: epsg}
	var skipped int
	for _, f := range features {
		g, err := geo.Reproject(f.geometry, proj)
		if err != nil {
			skipped++
			continue
		}
		switch t := g.(type) {
		case *geom.Polygon:
			out.Polygons = append(out.Polygons, t)
		case *geom.MultiPolygon:
			for i := 0; i < t.NumPolygons(); i++ {
				out.Polygons = append(out.Polygons, t.Polygon(i))
			}
		default:
			skipped++
		}
	}
	if out.Empty() {
		return nil, &model.ResourceError{Ref: ref, Err: eris.New("layer: no polygons in land layer")}
	}

	zap.L().Info("land layer loaded",
		zap.String("ref", ref),
		zap.Int("source_epsg", epsg),
		zap.Int("polygons", len(out.Polygons)),
		zap.Int("skipped", skipped),
	)
	return out, nil
}

// LoadFaults loads a fault-line layer, reads each record's attributes through
// the configured FaultFields and reprojects geometries to EPSG:4326.
func (l *Loader) LoadFaults(ctx context.Context, ref string) (*model.FaultLayer, error) {
	features, epsg, err := l.read(ctx, ref)
	if err != nil {
		return nil, &model.ResourceError{Ref: ref, Err: err}
	}
	proj, err := geo.ToGeographic(epsg)
	if err != nil {
		return nil, &model.ResourceError{Ref: ref, Err: err}
	}

	fields := l.opts.Fields
	out := &model.FaultLayer{Ref: ref, EPSG: geo.EPSGWGS84, SourceEPSG: epsg}
	var skipped, named int
	for i, f := range features {
		switch f.geometry.(type) {
		case *geom.LineString, *geom.MultiLineString:
		default:
			skipped++
			continue
		}
		g, err := geo.Reproject(f.geometry, proj)
		if err != nil {
			skipped++
			continue
		}

		r := model.FaultRecord{
			ID:           attr(f.attrs, fields.ID),
			Name:         attr(f.attrs, fields.Name),
			Type:         attr(f.attrs, fields.Type),
			MaxMagnitude: numAttr(f.attrs, fields.MaxMagnitude),
			SlipRate:     numAttr(f.attrs, fields.SlipRate),
			Geometry:     g,
		}
		if r.Name == "" {
			r.Name = attr(f.attrs, nameFallback)
		}
		if r.Name != "" {
			named++
		}
		if r.ID == "" {
			r.ID = strconv.Itoa(i)
		}
		out.Records = append(out.Records, r)
	}
	if out.Empty() {
		return nil, &model.ResourceError{Ref: ref, Err: eris.New("layer: no line features in fault layer")}
	}
	if named == 0 {
		return nil, &model.ResourceError{Ref: ref, Err: eris.Errorf("layer: fault layer has no %q or %q column values", fields.Name, nameFallback)}
	}

	zap.L().Info("fault layer loaded",
		zap.String("ref", ref),
		zap.Int("source_epsg", epsg),
		zap.Int("records", len(out.Records)),
		zap.Int("skipped", skipped),
	)
	return out, nil
}

// read resolves ref to a local file and decodes its features and CRS.
func (l *Loader) read(ctx context.Context, ref string) ([]feature, int, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, 0, eris.New("layer: empty layer reference")
	}

	path := ref
	if isRemote(ref) {
		p, err := fetch(ctx, l.opts.HTTPClient, ref, filepath.Join(l.opts.CacheDir, "downloads"))
		if err != nil {
			return nil, 0, err
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		return nil, 0, eris.Wrapf(err, "layer: %s not found", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		if err := os.MkdirAll(l.opts.CacheDir, 0o755); err != nil {
			return nil, 0, eris.Wrap(err, "layer: create cache dir")
		}
		dir, err := os.MkdirTemp(l.opts.CacheDir, "unzip-*")
		if err != nil {
			return nil, 0, eris.Wrap(err, "layer: create extract dir")
		}
		defer func() { _ = os.RemoveAll(dir) }()

		if err := extractZIP(path, dir); err != nil {
			return nil, 0, eris.Wrap(err, "layer: extract zip")
		}
		if path, err = findFileByExt(dir, ".shp", ".geojson", ".json"); err != nil {
			return nil, 0, eris.Wrap(err, "layer: find layer in zip")
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return readShapefile(path)
	case ".geojson", ".json":
		return readGeoJSON(path)
	default:
		return nil, 0, eris.Errorf("layer: unsupported layer format %q", filepath.Ext(path))
	}
}

func attr(attrs map[string]string, name string) string {
	if name == "" {
		return ""
	}
	return attrs[strings.ToLower(name)]
}

func numAttr(attrs map[string]string, name string) float64 {
	v, err := strconv.ParseFloat(attr(attrs, name), 64)
	if err != nil {
		return 0
	}
	return v
}
