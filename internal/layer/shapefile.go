package layer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/eqsource/internal/geo"
)

// readShapefile reads every record of a shapefile with its .dbf attributes
// and the CRS declared by the .prj sidecar, if any.
func readShapefile(shpPath string) ([]feature, int, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "layer: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(strings.TrimRight(f.String(), "\x00"))
	}

	var features []feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		attrs := make(map[string]string, len(names))
		for i, name := range names {
			val := strings.TrimRight(reader.Attribute(i), "\x00")
			attrs[name] = strings.TrimSpace(val)
		}
		features = append(features, feature{geometry: g, attrs: attrs})
	}
	if err := reader.Err(); err != nil {
		return nil, 0, eris.Wrapf(err, "layer: read shapefile %s", shpPath)
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return features, readPRJ(shpPath), nil
}

// readPRJ returns the EPSG code declared by the .prj next to shpPath.
func readPRJ(shpPath string) int {
	prj := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prj)
	if err != nil {
		return geo.EPSGUnknown
	}
	return geo.ParsePRJ(string(data))
}

// shapeToGeom converts a go-shp shape to a go-geom geometry: polylines become
// MultiLineStrings and polygons become MultiPolygons. Returns nil for
// unsupported or empty shapes.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.PolyLine:
		return linesToMultiLineString(splitParts(s.Parts, s.Points))
	case *shp.PolyLineZ:
		return linesToMultiLineString(splitParts(s.Parts, s.Points))
	case *shp.Polygon:
		return ringsToMultiPolygon(splitParts(s.Parts, s.Points))
	case *shp.PolygonZ:
		return ringsToMultiPolygon(splitParts(s.Parts, s.Points))
	default:
		return nil
	}
}

// splitParts slices a shapefile point array into its parts as flat XY coordinates.
func splitParts(parts []int32, points []shp.Point) [][]float64 {
	out := make([][]float64, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		flat := make([]float64, 0, 2*(end-start))
		for _, p := range points[start:end] {
			flat = append(flat, p.X, p.Y)
		}
		out = append(out, flat)
	}
	return out
}

func linesToMultiLineString(parts [][]float64) geom.T {
	mls := geom.NewMultiLineString(geom.XY)
	for i, flat := range parts {
		if len(flat) < 4 {
			zap.L().Debug("layer: skipping degenerate linestring part", zap.Int("part", i))
			continue
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("layer: skipping malformed linestring part", zap.Int("part", i), zap.Error(err))
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// ringsToMultiPolygon groups shapefile rings into polygons. Shapefiles store
// outer rings clockwise and holes counter-clockwise; each hole belongs to
// the most recent outer ring. When no ring is clockwise the file does not
// follow the convention and every ring is treated as an outer ring.
func ringsToMultiPolygon(rings [][]float64) geom.T {
	outer := make([]bool, len(rings))
	anyClockwise := false
	for i, ring := range rings {
		outer[i] = signedArea(ring) < 0
		anyClockwise = anyClockwise || outer[i]
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("layer: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i, flat := range rings {
		if len(flat) < 8 {
			zap.L().Debug("layer: skipping degenerate ring", zap.Int("part", i))
			continue
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if outer[i] || !anyClockwise || current == nil {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("layer: skipping malformed ring", zap.Int("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of a flat XY ring; negative when clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
