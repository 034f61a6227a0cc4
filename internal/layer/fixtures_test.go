package layer

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

const prjWGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// clockwise square ring (a shapefile outer ring)
func cwSquare(x0, y0, x1, y1 float64) []shp.Point {
	return []shp.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}, {X: x0, Y: y0}}
}

// counter-clockwise square ring (a shapefile hole)
func ccwSquare(x0, y0, x1, y1 float64) []shp.Point {
	return []shp.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0}}
}

// writeLandShapefile writes a polygon shapefile: one island with a lake and
// one plain island.
func writeLandShapefile(t *testing.T, dir string, prj string) string {
	t.Helper()
	path := filepath.Join(dir, "land.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 32)}))

	lake := shp.Polygon(*shp.NewPolyLine([][]shp.Point{
		cwSquare(100, -4, 101, -3),
		ccwSquare(100.4, -3.6, 100.6, -3.4),
	}))
	plain := shp.Polygon(*shp.NewPolyLine([][]shp.Point{cwSquare(110, -8, 112, -6)}))

	for i, p := range []*shp.Polygon{&lake, &plain} {
		row := w.Write(p)
		require.NoError(t, w.WriteAttribute(int(row), 0, []string{"Sumatra", "Java"}[i]))
	}
	closeShapefile(t, w, path)

	if prj != "" {
		require.NoError(t, os.WriteFile(strings.TrimSuffix(path, ".shp")+".prj", []byte(prj), 0o644))
	}
	return path
}

// closeShapefile closes w and moves the attribute table go-shp writes as
// "<base>dbf" to "<base>.dbf", where readers look for it.
func closeShapefile(t *testing.T, w *shp.Writer, path string) {
	t.Helper()
	w.Close()
	base := strings.TrimSuffix(path, ".shp")
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	_, err := os.Stat(base + ".dbf")
	require.NoError(t, err, "attribute table missing")
}

type testFault struct {
	id, segment, kind string
	mmax, slip        float64
	lines             [][]shp.Point
}

// writeFaultShapefile writes a polyline shapefile with fault attributes.
func writeFaultShapefile(t *testing.T, dir, name string, faults []testFault, prj string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("Id", 8),
		shp.StringField("Segment", 40),
		shp.StringField("Type", 20),
		shp.FloatField("Mmax", 8, 2),
		shp.FloatField("SlipRate", 8, 2),
	}))

	for _, f := range faults {
		row := int(w.Write(shp.NewPolyLine(f.lines)))
		require.NoError(t, w.WriteAttribute(row, 0, f.id))
		require.NoError(t, w.WriteAttribute(row, 1, f.segment))
		require.NoError(t, w.WriteAttribute(row, 2, f.kind))
		require.NoError(t, w.WriteAttribute(row, 3, f.mmax))
		require.NoError(t, w.WriteAttribute(row, 4, f.slip))
	}
	closeShapefile(t, w, path)

	if prj != "" {
		require.NoError(t, os.WriteFile(strings.TrimSuffix(path, ".shp")+".prj", []byte(prj), 0o644))
	}
	return path
}

func sumatraFaults() []testFault {
	return []testFault{
		{id: "1", segment: "Mentawai", kind: "Reverse", mmax: 7.8, slip: 12.5,
			lines: [][]shp.Point{{{X: 100.63, Y: -4.5}, {X: 100.63, Y: -2.5}}}},
		{id: "2", segment: "Sumani", kind: "Strike-slip", mmax: 7.2, slip: 11,
			lines: [][]shp.Point{{{X: 100.2, Y: -1.0}, {X: 100.6, Y: -0.5}}, {{X: 100.6, Y: -0.5}, {X: 101.0, Y: -0.2}}}},
	}
}

// writeFaultGeoJSON writes a fault FeatureCollection with go-geom's encoder.
func writeFaultGeoJSON(t *testing.T, dir string) string {
	t.Helper()
	fc := geojson.FeatureCollection{Features: []*geojson.Feature{
		{
			ID:       "f1",
			Geometry: geom.NewLineStringFlat(geom.XY, []float64{100.63, -4.5, 100.63, -2.5}),
			Properties: map[string]interface{}{
				"Segment": "Mentawai", "Type": "Reverse", "Mmax": 7.8, "SlipRate": 12.5,
			},
		},
		{
			Geometry:   geom.NewMultiLineStringFlat(geom.XY, []float64{95, 5, 96, 4, 96, 4, 97, 3}, []int{4, 8}),
			Properties: map[string]interface{}{"Name": "Aceh", "Mmax": 7.0},
		},
		{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{100, 0}),
			Properties: map[string]interface{}{"Segment": "Volcano"},
		},
	}}
	data, err := json.Marshal(&fc)
	require.NoError(t, err)

	path := filepath.Join(dir, "faults.geojson")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// zipFiles bundles the named files into a ZIP archive under nested/.
func zipFiles(t *testing.T, dest string, files ...string) {
	t.Helper()
	f, err := os.Create(dest)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for _, path := range files {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		fw, err := w.Create("nested/" + filepath.Base(path))
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

// shapefileSet returns the .shp path plus its sidecar files that exist.
func shapefileSet(shpPath string) []string {
	base := strings.TrimSuffix(shpPath, ".shp")
	var out []string
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		if _, err := os.Stat(base + ext); err == nil {
			out = append(out, base+ext)
		}
	}
	return out
}
