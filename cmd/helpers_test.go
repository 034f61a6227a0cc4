package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testLandGeoJSON = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {"name": "island"},
    "geometry": {"type": "Polygon", "coordinates": [[[100,-4],[102,-4],[102,-2],[100,-2],[100,-4]]]}
  }]
}`

const testFaultGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"Id": "1", "Segment": "Mentawai", "Type": "Reverse", "Mmax": 8.9, "SlipRate": 40},
      "geometry": {"type": "LineString", "coordinates": [[99,-5],[99,0]]}
    },
    {
      "type": "Feature",
      "properties": {"Id": "2", "Segment": "Sumatra", "Type": "Strike-slip", "Mmax": 7.7, "SlipRate": 10},
      "geometry": {"type": "LineString", "coordinates": [[103,-5],[103,0]]}
    }
  ]
}`

// writeLayers writes the test land and fault layers into a fresh working
// directory and points the cache at it.
func writeLayers(t *testing.T) (land, fault string) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("EQSOURCE_LAYERS_CACHE_DIR", filepath.Join(dir, "cache"))

	land = filepath.Join(dir, "land.geojson")
	fault = filepath.Join(dir, "faults.geojson")
	require.NoError(t, os.WriteFile(land, []byte(testLandGeoJSON), 0644))
	require.NoError(t, os.WriteFile(fault, []byte(testFaultGeoJSON), 0644))
	return land, fault
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	classifyLat, classifyLon, classifyDepth = "", "", ""
	classifyLand, classifyFault = "", ""
	classifyOutput = "text"
	classifyAllDistances = false
	layersKind = "land"
	layersPreview = 3
	servePort = 0
}
