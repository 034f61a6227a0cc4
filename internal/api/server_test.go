package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/eqsource/internal/model"
)

type fakeLayers struct {
	land   *model.LandLayer
	faults *model.FaultLayer
	err    error

	mu   sync.Mutex
	refs []string
}

func (f *fakeLayers) Land(_ context.Context, ref string) (*model.LandLayer, error) {
	f.record("land:" + ref)
	if f.err != nil {
		return nil, f.err
	}
	return f.land, nil
}

func (f *fakeLayers) Faults(_ context.Context, ref string) (*model.FaultLayer, error) {
	f.record("faults:" + ref)
	if f.err != nil {
		return nil, f.err
	}
	return f.faults, nil
}

func (f *fakeLayers) record(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs = append(f.refs, ref)
}

// newFakeLayers returns land covering lon [100,102] x lat [-4,-2] and two
// north-south faults at lon 99 and lon 103.
func newFakeLayers() *fakeLayers {
	square := geom.NewPolygonFlat(geom.XY, []float64{100, -4, 102, -4, 102, -2, 100, -2, 100, -4}, []int{10})
	fault := func(id, name string, lon float64) model.FaultRecord {
		return model.FaultRecord{
			ID:           id,
			Name:         name,
			Type:         "strike-slip",
			MaxMagnitude: 7.8,
			SlipRate:     10,
			Geometry:     geom.NewLineStringFlat(geom.XY, []float64{lon, -5, lon, 0}),
		}
	}
	return &fakeLayers{
		land: &model.LandLayer{Ref: "land.shp", EPSG: 4326, Polygons: []*geom.Polygon{square}},
		faults: &model.FaultLayer{Ref: "faults.shp", EPSG: 4326, Records: []model.FaultRecord{
			fault("1", "Mentawai", 99),
			fault("2", "Sumatra", 103),
		}},
	}
}

func postClassify(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/classify", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	srv := NewServer(newFakeLayers(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "ok", decodeBody(t, rr)["status"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		location string
		segment  string
	}{
		{
			name:     "sea takes nearest fault",
			body:     `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0}`,
			location: "SEA",
			segment:  "Mentawai",
		},
		{
			name:     "land far from faults",
			body:     `{"latitude": -3.0, "longitude": 100.5, "depth": 10.0}`,
			location: "LAND",
			segment:  model.SegmentLocalFault,
		},
		{
			name:     "deep event",
			body:     `{"latitude": -3.0, "longitude": 100.5, "depth": 60.0}`,
			location: "LAND",
			segment:  model.SegmentSubduction,
		},
		{
			name:     "integer depth accepted",
			body:     `{"latitude": -3.0, "longitude": 99.5, "depth": 10}`,
			location: "SEA",
			segment:  "Mentawai",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(newFakeLayers(), Options{Land: "land.shp", Fault: "faults.shp"})
			rr := postClassify(t, srv.Handler(), tt.body)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			body := decodeBody(t, rr)
			assert.Equal(t, tt.location, body["location_class"])
			assert.Equal(t, tt.segment, body["segment_name"])
			assert.NotEmpty(t, body["summary"])
			assert.NotEmpty(t, body["request_id"])
			assert.NotContains(t, body, "distances")

			nearest, ok := body["nearest"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "Mentawai", nearest["name"])
		})
	}
}

func TestClassify_AllDistances(t *testing.T) {
	srv := NewServer(newFakeLayers(), Options{})
	rr := postClassify(t, srv.Handler(), `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0, "all_distances": true}`)

	require.Equal(t, http.StatusOK, rr.Code)
	distances, ok := decodeBody(t, rr)["distances"].([]any)
	require.True(t, ok)
	require.Len(t, distances, 2)
	first := distances[0].(map[string]any)
	assert.Equal(t, "Mentawai", first["name"])
	assert.InDelta(t, 0.5*111.18, first["distance_km"].(float64), 1e-6)
}

func TestClassify_LayerRefs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		layers := newFakeLayers()
		srv := NewServer(layers, Options{Land: "default-land.shp", Fault: "default-faults.zip"})
		rr := postClassify(t, srv.Handler(), `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.ElementsMatch(t, []string{"land:default-land.shp", "faults:default-faults.zip"}, layers.refs)
	})

	t.Run("request overrides", func(t *testing.T) {
		layers := newFakeLayers()
		srv := NewServer(layers, Options{Land: "default-land.shp", Fault: "default-faults.zip", AllowRequestLayers: true})
		rr := postClassify(t, srv.Handler(), `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0, "land": "other.geojson"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.ElementsMatch(t, []string{"land:other.geojson", "faults:default-faults.zip"}, layers.refs)
	})

	t.Run("request refs disabled by default", func(t *testing.T) {
		for _, body := range []string{
			`{"latitude": -3.0, "longitude": 99.5, "depth": 10.0, "land": "/etc/passwd.json"}`,
			`{"latitude": -3.0, "longitude": 99.5, "depth": 10.0, "fault": "http://169.254.169.254/faults.geojson"}`,
		} {
			layers := newFakeLayers()
			srv := NewServer(layers, Options{Land: "default-land.shp", Fault: "default-faults.zip"})
			rr := postClassify(t, srv.Handler(), body)
			assert.Equal(t, http.StatusForbidden, rr.Code)
			assert.Contains(t, decodeBody(t, rr)["error"], "disabled")
			assert.Empty(t, layers.refs, "no layer may be loaded")
		}
	})
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name    string
		layers  func() *fakeLayers
		body    string
		status  int
		message string
	}{
		{
			name:    "invalid json",
			body:    "not json",
			status:  http.StatusBadRequest,
			message: "invalid request body",
		},
		{
			name:    "missing latitude",
			body:    `{"longitude": 99.5, "depth": 10.0}`,
			status:  http.StatusBadRequest,
			message: "latitude",
		},
		{
			name:    "integer latitude",
			body:    `{"latitude": -3, "longitude": 99.5, "depth": 10.0}`,
			status:  http.StatusBadRequest,
			message: "type mismatch",
		},
		{
			name:    "text depth",
			body:    `{"latitude": -3.0, "longitude": 99.5, "depth": "deep"}`,
			status:  http.StatusBadRequest,
			message: "depth",
		},
		{
			name:    "latitude out of range",
			body:    `{"latitude": -93.0, "longitude": 99.5, "depth": 10.0}`,
			status:  http.StatusBadRequest,
			message: "latitude",
		},
		{
			name:    "non printable layer ref",
			body:    `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0, "land": "länd.shp"}`,
			status:  http.StatusBadRequest,
			message: "Land",
		},
		{
			name: "layer unavailable",
			layers: func() *fakeLayers {
				return &fakeLayers{err: &model.ResourceError{Ref: "/srv/data/missing.shp"}}
			},
			body:    `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0}`,
			status:  http.StatusServiceUnavailable,
			message: "layer unavailable",
		},
		{
			name: "empty fault layer",
			layers: func() *fakeLayers {
				l := newFakeLayers()
				l.faults = &model.FaultLayer{Ref: "empty.shp"}
				return l
			},
			body:    `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0}`,
			status:  http.StatusServiceUnavailable,
			message: "layer unavailable",
		},
		{
			name: "load timeout",
			layers: func() *fakeLayers {
				return &fakeLayers{err: context.DeadlineExceeded}
			},
			body:    `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0}`,
			status:  http.StatusGatewayTimeout,
			message: "timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layers := newFakeLayers()
			if tt.layers != nil {
				layers = tt.layers()
			}
			srv := NewServer(layers, Options{LoadTimeout: time.Second})
			rr := postClassify(t, srv.Handler(), tt.body)

			assert.Equal(t, tt.status, rr.Code)
			body := decodeBody(t, rr)
			assert.Contains(t, body["error"], tt.message)
			assert.NotEmpty(t, body["request_id"])
			assert.NotContains(t, rr.Body.String(), "/srv/data")
		})
	}
}

func TestRequestID(t *testing.T) {
	srv := NewServer(newFakeLayers(), Options{})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		assert.Equal(t, "abc-123", rr.Header().Get(requestIDHeader))
	})

	t.Run("generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, req)
		assert.Len(t, rr.Header().Get(requestIDHeader), 36)
	})
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(newFakeLayers(), Options{RateLimit: 0.001, RateBurst: 1})
	body := `{"latitude": -3.0, "longitude": 99.5, "depth": 10.0}`

	first := postClassify(t, srv.Handler(), body)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postClassify(t, srv.Handler(), body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// Health is outside the limited group.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS(t *testing.T) {
	srv := NewServer(newFakeLayers(), Options{AllowedOrigins: []string{"https://maps.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/v1/classify", nil)
	req.Header.Set("Origin", "https://maps.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "https://maps.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(model.MissingField("depth")))
	assert.Equal(t, http.StatusBadRequest, statusFor(&model.TypeMismatchError{Field: "latitude", Want: "float", Got: "int"}))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(&model.ResourceError{Ref: "x"}))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(&model.ResourceError{Ref: "x", Err: context.DeadlineExceeded}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
