package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/eqsource/internal/model"
	"github.com/sells-group/eqsource/internal/source"
)

const maxBodyBytes = 64 << 10

var validate = validator.New()

// classifyRequest is the body of POST /v1/classify. Coordinates and depth
// are decoded loosely so that integers and strings reach the classifier
// with the kind the caller sent.
type classifyRequest struct {
	Latitude     any    `json:"latitude"`
	Longitude    any    `json:"longitude"`
	Depth        any    `json:"depth"`
	Land         string `json:"land" validate:"omitempty,max=2048,printascii"`
	Fault        string `json:"fault" validate:"omitempty,max=2048,printascii"`
	AllDistances bool   `json:"all_distances"`
}

func (req classifyRequest) epicenter() model.Epicenter {
	return model.Epicenter{
		Latitude:  model.ScalarFromJSON(req.Latitude),
		Longitude: model.ScalarFromJSON(req.Longitude),
		Depth:     model.ScalarFromJSON(req.Depth),
	}
}

type classifyResponse struct {
	RequestID string `json:"request_id"`
	Summary   string `json:"summary"`
	*source.Classification
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if (req.Land != "" || req.Fault != "") && !s.opts.AllowRequestLayers {
		writeError(w, r, http.StatusForbidden, "request layer references are disabled")
		return
	}

	land, faults, err := s.loadLayers(r.Context(), s.ref(req.Land, s.opts.Land), s.ref(req.Fault, s.opts.Fault))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := source.NewClassifier(land, faults).Classify(r.Context(), req.epicenter())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !req.AllDistances {
		res.Distances = nil
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		RequestID:      RequestID(r.Context()),
		Summary:        res.Summary(),
		Classification: res,
	})
}

func (s *Server) ref(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

// loadLayers resolves both layers concurrently under the load timeout.
func (s *Server) loadLayers(ctx context.Context, landRef, faultRef string) (*model.LandLayer, *model.FaultLayer, error) {
	if s.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.LoadTimeout)
		defer cancel()
	}

	var (
		land   *model.LandLayer
		faults *model.FaultLayer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		land, err = s.layers.Land(gctx, landRef)
		return err
	})
	g.Go(func() error {
		var err error
		faults, err = s.layers.Faults(gctx, faultRef)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return land, faults, nil
}

// statusFor maps classification errors onto HTTP status codes. A deadline
// is checked first: load timeouts arrive wrapped in a ResourceError.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case model.IsValidation(err), model.IsTypeMismatch(err):
		return http.StatusBadRequest
	case model.IsResource(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response. Input errors are echoed to the client;
// layer and internal errors are logged and replaced by a generic message so
// file paths and upstream URLs stay server side.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = err.Error()
	case http.StatusGatewayTimeout:
		msg = "layer load timed out"
	case http.StatusServiceUnavailable:
		msg = "layer unavailable"
	default:
		msg = "internal error"
	}
	if status != http.StatusBadRequest {
		zap.L().Error("classification failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeError(w, r, status, msg)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
