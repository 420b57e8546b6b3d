// Package server exposes decompositions over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yyyoichi/hogsvd"
	"gonum.org/v1/gonum/mat"
)

// Request limits. The cross products are n×n per matrix, so the column
// count is bounded separately from the body size.
const (
	MaxBodyBytes = 64 << 20
	MaxMatrices  = 256
	MaxColumns   = 1024
	MaxCells     = 1 << 22
)

var ErrTooLarge = errors.New("request too large")

// Matrix is the JSON form of a dense matrix: row-major data with its shape.
type Matrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

func (m Matrix) dense() (*mat.Dense, error) {
	if m.Rows <= 0 || m.Cols <= 0 || len(m.Data) != m.Rows*m.Cols {
		return nil, fmt.Errorf("bad matrix: %dx%d with %d values", m.Rows, m.Cols, len(m.Data))
	}
	return mat.NewDense(m.Rows, m.Cols, m.Data), nil
}

func fromDense(d mat.Matrix) Matrix {
	c := mat.DenseCopyOf(d)
	raw := c.RawMatrix()
	return Matrix{Rows: raw.Rows, Cols: raw.Cols, Data: raw.Data}
}

type DecomposeRequest struct {
	Matrices []Matrix `json:"matrices"`
	// Classical requests the classical GSVD for exactly two matrices.
	Classical bool `json:"classical,omitempty"`
}

type DecomposeResponse struct {
	Path        string      `json:"path"`
	U           []Matrix    `json:"u"`
	Sigma       [][]float64 `json:"sigma"`
	V           Matrix      `json:"v"`
	Eigenvalues []float64   `json:"eigenvalues,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Stage   string `json:"stage,omitempty"`
	Indices []int  `json:"indices,omitempty"`
}

type Server struct {
	decomposer *hogsvd.Decomposer
	logger     *slog.Logger
	gatherer   prometheus.Gatherer
}

// New returns a Server. A nil gatherer leaves /metrics unrouted.
func New(d *hogsvd.Decomposer, logger *slog.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{decomposer: d, logger: logger, gatherer: gatherer}
}

// Handler routes
//
//	POST /api/v1/decompose
//	GET  /healthz
//	GET  /metrics
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/api/v1/decompose", s.decompose).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return router
}

func (s *Server) decompose(w http.ResponseWriter, r *http.Request) {
	var req DecomposeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if err := checkLimits(req.Matrices); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ds := make([]mat.Matrix, len(req.Matrices))
	for i, m := range req.Matrices {
		d, err := m.dense()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("matrix %d: %w", i, err))
			return
		}
		ds[i] = d
	}

	path, err := hogsvd.SelectPath(len(ds), req.Classical)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	res, err := s.decomposer.Run(r.Context(), path, ds...)
	if err != nil {
		s.logger.WarnContext(r.Context(), "decompose failed", "path", path, "error", err)
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := DecomposeResponse{
		Path:        res.Path.String(),
		U:           make([]Matrix, res.Len()),
		Sigma:       res.Sigma,
		V:           fromDense(res.V),
		Eigenvalues: res.Eigenvalues,
	}
	for i, u := range res.U {
		resp.U[i] = fromDense(u)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func checkLimits(ms []Matrix) error {
	if len(ms) > MaxMatrices {
		return fmt.Errorf("%w: %d matrices, limit %d", ErrTooLarge, len(ms), MaxMatrices)
	}
	cells := 0
	for i, m := range ms {
		if m.Cols > MaxColumns {
			return fmt.Errorf("%w: matrix %d has %d columns, limit %d", ErrTooLarge, i, m.Cols, MaxColumns)
		}
		if m.Rows > MaxCells || m.Cols > 0 && m.Rows > MaxCells/m.Cols {
			return fmt.Errorf("%w: matrix %d is %dx%d", ErrTooLarge, i, m.Rows, m.Cols)
		}
		cells += m.Rows * m.Cols
		if cells > MaxCells {
			return fmt.Errorf("%w: more than %d values", ErrTooLarge, MaxCells)
		}
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var me *hogsvd.MatrixError
	if errors.As(err, &me) {
		resp.Stage = string(me.Stage)
		resp.Indices = me.Indices
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}
