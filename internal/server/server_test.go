package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/hogsvd"
	"github.com/yyyoichi/hogsvd/metrics"
	"gonum.org/v1/gonum/mat"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheus(reg)
	require.NoError(t, err)
	d, err := hogsvd.New(hogsvd.WithMetrics(collector))
	require.NoError(t, err)
	ts := httptest.NewServer(New(d, nil, reg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/v1/decompose", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

var threeInputs = []Matrix{
	{Rows: 3, Cols: 2, Data: []float64{1, 2, 3, 4, 5, 7}},
	{Rows: 2, Cols: 2, Data: []float64{2, 1, 1, 3}},
	{Rows: 4, Cols: 2, Data: []float64{1, 0, 0, 1, 2, 2, -1, 3}},
}

func TestDecompose(t *testing.T) {
	ts := newTestServer(t)

	t.Run("multi_general", func(t *testing.T) {
		resp := post(t, ts, DecomposeRequest{Matrices: threeInputs})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got DecomposeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "multi-general", got.Path)
		require.Len(t, got.U, 3)
		require.Len(t, got.Sigma, 3)
		assert.Len(t, got.Eigenvalues, 2)

		v := mat.NewDense(got.V.Rows, got.V.Cols, got.V.Data)
		for i, in := range threeInputs {
			u := mat.NewDense(got.U[i].Rows, got.U[i].Cols, got.U[i].Data)
			var us, rec mat.Dense
			us.Mul(u, mat.NewDiagDense(len(got.Sigma[i]), got.Sigma[i]))
			rec.Mul(&us, v.T())
			assert.True(t, mat.EqualApprox(mat.NewDense(in.Rows, in.Cols, in.Data), &rec, 1e-8), "matrix %d", i)
		}
	})

	t.Run("classical", func(t *testing.T) {
		resp := post(t, ts, DecomposeRequest{Matrices: threeInputs[:2], Classical: true})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got DecomposeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "pair-classical", got.Path)
		assert.Empty(t, got.Eigenvalues)
	})

	t.Run("single", func(t *testing.T) {
		resp := post(t, ts, DecomposeRequest{Matrices: threeInputs[:1]})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got DecomposeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "single-matrix", got.Path)
	})

	t.Run("singular_reports_index", func(t *testing.T) {
		inputs := append([]Matrix(nil), threeInputs...)
		inputs[1] = Matrix{Rows: 2, Cols: 2, Data: []float64{0, 0, 0, 0}}
		resp := post(t, ts, DecomposeRequest{Matrices: inputs})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var got ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, []int{1}, got.Indices)
		assert.Equal(t, "inverse", got.Stage)
	})

	t.Run("classical_with_three", func(t *testing.T) {
		resp := post(t, ts, DecomposeRequest{Matrices: threeInputs, Classical: true})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("bad_shape", func(t *testing.T) {
		resp := post(t, ts, DecomposeRequest{Matrices: []Matrix{{Rows: 2, Cols: 2, Data: []float64{1}}}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("too_many_columns", func(t *testing.T) {
		wide := Matrix{Rows: 1, Cols: 100000, Data: make([]float64, 100000)}
		resp := post(t, ts, DecomposeRequest{Matrices: []Matrix{wide, wide}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var got ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Contains(t, got.Error, "columns")
	})

	t.Run("too_many_values", func(t *testing.T) {
		tall := Matrix{Rows: MaxCells/2 + 1, Cols: 2}
		resp := post(t, ts, DecomposeRequest{Matrices: []Matrix{tall, tall}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad_json", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/decompose", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCheckLimits(t *testing.T) {
	test := []struct {
		name    string
		ms      []Matrix
		wantErr bool
	}{
		{name: "small", ms: []Matrix{{Rows: 10, Cols: 3}, {Rows: 4, Cols: 3}}},
		{name: "at_column_limit", ms: []Matrix{{Rows: 1, Cols: MaxColumns}}},
		{name: "over_column_limit", ms: []Matrix{{Rows: 1, Cols: MaxColumns + 1}}, wantErr: true},
		{name: "too_many_matrices", ms: make([]Matrix, MaxMatrices+1), wantErr: true},
		{name: "rows_overflow", ms: []Matrix{{Rows: MaxCells + 1, Cols: 4}}, wantErr: true},
		{name: "total_cells", ms: []Matrix{{Rows: MaxCells / 4, Cols: 4}, {Rows: 1, Cols: 4}}, wantErr: true},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLimits(tt.ms)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTooLarge)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	post(t, ts, DecomposeRequest{Matrices: threeInputs})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	require.Equal(t, http.StatusOK, mresp.StatusCode)
	var body bytes.Buffer
	_, err = body.ReadFrom(mresp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `hogsvd_decompositions_total{outcome="ok",path="multi-general"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/decompose")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
