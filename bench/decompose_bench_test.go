package bench_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/yyyoichi/hogsvd"
	"gonum.org/v1/gonum/mat"
)

func createInputs(n, rows, cols int) []mat.Matrix {
	rnd := rand.New(rand.NewPCG(uint64(n), uint64(cols)))
	ds := make([]mat.Matrix, n)
	for i := range ds {
		data := make([]float64, rows*cols)
		for j := range data {
			data[j] = rnd.NormFloat64()
		}
		ds[i] = mat.NewDense(rows, cols, data)
	}
	return ds
}

// BenchmarkDecompose runs a table of input counts and shapes.
func BenchmarkDecompose(b *testing.B) {
	test := []struct {
		n, rows, cols int
	}{
		{n: 3, rows: 50, cols: 10},
		{n: 3, rows: 500, cols: 50},
		{n: 8, rows: 200, cols: 50},
		{n: 16, rows: 200, cols: 50},
		{n: 8, rows: 1000, cols: 200},
	}
	ctx := b.Context()

	for _, tt := range test {
		ds := createInputs(tt.n, tt.rows, tt.cols)
		for _, concurrency := range []int{1, 8} {
			name := fmt.Sprintf("N%d_%dx%d_j%d", tt.n, tt.rows, tt.cols, concurrency)
			b.Run(name, func(b *testing.B) {
				d, err := hogsvd.New(hogsvd.WithConcurrency(concurrency))
				if err != nil {
					b.Fatalf("Failed to create Decomposer (%s): %v", name, err)
				}
				for b.Loop() {
					if _, err := d.Decompose(ctx, ds...); err != nil {
						b.Fatalf("Decompose failed (%s): %v", name, err)
					}
				}
			})
		}
	}
}

func BenchmarkRun_Classical(b *testing.B) {
	ds := createInputs(2, 300, 40)
	d, err := hogsvd.New()
	if err != nil {
		b.Fatal(err)
	}
	ctx := b.Context()
	for _, p := range []hogsvd.Path{hogsvd.PairClassical, hogsvd.MultiGeneral} {
		b.Run(p.String(), func(b *testing.B) {
			for b.Loop() {
				if _, err := d.Run(ctx, p, ds...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
