// Command hogsvd factors matrices read from files and writes the factors
// into an output directory.
//
//	hogsvd -m D1.txt -m D2.txt -m D3.txt -o out
//
// One matrix is factored with a plain SVD and two matrices with -l use the
// classical GSVD; otherwise the HO-GSVD is computed. The output directory
// receives U1…UN, S1…SN and V, plus L (the eigenvalues) for the HO-GSVD.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/yyyoichi/hogsvd"
	"github.com/yyyoichi/hogsvd/internal/matio"
	"gonum.org/v1/gonum/mat"
)

type fileList []string

func (f *fileList) String() string     { return strings.Join(*f, ",") }
func (f *fileList) Set(v string) error { *f = append(*f, v); return nil }

func main() {
	var files fileList
	flag.Var(&files, "m", "matrix file (repeatable); .bin files are gonum binary, others whitespace-separated text")
	outDir := flag.String("o", "", "output directory")
	classical := flag.Bool("l", false, "use the classical GSVD for exactly two matrices")
	format := flag.String("format", "txt", "output format: txt or bin")
	order := flag.String("order", "asc", "eigenvalue order of the shared basis: asc or desc")
	singularTol := flag.Float64("singular-tol", hogsvd.DefaultSingularTolerance, "smallest reciprocal condition number accepted for inversion")
	symmetryTol := flag.Float64("symmetry-tol", hogsvd.DefaultSymmetryTolerance, "asymmetry accepted for the symmetric eigensolver")
	degenerateTol := flag.Float64("degenerate-tol", hogsvd.DefaultDegenerateTolerance, "largest column norm treated as zero")
	concurrency := flag.Int("j", 0, "matrices processed at once (0: GOMAXPROCS)")
	verify := flag.Bool("verify", false, "report the relative reconstruction error of every input")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if len(files) == 0 || *outDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	outFormat, err := matio.ParseFormat(*format)
	if err != nil {
		log.Fatal(err)
	}
	opts := []hogsvd.Option{
		hogsvd.WithSingularTolerance(*singularTol),
		hogsvd.WithSymmetryTolerance(*symmetryTol),
		hogsvd.WithDegenerateTolerance(*degenerateTol),
		hogsvd.WithLogger(logger),
	}
	ordering, err := hogsvd.ParseOrdering(*order)
	if err != nil {
		log.Fatal(err)
	}
	opts = append(opts, hogsvd.WithOrdering(ordering))
	if *concurrency > 0 {
		opts = append(opts, hogsvd.WithConcurrency(*concurrency))
	}
	d, err := hogsvd.New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	ds := make([]mat.Matrix, len(files))
	for i, name := range files {
		m, err := matio.ReadFile(name)
		if err != nil {
			log.Fatal(err)
		}
		r, c := m.Dims()
		logger.Debug("read matrix", "file", name, "rows", r, "cols", c)
		ds[i] = m
	}

	path, err := hogsvd.SelectPath(len(ds), *classical)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	res, err := d.Run(ctx, path, ds...)
	if err != nil {
		for _, i := range hogsvd.Indices(err) {
			logger.Error("offending input", "index", i, "file", files[i])
		}
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}
	if err := write(*outDir, outFormat, res); err != nil {
		log.Fatal(err)
	}

	if *verify {
		for i, in := range ds {
			e, err := res.ReconstructionError(i, in)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("%s: relative reconstruction error %.3e\n", files[i], e)
		}
	}
}

func write(dir string, format matio.Format, res *hogsvd.Result) error {
	for i := range res.Len() {
		if _, err := matio.WriteFile(dir, fmt.Sprintf("U%d", i+1), format, res.U[i]); err != nil {
			return err
		}
		if _, err := matio.WriteFile(dir, fmt.Sprintf("S%d", i+1), format, matio.Vector(res.Sigma[i])); err != nil {
			return err
		}
	}
	if _, err := matio.WriteFile(dir, "V", format, res.V); err != nil {
		return err
	}
	if len(res.Eigenvalues) > 0 {
		if _, err := matio.WriteFile(dir, "L", format, matio.Vector(res.Eigenvalues)); err != nil {
			return err
		}
	}
	return nil
}
