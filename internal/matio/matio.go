// Package matio reads and writes dense matrices as whitespace-separated
// text or in gonum's binary format.
package matio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Format int

const (
	Text Format = iota
	Binary
)

var (
	ErrEmpty  = errors.New("matio: no values")
	ErrRagged = errors.New("matio: inconsistent number of values")
	ErrFormat = errors.New("matio: unknown format")
)

// ParseFormat maps "txt" and "bin" onto a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "txt", "text":
		return Text, nil
	case "bin", "binary":
		return Binary, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, s)
}

// Ext returns the file extension written for f.
func (f Format) Ext() string {
	if f == Binary {
		return ".bin"
	}
	return ".txt"
}

// ReadText parses one row per line. Values are separated by spaces, tabs or
// commas; blank lines and lines starting with '#' are skipped.
func ReadText(r io.Reader) (*mat.Dense, error) {
	var (
		data    []float64
		rows    int
		cols    int
		lineNum int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if cols == 0 {
			cols = len(fields)
		} else if cols != len(fields) {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrRagged, lineNum, len(fields), cols)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("matio: line %d: %w", lineNum, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrEmpty
	}
	return mat.NewDense(rows, cols, data), nil
}

// WriteText writes m with one row per line, using the shortest
// representation that round-trips exactly.
func WriteText(w io.Writer, m mat.Matrix) error {
	bw := bufio.NewWriter(w)
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			if j > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(strconv.FormatFloat(m.At(i, j), 'g', -1, 64)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBinary decodes a matrix written by WriteBinary.
func ReadBinary(r io.Reader) (*mat.Dense, error) {
	var m mat.Dense
	if _, err := m.UnmarshalBinaryFrom(r); err != nil {
		return nil, fmt.Errorf("matio: %w", err)
	}
	return &m, nil
}

// WriteBinary encodes m in gonum's binary matrix format.
func WriteBinary(w io.Writer, m mat.Matrix) error {
	d := mat.DenseCopyOf(m)
	_, err := d.MarshalBinaryTo(w)
	return err
}

// ReadFile reads a matrix, choosing the format from the extension: ".bin"
// is binary, anything else is text.
func ReadFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if filepath.Ext(path) == Binary.Ext() {
		return ReadBinary(f)
	}
	m, err := ReadText(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile writes m to dir/name plus the extension of format.
func WriteFile(dir, name string, format Format, m mat.Matrix) (path string, err error) {
	path = filepath.Join(dir, name+format.Ext())
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if format == Binary {
		return path, WriteBinary(f, m)
	}
	return path, WriteText(f, m)
}

// Vector returns v as an n×1 matrix.
func Vector(v []float64) *mat.Dense {
	return mat.NewDense(len(v), 1, append([]float64(nil), v...))
}
