package matio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReadText(t *testing.T) {
	test := []struct {
		name    string
		input   string
		want    *mat.Dense
		wantErr error
	}{
		{
			name:  "spaces",
			input: "1 2 3\n4 5 6\n",
			want:  mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		},
		{
			name:  "comments_tabs_commas",
			input: "# header\n1.5\t-2e3, 0\n\n  7 8 9  \n",
			want:  mat.NewDense(2, 3, []float64{1.5, -2000, 0, 7, 8, 9}),
		},
		{
			name:  "no_trailing_newline",
			input: "1 2\n3 4",
			want:  mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		},
		{
			name:    "ragged",
			input:   "1 2 3\n4 5\n",
			wantErr: ErrRagged,
		},
		{
			name:    "empty",
			input:   "# nothing\n\n",
			wantErr: ErrEmpty,
		},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadText(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, mat.Equal(tt.want, m), "got %v", mat.Formatted(m))
		})
	}

	t.Run("bad_value", func(t *testing.T) {
		_, err := ReadText(strings.NewReader("1 x\n"))
		assert.ErrorContains(t, err, "line 1")
	})
}

func TestText_RoundTrip(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{0.1, 1.0 / 3, -2.5e-17, 12345678.875, 0, -1})
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, m))
	got, err := ReadText(&buf)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, got))
}

func TestBinary_RoundTrip(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, m.T()))
	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m.T(), got))
}

func TestFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := mat.NewDense(2, 2, []float64{1, -2, 3.25, 4})
	for _, format := range []Format{Text, Binary} {
		path, err := WriteFile(dir, "M", format, m)
		require.NoError(t, err)
		assert.Equal(t, ".txt" != format.Ext(), format == Binary)

		got, err := ReadFile(path)
		require.NoError(t, err)
		assert.True(t, mat.Equal(m, got))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("bin")
	require.NoError(t, err)
	assert.Equal(t, Binary, f)
	f, err = ParseFormat("txt")
	require.NoError(t, err)
	assert.Equal(t, Text, f)
	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrFormat)
}
