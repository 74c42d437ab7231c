package recommender

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// The similarity artifact is a fixed-layout binary file:
// 4-byte magic "CSIM", uint32 format version, uint32 dimension n,
// then n*n little-endian float64 scores in row-major order.
var matrixMagic = [4]byte{'C', 'S', 'I', 'M'}

const matrixVersion uint32 = 1

var (
	ErrBadMatrixHeader = errors.New("similarity matrix header is invalid")
	ErrMatrixTruncated = errors.New("similarity matrix payload is truncated")
)

// Matrix is the precomputed cosine-similarity matrix, indexed by catalog
// position. Read-only after load; safe for concurrent use.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix wraps row-major score data. len(data) must equal n*n.
func NewMatrix(n int, data []float64) (*Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrBadMatrixHeader, n)
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("%w: have %d scores, want %d", ErrMatrixTruncated, len(data), n*n)
	}
	return &Matrix{n: n, data: data}, nil
}

// Size returns the matrix dimension.
func (m *Matrix) Size() int {
	return m.n
}

// At returns score(i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// Row returns the similarity row for catalog position i.
// The returned slice aliases the matrix storage and must not be modified.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.n : (i+1)*m.n]
}

// ReadMatrix decodes a similarity artifact.
func ReadMatrix(r io.Reader) (*Matrix, error) {
	var header struct {
		Magic   [4]byte
		Version uint32
		N       uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read matrix header: %w", err)
	}
	if header.Magic != matrixMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadMatrixHeader, header.Magic[:])
	}
	if header.Version != matrixVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadMatrixHeader, header.Version)
	}
	n := int(header.N)
	if n == 0 {
		return nil, fmt.Errorf("%w: zero dimension", ErrBadMatrixHeader)
	}

	data := make([]float64, n*n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrMatrixTruncated
		}
		return nil, fmt.Errorf("read matrix payload: %w", err)
	}

	return &Matrix{n: n, data: data}, nil
}

// WriteTo encodes the matrix in the artifact format. Used by the offline
// training export and by tests building fixtures.
func (m *Matrix) WriteTo(w io.Writer) error {
	header := struct {
		Magic   [4]byte
		Version uint32
		N       uint32
	}{matrixMagic, matrixVersion, uint32(m.n)}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write matrix header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.data); err != nil {
		return fmt.Errorf("write matrix payload: %w", err)
	}
	return nil
}
