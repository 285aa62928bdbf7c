// Package output writes landscape results to disk: raw arrays, netCDF
// snapshot files, images and terminal reports.
package output

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

var npyMagic = []byte("\x93NUMPY")

// ErrNPYFormat reports a .npy stream this package cannot read.
var ErrNPYFormat = errors.New("output: unsupported npy data")

// WriteNPY writes m as a version 1.0 .npy array of little-endian float64 in
// C order, with the shape (rows, cols) of m.
func WriteNPY(w io.Writer, m mat.Matrix) error {
	r, c := m.Dims()
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d), }", r, c)
	// magic(6) + version(2) + length(2) + header + '\n' is padded to 64 bytes.
	pad := 64 - (10+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	bw := bufio.NewWriter(w)
	bw.Write(npyMagic)
	bw.Write([]byte{1, 0})
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	bw.WriteString(header)

	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteNPYFile writes m to path.
func WriteNPYFile(path string, m mat.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteNPY(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var npyShape = regexp.MustCompile(`'shape':\s*\((\d+),\s*(\d+),?\s*\)`)

// ReadNPY reads a 2-D little-endian float64 C-order array as written by
// WriteNPY.
func ReadNPY(r io.Reader) (*mat.Dense, error) {
	br := bufio.NewReader(r)
	head := make([]byte, 10)
	if _, err := io.ReadFull(br, head); err != nil {
		return nil, err
	}
	if !bytes.Equal(head[:6], npyMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrNPYFormat)
	}
	if head[6] != 1 {
		return nil, fmt.Errorf("%w: version %d.%d", ErrNPYFormat, head[6], head[7])
	}
	n := binary.LittleEndian.Uint16(head[8:10])
	dict := make([]byte, n)
	if _, err := io.ReadFull(br, dict); err != nil {
		return nil, err
	}
	if !bytes.Contains(dict, []byte(`'descr': '<f8'`)) || !bytes.Contains(dict, []byte(`'fortran_order': False`)) {
		return nil, fmt.Errorf("%w: %s", ErrNPYFormat, bytes.TrimSpace(dict))
	}
	mm := npyShape.FindSubmatch(dict)
	if mm == nil {
		return nil, fmt.Errorf("%w: shape is not 2-D", ErrNPYFormat)
	}
	rows, _ := strconv.Atoi(string(mm[1]))
	cols, _ := strconv.Atoi(string(mm[2]))
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrNPYFormat)
	}
	data := make([]float64, rows*cols)
	if err := binary.Read(br, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, data), nil
}

// ReadNPYFile reads the array stored at path.
func ReadNPYFile(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadNPY(f)
}
