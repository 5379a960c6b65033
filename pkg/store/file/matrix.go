package file

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// The embedding matrix file is row-major float32, little endian, with a
// fixed header of two int32 values: row count and dimension. Metadata for
// the rows lives in a sibling JSON file with identical row order.

func writeMatrix(path string, rows [][]float32) error {
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	for i, r := range rows {
		if len(r) != dim {
			return fmt.Errorf("row %d has dimension %d, want %d", i, len(r), dim)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header := [2]int32{int32(len(rows)), int32(dim)}
	if err := binary.Write(w, binary.LittleEndian, header[:]); err != nil {
		return fmt.Errorf("failed to write matrix header: %w", err)
	}
	for _, r := range rows {
		if err := binary.Write(w, binary.LittleEndian, r); err != nil {
			return fmt.Errorf("failed to write matrix row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func readMatrix(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header [2]int32
	if err := binary.Read(r, binary.LittleEndian, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read matrix header: %w", err)
	}
	count, dim := int(header[0]), int(header[1])
	if count < 0 || dim < 0 {
		return nil, fmt.Errorf("corrupt matrix header: %d rows, dimension %d", count, dim)
	}

	rows := make([][]float32, count)
	for i := range rows {
		rows[i] = make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, rows[i]); err != nil {
			return nil, fmt.Errorf("failed to read matrix row %d: %w", i, err)
		}
	}

	// trailing bytes mean the header lied
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("matrix file has trailing data")
	}
	return rows, nil
}
