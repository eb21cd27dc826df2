package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadPAE loads a pair-confidence matrix from a JSON array-of-arrays file
// and attaches it to s. The matrix must be square with side s.N().
func ReadPAE(path string, s *Structure) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("model: read PAE file: %w", err)
	}
	var mat [][]float64
	if err := json.Unmarshal(raw, &mat); err != nil {
		return fmt.Errorf("model: parse PAE json: %w", err)
	}
	n := s.N()
	if len(mat) != n {
		return fmt.Errorf("model: PAE matrix has %d rows, expected %d", len(mat), n)
	}
	for i, row := range mat {
		if len(row) != n {
			return fmt.Errorf("model: PAE row %d has %d cols, expected %d", i, len(row), n)
		}
		for _, v := range row {
			if v < 0 {
				return fmt.Errorf("model: PAE[%d] contains negative value %v", i, v)
			}
		}
	}
	s.PAE = mat
	return nil
}
