package refdata

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PositionWeight returns the per-position weight for a template residue,
// lazily loading and caching the template's weight file on first access.
// Missing files default to uniform weight 1.0 for every position, per
// spec.md §4.D.
func (s *Store) PositionWeight(templateID string, pos int) (float64, error) {
	w, err := s.loadWeights(templateID)
	if err != nil {
		return 0, err
	}
	if v, ok := w[pos]; ok {
		return v, nil
	}
	return 1.0, nil
}

// PositionWeights returns the full lazily-loaded weight map for a template.
// The map is never nil; it is empty when the template has no weight file,
// and PositionWeight reads every position of such a template as 1.0.
func (s *Store) PositionWeights(templateID string) (map[int]float64, error) {
	return s.loadWeights(templateID)
}

func (s *Store) loadWeights(templateID string) (map[int]float64, error) {
	s.mu.RLock()
	if w, ok := s.weights[templateID]; ok {
		s.mu.RUnlock()
		return w, nil
	}
	s.mu.RUnlock()

	w := make(map[int]float64)
	if s.weightsDir != "" {
		path := filepath.Join(s.weightsDir, templateID+".weights")
		if f, err := os.Open(path); err == nil {
			defer f.Close()
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				fields := strings.Fields(line)
				if len(fields) < 2 {
					continue
				}
				pos, err1 := strconv.Atoi(fields[0])
				val, err2 := strconv.ParseFloat(fields[1], 64)
				if err1 != nil || err2 != nil {
					continue
				}
				w[pos] = val
			}
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("refdata: scan weights for %s: %w", templateID, err)
			}
		}
	}

	s.mu.Lock()
	s.weights[templateID] = w
	s.mu.Unlock()
	return w, nil
}
