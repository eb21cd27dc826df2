package refdata

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// historyDist holds a template's historical z-score and q-score
// distributions, kept sorted for percentile lookups.
type historyDist struct {
	z []float64
	q []float64
}

// ZPercentile returns (#historical_z > observed) / #historical_z, or -1 if
// no history is available for the template.
func (s *Store) ZPercentile(templateID string, observed float64) (float64, error) {
	d, err := s.loadHistory(templateID)
	if err != nil {
		return -1, err
	}
	if len(d.z) == 0 {
		return -1, nil
	}
	return percentileAbove(d.z, observed), nil
}

// QPercentile is the q-score analogue of ZPercentile.
func (s *Store) QPercentile(templateID string, observed float64) (float64, error) {
	d, err := s.loadHistory(templateID)
	if err != nil {
		return -1, err
	}
	if len(d.q) == 0 {
		return -1, nil
	}
	return percentileAbove(d.q, observed), nil
}

func percentileAbove(sorted []float64, observed float64) float64 {
	// sorted is ascending; count of values strictly greater than observed.
	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] > observed })
	above := len(sorted) - idx
	return float64(above) / float64(len(sorted))
}

func (s *Store) loadHistory(templateID string) (historyDist, error) {
	s.mu.RLock()
	if d, ok := s.history[templateID]; ok {
		s.mu.RUnlock()
		return d, nil
	}
	s.mu.RUnlock()

	var d historyDist
	if s.historyDir != "" {
		path := filepath.Join(s.historyDir, templateID+".hist")
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
				z, err1 := strconv.ParseFloat(fields[0], 64)
				q, err2 := strconv.ParseFloat(fields[1], 64)
				if err1 == nil {
					d.z = append(d.z, z)
				}
				if err2 == nil {
					d.q = append(d.q, q)
				}
			}
			if err := sc.Err(); err != nil {
				return historyDist{}, fmt.Errorf("refdata: scan history for %s: %w", templateID, err)
			}
		}
	}
	sort.Float64s(d.z)
	sort.Float64s(d.q)

	s.mu.Lock()
	s.history[templateID] = d
	s.mu.Unlock()
	return d, nil
}
