package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// State is the per-chain checkpoint record, persisted atomically as
// ".{chain}.dpam_state.json" after every stage.
type State struct {
	CompletedStages []int             `json:"completed_stages"`
	FailedStages    map[int]string    `json:"failed_stages"`

	completed map[int]bool // derived, not serialized
}

func newState() *State {
	return &State{FailedStages: make(map[int]string), completed: make(map[int]bool)}
}

// LoadState reads a chain's state file, or returns a fresh State if none
// exists yet (a fresh run starts from stage 1, per spec.md §4.E).
func LoadState(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: read state file: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("pipeline: parse state file: %w", err)
	}
	if s.FailedStages == nil {
		s.FailedStages = make(map[int]string)
	}
	s.completed = make(map[int]bool, len(s.CompletedStages))
	for _, id := range s.CompletedStages {
		s.completed[id] = true
	}
	return &s, nil
}

// Completed reports whether stage id has already completed successfully.
func (s *State) Completed(id int) bool { return s.completed[id] }

// MarkCompleted records a successful stage and clears any prior failure
// recorded for it.
func (s *State) MarkCompleted(id int) {
	if !s.completed[id] {
		s.completed[id] = true
		s.CompletedStages = append(s.CompletedStages, id)
		sort.Ints(s.CompletedStages)
	}
	delete(s.FailedStages, id)
}

// MarkFailed records a non-fatal (or fatal, pre-abort) stage failure.
func (s *State) MarkFailed(id int, msg string) {
	s.FailedStages[id] = msg
}

// Save persists the state file atomically via write-temp + rename.
func (s *State) Save(path string) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshal state: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dpam_state_*.tmp")
	if err != nil {
		return fmt.Errorf("pipeline: create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: rename temp state file: %w", err)
	}
	return nil
}

// StatePath returns the canonical state-file path for a chain prefix P
// under dir: "dir/.P.dpam_state.json".
func StatePath(dir, chainPrefix string) string {
	return filepath.Join(dir, "."+chainPrefix+".dpam_state.json")
}
