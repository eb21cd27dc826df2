package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// checkpointFile is the on-disk JSON shape: a map of layer name to
// {kernel, bias}, matching the training framework's export format.
type checkpointFile struct {
	Layers map[string]struct {
		Kernel [][]float32 `json:"kernel"`
		Bias   []float32   `json:"bias"`
	} `json:"layers"`
}

// LoadFile reads a checkpoint JSON file and returns validated Weights.
func LoadFile(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: read checkpoint %s: %w", path, err)
	}
	var cf checkpointFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("classifier: decode checkpoint %s: %w", path, err)
	}
	ck := Checkpoint{Layers: make(map[string]Layer, len(cf.Layers))}
	for name, l := range cf.Layers {
		ck.Layers[name] = Layer{Kernel: l.Kernel, Bias: l.Bias}
	}
	return Load(ck)
}
