package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Manifest summarizes one batch run.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Scenes    []Result  `json:"scenes"`
}

// NewManifest tallies results.
func NewManifest(runID string, results []Result) Manifest {
	m := Manifest{RunID: runID, Generated: time.Now().UTC(), Scenes: results}
	for _, r := range results {
		if r.Success {
			m.Succeeded++
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes the run summary as indented JSON.
func WriteManifest(path, runID string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(runID, results), "", "  ")
	if err != nil {
		return errors.Wrap(err, "batch: encode manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "batch: write %s", path)
	}
	return nil
}
