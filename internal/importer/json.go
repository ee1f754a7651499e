package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"uno-score-bot/internal/model"
)

// ParseSnapshotJSON decodes an exported snapshot. Any error aborts the whole import.
func ParseSnapshotJSON(r io.Reader) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	for i := range snap.Games {
		snap.Games[i].Type = snap.Games[i].Type.OrDefault()
		if snap.Games[i].Scores == nil {
			snap.Games[i].Scores = map[string]int{}
		}
	}
	return snap, nil
}

// WriteSnapshotJSON writes snap as indented JSON.
func WriteSnapshotJSON(w io.Writer, snap model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
