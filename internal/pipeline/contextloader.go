package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/thehillman215/vectorbid/internal/domain"
)

// FileContextLoader resolves a pilot's ContextSnapshot from an optional
// per-pilot JSON file under dir/<airline>/<pilot_id>.json; a missing file
// falls back to a neutral default snapshot rather than failing, so
// context loading never fails enrich.Enricher's request.
type FileContextLoader struct {
	dir string
}

// NewFileContextLoader builds a loader rooted at dir.
func NewFileContextLoader(dir string) *FileContextLoader {
	return &FileContextLoader{dir: dir}
}

type contextFile struct {
	Base                string             `json:"base"`
	Seat                string             `json:"seat"`
	Equip               []string           `json:"equip"`
	SeniorityPercentile float64            `json:"seniority_percentile"`
	CommutingProfile    map[string]any     `json:"commuting_profile"`
	DefaultWeights      map[string]float64 `json:"default_weights"`
}

// Load reads dir/<airline>/<pilotID>.json if present, otherwise returns a
// neutral snapshot (seniority percentile 0.5, no commuting profile).
func (l *FileContextLoader) Load(_ context.Context, pilotID, airline string) (domain.ContextSnapshot, error) {
	snapshot := domain.ContextSnapshot{
		CtxID:               pilotID + ":" + airline,
		PilotID:             pilotID,
		Airline:             airline,
		SeniorityPercentile: 0.5,
		CreatedAt:           time.Now().UTC(),
	}

	path := filepath.Join(l.dir, airline, pilotID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, nil
	}

	var cf contextFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return snapshot, nil
	}

	snapshot.Base = cf.Base
	snapshot.Seat = domain.Seat(cf.Seat)
	snapshot.Equip = cf.Equip
	if cf.SeniorityPercentile > 0 {
		snapshot.SeniorityPercentile = cf.SeniorityPercentile
	}
	snapshot.CommutingProfile = cf.CommutingProfile
	snapshot.DefaultWeights = cf.DefaultWeights
	return snapshot, nil
}
