package pipeline

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/thehillman215/vectorbid/internal/ruleengine"
)

type healthResponse struct {
	Status          string `json:"status"`
	Storage         string `json:"storage"`
	RulePackVersion string `json:"rulepack_version"`
	LLM             string `json:"llm"`
	DB              string `json:"db"`
}

// healthHandler reports per-subsystem status, per spec.md §6:
// storage (package store directory reachable), rulepack_version (the
// version field of the first rule-pack file found on disk, or "none"),
// llm (a provider is configured), db (the audit store connected, or
// "disabled" when no audit store is open).
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Storage: "ok", LLM: "disabled", DB: "disabled"}

	if _, err := os.Stat(a.cfg.PackageStore.Dir); err != nil {
		resp.Storage = "unavailable"
	}

	packs, err := ruleengine.ListAll(a.cfg.RulePack.Dir)
	if err != nil || len(packs) == 0 {
		resp.RulePackVersion = "none"
	} else {
		resp.RulePackVersion = packs[0].Version
	}

	if a.ladder != nil {
		resp.LLM = "ok"
	}

	if a.audit != nil {
		resp.DB = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"ping": "pong"})
}
