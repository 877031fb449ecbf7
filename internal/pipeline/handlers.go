package pipeline

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/export"
	"github.com/thehillman215/vectorbid/internal/lint"
	"github.com/thehillman215/vectorbid/internal/prefparser"
	"github.com/thehillman215/vectorbid/internal/ruleengine"
	"github.com/thehillman215/vectorbid/internal/strategy"
)

const optimizerVersion = "beam-v1"

const maxUploadBytes = 32 << 20 // 32 MiB

func (a *App) parsePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	var req parsePreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("parse_preferences", err.Error()))
		return
	}

	ctx, cancel := a.requestDeadline(r.Context())
	defer cancel()

	schema := prefparser.Parse(ctx, a.ladder, req.PilotID, req.Airline, req.Base, req.Persona, req.Month, req.PreferencesText)

	writeJSON(w, http.StatusOK, parsePreferencesResponse{
		PreferenceSchema: schema,
		Confidence:       schema.Confidence,
		Method:           schema.Source.ParserMethod,
		Unrecognized:     schema.Source.Unrecognized,
	})
}

func (a *App) validateConstraintsHandler(w http.ResponseWriter, r *http.Request) {
	var req validateConstraintsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("validate_constraints", err.Error()))
		return
	}

	ctx, cancel := a.requestDeadline(r.Context())
	defer cancel()

	bundle, err := a.enricher.Enrich(ctx, req.PreferenceSchema, req.Month, req.PackageID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	candidates := a.optimizer.Optimize(bundle, "")
	var violations []domain.Violation
	for _, c := range candidates {
		violations = append(violations, c.Violations...)
	}

	writeJSON(w, http.StatusOK, validateConstraintsResponse{
		OK:             len(violations) == 0,
		HardViolations: violations,
		Warnings:       bundle.Warnings,
	})
}

func (a *App) optimizeHandler(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("optimize", err.Error()))
		return
	}

	ctx, cancel := a.requestDeadline(r.Context())
	defer cancel()

	bundle, err := a.enricher.Enrich(ctx, req.PreferenceSchema, req.Month, req.PackageID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	candidates := a.optimizer.OptimizeTopK(bundle, req.Persona, req.K)

	writeJSON(w, http.StatusOK, optimizeResponse{Candidates: candidates, OptimizerVersion: optimizerVersion})
}

func (a *App) retuneHandler(w http.ResponseWriter, r *http.Request) {
	var req retuneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("optimize.retune", err.Error()))
		return
	}

	candidates := a.optimizer.Retune(req.Candidates, req.WeightDeltas, req.Persona)
	writeJSON(w, http.StatusOK, retuneResponse{Candidates: candidates})
}

func (a *App) strategyHandler(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("strategy", err.Error()))
		return
	}

	pkg, err := a.packages.Lookup(req.PackageID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pairings := make(map[string]domain.Pairing, len(pkg.Pairings))
	for _, p := range pkg.Pairings {
		pairings[p.PairingID] = p
	}

	directives := strategy.Build(req.Candidates, pairings, req.PreferenceSchema)
	writeJSON(w, http.StatusOK, strategyResponse{Directives: directives})
}

func (a *App) generateLayersHandler(w http.ResponseWriter, r *http.Request) {
	var req generateLayersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("generate_layers", err.Error()))
		return
	}

	pkg, err := a.packages.Lookup(req.PackageID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	artifact := strategy.GenerateLayers(req.Directives, len(pkg.Pairings), req.Airline, req.Month)
	artifact.Lint = lint.Check(artifact)
	writeJSON(w, http.StatusOK, generateLayersResponse{Artifact: artifact})
}

func (a *App) lintHandler(w http.ResponseWriter, r *http.Request) {
	var req lintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("lint", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, lintResponse{Lint: lint.Check(req.Artifact)})
}

func (a *App) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apierrors.NewBadInput("export", err.Error()))
		return
	}

	ctx, cancel := a.requestDeadline(r.Context())
	defer cancel()

	artifact := req.Artifact
	record, err := a.exporter.Export(ctx, &artifact, req.CtxID, req.PilotID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if a.audit != nil {
		if err := a.audit.Append(ctx, record); err != nil {
			a.logger.WithContext(ctx).Sugar().Errorw("audit append failed", "error", err)
		}
	}

	rendered := export.Render(artifact)
	writeJSON(w, http.StatusOK, exportResponse{
		ExportID:   record.ExportID,
		Bytes:      base64.StdEncoding.EncodeToString(rendered),
		ExportHash: record.ArtifactHash,
		Signature:  record.Signature,
		IssuedAt:   record.IssuedAt.Format(time.RFC3339),
	})
}

func (a *App) ingestHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, apierrors.NewBadInput("ingest", "invalid multipart body: "+err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apierrors.NewBadInput("ingest", "missing file field"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, apierrors.NewBadInput("ingest", "failed to read upload: "+err.Error()))
		return
	}

	airline := r.FormValue("airline")
	month := r.FormValue("month")
	base := r.FormValue("base")
	fleet := r.FormValue("fleet")
	seat := domain.Seat(r.FormValue("seat"))

	pkg, summary, err := a.packages.Ingest(header.Filename, airline, month, base, fleet, seat, raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{PackageID: pkg.PackageID, Summary: summary})
}

func (a *App) metaParsersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metaParsersResponse{
		SupportedFormats: a.packages.SupportedFormats(),
		RequiredFields:   []string{"airline", "month", "base", "fleet", "seat", "pilot_id"},
	})
}

func (a *App) listRulePacksHandler(w http.ResponseWriter, r *http.Request) {
	packs, err := ruleengine.ListAll(a.cfg.RulePack.Dir)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]rulePackSummary, 0, len(packs))
	for _, p := range packs {
		out = append(out, rulePackSummary{Airline: p.Airline, Month: p.Month, Version: p.Version})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) getRulePackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rp, err := a.rulePacks.Get(vars["airline"], vars["month"], "latest")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rp)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := w.Header().Get("X-Request-ID")
	if pe, ok := apierrors.As(err); ok {
		pe.WriteHTTP(w, requestID)
		return
	}
	apierrors.NewInternal("pipeline", err.Error(), err).WriteHTTP(w, requestID)
}
