package pipeline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thehillman215/vectorbid/internal/config"
	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/observability/logging"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := mustDefaultConfig(t)
	cfg.RulePack.Dir = t.TempDir()
	cfg.PackageStore.Dir = t.TempDir()
	cfg.ContextStore.Dir = t.TempDir()

	logger := logging.New(logging.Config{Level: "error", ServiceName: "vectorbid-test"})
	app, err := New(cfg, logger)
	require.NoError(t, err)
	return app
}

func mustDefaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestPingReturnsPong(t *testing.T) {
	app := testApp(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pong", body["ping"])
}

func TestHealthReportsDisabledSubsystemsWhenUnconfigured(t *testing.T) {
	app := testApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "disabled", resp.LLM)
	assert.Equal(t, "disabled", resp.DB)
}

func TestParsePreferencesFallsBackToRuleBasedWithoutLLMConfigured(t *testing.T) {
	app := testApp(t)
	body := `{"preferences_text":"no weekends, no red eyes","pilot_id":"P1","airline":"UAL"}`
	req := httptest.NewRequest(http.MethodPost, "/api/parse_preferences", strings.NewReader(body))
	rec := httptest.NewRecorder()

	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp parsePreferencesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.MethodRuleBased, resp.Method)
	assert.True(t, resp.PreferenceSchema.Hard.NoRedEyes)
}

func TestLintEndpointFlagsEmptyLayer(t *testing.T) {
	app := testApp(t)
	body := `{"artifact":{"Layers":[{"N":1}]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/lint", strings.NewReader(body))
	rec := httptest.NewRecorder()

	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp lintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lint.Errors, 1)
	assert.Equal(t, domain.LintEmptyLayer, resp.Lint.Errors[0].Kind)
}

func TestExportRequiresAPIKeyWhenConfigured(t *testing.T) {
	app := testApp(t)
	app.cfg.Export.APIKey = "shh"

	body := `{"artifact":{"Airline":"UAL","Layers":[]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
	rec := httptest.NewRecorder()

	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
