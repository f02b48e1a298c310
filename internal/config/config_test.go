package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresBaseURLs(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("STREAM_BASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "API_BASE_URL")

	t.Setenv("API_BASE_URL", "https://api.example.com")
	_, err = Load()
	assert.ErrorContains(t, err, "STREAM_BASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("STREAM_BASE_URL", "https://stream.example.com")
	t.Setenv("UPLOAD_TIMEOUT", "")
	t.Setenv("STREAM_MAX_CONNECT_FAILURES", "")
	t.Setenv("JOURNAL_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, 2*time.Minute, cfg.API.UploadTimeout)
	assert.Equal(t, 3, cfg.Stream.MaxConnectFailures)
	assert.Equal(t, 30*time.Second, cfg.Stream.MaxBackoff)
	assert.Equal(t, "127.0.0.1:8089", cfg.Export.ListenAddr)
	assert.True(t, cfg.Journal.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("STREAM_BASE_URL", "https://stream.example.com")
	t.Setenv("APP_ENV", "production")
	t.Setenv("UPLOAD_TIMEOUT", "45s")
	t.Setenv("STREAM_MAX_CONNECT_FAILURES", "7")
	t.Setenv("JOURNAL_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 45*time.Second, cfg.API.UploadTimeout)
	assert.Equal(t, 7, cfg.Stream.MaxConnectFailures)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadIgnoresInvalidNumericOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("STREAM_BASE_URL", "https://stream.example.com")
	t.Setenv("UPLOAD_TIMEOUT", "not-a-duration")
	t.Setenv("STREAM_MAX_CONNECT_FAILURES", "-2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.API.UploadTimeout)
	assert.Equal(t, 3, cfg.Stream.MaxConnectFailures)
}

func TestDefaultCatalog(t *testing.T) {
	t.Setenv("STEP_CATALOG_PATH", "")
	steps, err := LoadCatalog()
	require.NoError(t, err)
	require.Len(t, steps, 8)

	assert.Equal(t, "document_preparation", string(steps[0].ID))
	assert.Equal(t, "final_report", string(steps[7].ID))
	for _, s := range steps {
		assert.NotEmpty(t, s.Title, string(s.ID))
		assert.Equal(t, "pending", string(s.Status))
	}
}

func TestParseCatalogRejectsWrongOrder(t *testing.T) {
	bad := []byte(`steps:
  - {id: platforms, title: A}
  - {id: document_preparation, title: B}
  - {id: requirements, title: C}
  - {id: techstack, title: D}
  - {id: team_composition, title: E}
  - {id: effort_estimation, title: F}
  - {id: development_plan, title: G}
  - {id: final_report, title: H}
`)
	_, err := parseCatalog(bad)
	assert.ErrorContains(t, err, "position 0")
}

func TestParseCatalogRejectsWrongCount(t *testing.T) {
	_, err := parseCatalog([]byte("steps:\n  - {id: platforms, title: A}\n"))
	assert.ErrorContains(t, err, "8 steps")
}

func TestParseCatalogRequiresTitle(t *testing.T) {
	bad := []byte(`steps:
  - {id: document_preparation, title: ""}
  - {id: platforms, title: B}
  - {id: requirements, title: C}
  - {id: techstack, title: D}
  - {id: team_composition, title: E}
  - {id: effort_estimation, title: F}
  - {id: development_plan, title: G}
  - {id: final_report, title: H}
`)
	_, err := parseCatalog(bad)
	assert.ErrorContains(t, err, "title is required")
}

func TestApplyTunnelBypass(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://demo.loca.lt/events", true},
		{"https://abc123.ngrok-free.app/rfp-upload", true},
		{"https://api.example.com/rfp-upload", false},
		{"http://localhost:8080/events", false},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(http.MethodGet, tt.url, nil)
		require.NoError(t, err)
		ApplyTunnelBypass(req)
		if tt.want {
			assert.Equal(t, "true", req.Header.Get("Bypass-Tunnel-Reminder"), tt.url)
			assert.Equal(t, "true", req.Header.Get("ngrok-skip-browser-warning"), tt.url)
		} else {
			assert.Empty(t, req.Header.Get("Bypass-Tunnel-Reminder"), tt.url)
		}
	}
}
