package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gates-backend/internal/config"
	"gates-backend/internal/domain/businesshours"
)

func localConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Endpoint = "http://127.0.0.1:1"
	cfg.Database.RetryMaxAttempts = 1
	cfg.Database.ConnectTimeout = 200 * time.Millisecond
	return cfg
}

func TestInitializeContainer(t *testing.T) {
	cfg := localConfig()
	c, cleanup, err := InitializeContainer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.NotNil(t, c.Router)
	assert.Same(t, cfg, c.Config)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"gates","version":"dev"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInitializeContainer_DemoModeRejectsWrites(t *testing.T) {
	cfg := localConfig()
	cfg.DemoMode = true
	c, cleanup, err := InitializeContainer(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	body := `{"group":"payments","service":"ledger","environment":"prod"}`
	req := httptest.NewRequest(http.MethodPost, "/api/gates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInitializeContainer_InvalidTimezone(t *testing.T) {
	cfg := localConfig()
	cfg.BusinessHours.Timezone = "Mars/Olympus"
	_, _, err := InitializeContainer(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	c, cleanup, err := InitializeContainer(context.Background(), localConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	reloaded := localConfig()
	reloaded.BusinessHours.Week = businesshours.BusinessWeek{
		time.Saturday: {Start: businesshours.NewTimeOfDay(9, 0, 0), End: businesshours.NewTimeOfDay(12, 0, 0)},
	}
	c.ApplyConfig(reloaded)

	assert.Equal(t, reloaded.BusinessHours.Week, c.Hours.Week())
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Logging.Level = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
