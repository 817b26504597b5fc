package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicsys/clinic-services/internal/observability"
	apperrors "github.com/clinicsys/clinic-services/pkg/util"
)

func newTestApp(t *testing.T, timeout time.Duration) (*fiber.App, *observability.Metrics) {
	t.Helper()

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, timeout)
	return app, metrics
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestDomainErrorsBecomeEnvelopes(t *testing.T) {
	app, _ := newTestApp(t, 0)
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("already exists", nil)
	})

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/conflict", nil))
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "CONFLICT")
	assert.Contains(t, body, "already exists")
}

func TestRequestMetricsSeeErrorStatus(t *testing.T) {
	app, metrics := newTestApp(t, 0)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("profile", nil)
	})

	status, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, status)

	// The logger runs outside the error handler, so the counter carries the
	// status the error handler wrote.
	assert.Equal(t, int64(1), metrics.RequestCount("/missing", http.MethodGet, http.StatusNotFound))
	assert.Equal(t, int64(0), metrics.RequestCount("/missing", http.MethodGet, http.StatusOK))
}

func TestPanicsRecoverToInternalError(t *testing.T) {
	app, _ := newTestApp(t, 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "INTERNAL_ERROR")
}

func TestRequestTimeoutReachesHandlers(t *testing.T) {
	app, _ := newTestApp(t, time.Second)
	app.Get("/deadline", func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"hasDeadline": ok})
	})

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"hasDeadline":true`)
}
