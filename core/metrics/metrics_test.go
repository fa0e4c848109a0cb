package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransfer(t *testing.T) {
	completeBefore := testutil.ToFloat64(transfersTotal.WithLabelValues("complete"))
	failedBefore := testutil.ToFloat64(transfersTotal.WithLabelValues("download_failed"))
	bytesBefore := testutil.ToFloat64(transferBytes)
	retriesBefore := testutil.ToFloat64(transferRetries)

	RecordTransfer("complete", true, 1024, 3)
	RecordTransfer("download_failed", false, 512, 1)

	assert.Equal(t, completeBefore+1, testutil.ToFloat64(transfersTotal.WithLabelValues("complete")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(transfersTotal.WithLabelValues("download_failed")))
	assert.Equal(t, bytesBefore+1024, testutil.ToFloat64(transferBytes))
	assert.Equal(t, retriesBefore+2, testutil.ToFloat64(transferRetries))
}

func TestInFlight(t *testing.T) {
	before := testutil.ToFloat64(transfersInFlight)

	TransferStarted()
	TransferStarted()
	assert.Equal(t, before+2, testutil.ToFloat64(transfersInFlight))

	TransferFinished()
	TransferFinished()
	assert.Equal(t, before, testutil.ToFloat64(transfersInFlight))
}

func TestRecordReconcile(t *testing.T) {
	failuresBefore := testutil.ToFloat64(reconcileFailures)

	RecordReconcile(150*time.Millisecond, 2, 1, 7)
	RecordReconcileFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(modsByStatus.WithLabelValues("missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(modsByStatus.WithLabelValues("update_available")))
	assert.Equal(t, 7.0, testutil.ToFloat64(modsByStatus.WithLabelValues("latest")))
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(reconcileFailures))
}

func TestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/mods/:name", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/mods/:name", "200"))

	resp, err := app.Test(httptest.NewRequest("GET", "/mods/cropA", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/mods/:name", "200")))
}

func TestHandler(t *testing.T) {
	RecordTransfer("complete", true, 1, 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "modsync_transfers_total"))
}
