// Package health derives a service health status from the state of the
// drug-code cache.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/medsafe/interactions-api/interfaces"
)

// HealthCheckerImpl evaluates cache freshness. The cache is an
// optimization, so a stale sweep degrades the status without taking the
// service out of rotation.
type HealthCheckerImpl struct {
	codeStore interfaces.CodeStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(codeStore interfaces.CodeStore) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		codeStore: codeStore,
	}
}

// HealthCheck returns the status, the cache statistics for the /health
// payload, and the HTTP status code to respond with.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	lastSwept := h.codeStore.GetLastSwept()
	isSweeping := h.codeStore.IsSweeping()

	// A zero sweep time means the process is young and the daily sweep
	// has not run yet, which is normal.
	sweepAge := time.Duration(0)
	if !lastSwept.IsZero() {
		sweepAge = time.Since(lastSwept)
	}

	switch {
	case sweepAge > 48*time.Hour:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"entries":     h.codeStore.Size(),
		"is_sweeping": isSweeping,
	}
	if lastSwept.IsZero() {
		data["last_swept"] = ""
	} else {
		data["last_swept"] = lastSwept.Format(time.RFC3339)
		data["sweep_age_hours"] = math.Round(sweepAge.Hours()*10) / 10
	}

	return status, data, httpStatus
}
