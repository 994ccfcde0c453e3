// Package handlers provides HTTP request handlers for the interactions
// API endpoints. It wires input validation, prompt building, the
// completion service, explanation normalization and parsing, and the
// drug vocabulary lookup behind the two explain endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/medsafe/interactions-api/health"
	"github.com/medsafe/interactions-api/interactionsparser"
	"github.com/medsafe/interactions-api/interactionsparser/entities"
	"github.com/medsafe/interactions-api/interfaces"
	"github.com/medsafe/interactions-api/logging"
	"github.com/medsafe/interactions-api/metrics"
)

// HTTPHandlerImpl implements the API endpoints with injected dependencies
type HTTPHandlerImpl struct {
	generator  interfaces.Generator
	vocabulary interfaces.Vocabulary
	codeStore  interfaces.CodeStore
	validator  interfaces.InputValidator
	checker    *health.HealthCheckerImpl
	startTime  time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	generator interfaces.Generator,
	vocabulary interfaces.Vocabulary,
	codeStore interfaces.CodeStore,
	validator interfaces.InputValidator,
) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		generator:  generator,
		vocabulary: vocabulary,
		codeStore:  codeStore,
		validator:  validator,
		checker:    health.NewHealthChecker(codeStore),
		startTime:  time.Now(),
	}
}

// InteractionsRequest is the body of POST /interactions
type InteractionsRequest struct {
	Medications []string `json:"medications"`
}

// InteractionsResponse is the body of a successful POST /interactions
type InteractionsResponse struct {
	Explanation   string                        `json:"explanation"`
	Interactions  []entities.InteractionRecord  `json:"interactions,omitempty"`
	NoInteraction *entities.NoInteractionRecord `json:"no_interaction,omitempty"`
	RxCodes       map[string]string             `json:"rx_codes"`
	Malformed     bool                          `json:"malformed"`
}

// PersonalInfo carries the optional biometrics of POST /drug-info.
// Metric fields win over their imperial counterparts when both are set.
type PersonalInfo struct {
	HeightCm   float64 `json:"height_cm"`
	Feet       float64 `json:"feet"`
	Inches     float64 `json:"inches"`
	WeightKg   float64 `json:"weight_kg"`
	Pounds     float64 `json:"pounds"`
	Age        int     `json:"age"`
	IsPregnant bool    `json:"is_pregnant"`
}

// DrugInfoRequest is the body of POST /drug-info
type DrugInfoRequest struct {
	Medication   string       `json:"medication"`
	PersonalInfo PersonalInfo `json:"personal_info"`
}

// DrugInfoResponse is the body of a successful POST /drug-info
type DrugInfoResponse struct {
	Explanation string                  `json:"explanation"`
	Info        entities.DrugInfoRecord `json:"info"`
	Malformed   bool                    `json:"malformed"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// ExplainInteractions handles POST /interactions. It asks the
// completion service for an interaction explanation, normalizes and
// parses it, and annotates the medications with RxNorm codes.
func (h *HTTPHandlerImpl) ExplainInteractions(w http.ResponseWriter, r *http.Request) {
	var req InteractionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validator.ValidateMedications(req.Medications); err != nil {
		if errors.Is(err, interactionsparser.ErrEmptyInput) {
			h.RespondWithError(w, http.StatusBadRequest, "At least one medication is required")
			return
		}
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	prompt, err := interactionsparser.BuildInteractionPrompt(req.Medications)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "At least one medication is required")
		return
	}

	raw, err := h.generator.Complete(r.Context(), interactionsparser.SystemPrompt, prompt)
	if err != nil {
		logging.Error("Completion service failed", "error", err)
		h.RespondWithError(w, http.StatusBadGateway, err.Error())
		return
	}

	explanation := interactionsparser.Normalize(raw)
	report := interactionsparser.ParseInteractions(explanation)

	response := InteractionsResponse{
		Explanation:   explanation,
		Interactions:  report.Interactions,
		NoInteraction: report.NoInteraction,
		RxCodes:       h.resolveCodes(r, req.Medications),
		Malformed:     report.Malformed,
	}

	if report.Malformed {
		logging.Warn("Explanation did not match the expected format",
			"medications", len(req.Medications))
	}

	h.RespondWithJSON(w, http.StatusOK, response)
}

// ExplainDrugInfo handles POST /drug-info
func (h *HTTPHandlerImpl) ExplainDrugInfo(w http.ResponseWriter, r *http.Request) {
	var req DrugInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Medication) == "" {
		h.RespondWithError(w, http.StatusBadRequest, "A medication name is required")
		return
	}
	if err := h.validator.ValidateMedication(req.Medication); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := buildProfile(req.PersonalInfo)
	if err := h.validator.ValidateProfile(profile); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	prompt, err := interactionsparser.BuildDrugInfoPrompt(req.Medication, profile)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidMeasurement) {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondWithError(w, http.StatusBadRequest, "A medication name is required")
		return
	}

	raw, err := h.generator.Complete(r.Context(), interactionsparser.SystemPrompt, prompt)
	if err != nil {
		logging.Error("Completion service failed", "error", err)
		h.RespondWithError(w, http.StatusBadGateway, err.Error())
		return
	}

	explanation := interactionsparser.Normalize(raw)
	report := interactionsparser.ParseDrugInfo(explanation)

	if report.Malformed {
		logging.Warn("Drug info explanation did not match the expected format",
			"medication", req.Medication)
	}

	h.RespondWithJSON(w, http.StatusOK, DrugInfoResponse{
		Explanation: explanation,
		Info:        report.Info,
		Malformed:   report.Malformed,
	})
}

// buildProfile converts the request biometrics to metric units.
// Metric values take precedence over imperial ones.
func buildProfile(info PersonalInfo) entities.BiometricProfile {
	profile := entities.BiometricProfile{
		AgeYears:   info.Age,
		IsPregnant: info.IsPregnant,
	}

	switch {
	case info.HeightCm > 0:
		profile.HeightCm = info.HeightCm
	case info.Feet > 0 || info.Inches > 0:
		profile.HeightCm = entities.FeetInchesToCm(info.Feet, info.Inches)
	}

	switch {
	case info.WeightKg > 0:
		profile.WeightKg = info.WeightKg
	case info.Pounds > 0:
		profile.WeightKg = entities.PoundsToKg(info.Pounds)
	}

	return profile
}

// resolveCodes annotates medication names with their RxNorm codes.
// Lookups hit the cache first and fall back to the vocabulary service.
// A failed lookup never fails the request; the name is simply absent
// from the map.
func (h *HTTPHandlerImpl) resolveCodes(r *http.Request, medications []string) map[string]string {
	codes := make(map[string]string, len(medications))

	for _, med := range medications {
		name := strings.ToLower(strings.TrimSpace(med))
		if name == "" {
			continue
		}
		if _, done := codes[name]; done {
			continue
		}

		if code, found := h.codeStore.LookupCode(name); found {
			codes[name] = code
			continue
		}

		code, err := h.vocabulary.FindRxCUI(r.Context(), name)
		if err != nil {
			logging.Warn("Vocabulary lookup failed", "medication", name, "error", err)
			continue
		}

		codes[name] = code
		h.codeStore.StoreCode(name, code)
		metrics.CodeCacheEntries.Set(float64(h.codeStore.Size()))
	}

	return codes
}

// HealthResponseImpl defines the structure for consistent JSON ordering
type HealthResponseImpl struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	UptimeHuman   string                 `json:"uptime_human"`
	Cache         map[string]interface{} `json:"cache"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck reports process and cache health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)
	status, cacheData, httpStatus := h.checker.HealthCheck()

	response := HealthResponseImpl{
		Status:        status,
		UptimeSeconds: uptime.Seconds(),
		UptimeHuman:   formatUptimeHuman(uptime),
		Cache:         cacheData,
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// Index describes the API surface
func (h *HTTPHandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "interactions-api",
		"version": "1.0",
		"endpoints": map[string]string{
			"POST /interactions": "Explain interactions between medications",
			"POST /drug-info":    "Explain a single medication, optionally personalized",
			"GET /health":        "Service health",
			"GET /metrics":       "Prometheus metrics",
		},
	})
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}
