package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leansync-jira/internal/common"
	"leansync-jira/internal/interfaces"
	"leansync-jira/internal/models"

	"github.com/ternarybob/arbor"
)

// maxMappingSize bounds uploaded mapping documents
const maxMappingSize = 4 << 20

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config    *common.Config
	storage   interfaces.Storage
	sync      interfaces.SyncService
	logger    arbor.ILogger
	startTime time.Time
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	Build          string    `json:"build"`
	Uptime         float64   `json:"uptime_seconds"`
	Configurations int       `json:"configurations"`
	Services       struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// VersionResponse represents server version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// ConfigResponse represents the configuration display response
type ConfigResponse struct {
	Service *common.ServiceConfig `json:"service"`
	Storage *common.StorageConfig `json:"storage"`
	Logging *common.LoggingConfig `json:"logging"`
	Sync    *common.SyncConfig    `json:"sync"`
}

// MappingResponse summarises the active mapping
type MappingResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message,omitempty"`
	Configurations []ConfigurationSummary `json:"configurations,omitempty"`
}

// ConfigurationSummary describes one loaded configuration
type ConfigurationSummary struct {
	ProjectID      string   `json:"project_id"`
	IssueTypes     []string `json:"issue_types,omitempty"`
	ErrorLog       string   `json:"error_log,omitempty"`
	InboundFields  int      `json:"inbound_fields"`
	OutboundFields int      `json:"outbound_fields"`
	Domains        []string `json:"domains,omitempty"`
}

// NotifyRequest asks whether a change event should trigger a round
type NotifyRequest struct {
	ProjectID   string              `json:"project_id"`
	IssueTypeID string              `json:"issue_type_id"`
	Event       *models.ChangeEvent `json:"event,omitempty"`
}

// NotifyResponse is the filter decision
type NotifyResponse struct {
	Synchronize bool `json:"synchronize"`
}

// HistoryResponse lists the recorded rounds of an issue
type HistoryResponse struct {
	Success  bool                  `json:"success"`
	IssueKey string                `json:"issue_key"`
	Count    int                   `json:"count"`
	Rounds   []*models.RoundRecord `json:"rounds"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(config *common.Config, storage interfaces.Storage, sync interfaces.SyncService, logger arbor.ILogger) *APIHandlers {
	return &APIHandlers{
		config:    config,
		storage:   storage,
		sync:      sync,
		logger:    logger,
		startTime: time.Now(),
	}
}

// HealthHandler returns system health status
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now(),
		Version:        common.GetVersion(),
		Build:          common.GetBuild(),
		Uptime:         time.Since(h.startTime).Seconds(),
		Configurations: len(h.sync.Configurations()),
	}

	health.Services.Database = h.testDatabaseConnection()
	if !health.Services.Database {
		health.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, health)
}

// VersionHandler returns version information
func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

// ConfigHandler returns service configuration
func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ConfigResponse{
		Service: &h.config.Service,
		Storage: &h.config.Storage,
		Logging: &h.config.Logging,
		Sync:    &h.config.Sync,
	})
}

// MappingHandler serves the stored mapping document, or the revision it
// replaced with ?revision=previous, and accepts new ones
func (h *APIHandlers) MappingHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetMapping(w, r)
	case http.MethodPut, http.MethodPost:
		h.handlePutMapping(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *APIHandlers) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("summary") != "" {
		h.writeJSON(w, http.StatusOK, MappingResponse{
			Success:        true,
			Configurations: h.summaries(),
		})
		return
	}

	load := h.storage.LoadMappingDocument
	if r.URL.Query().Get("revision") == "previous" {
		load = h.storage.LoadPreviousMappingDocument
	}

	data, err := load()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load mapping document", err)
		return
	}
	if len(data) == 0 {
		h.writeError(w, http.StatusNotFound, "No mapping document stored", nil)
		return
	}

	w.Header().Set("Content-Type", documentContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *APIHandlers) handlePutMapping(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxMappingSize))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read mapping document", err)
		return
	}

	if err := h.sync.ReloadMapping(data); err != nil {
		status := http.StatusInternalServerError
		if common.IsErrorType(err, common.ErrorTypeValidation) {
			status = http.StatusUnprocessableEntity
		}
		h.writeError(w, status, "Mapping document rejected", err)
		return
	}

	summaries := h.summaries()
	h.writeJSON(w, http.StatusOK, MappingResponse{
		Success:        true,
		Message:        fmt.Sprintf("Loaded %d configurations", len(summaries)),
		Configurations: summaries,
	})
}

func (h *APIHandlers) summaries() []ConfigurationSummary {
	cfgs := h.sync.Configurations()
	out := make([]ConfigurationSummary, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, ConfigurationSummary{
			ProjectID:      c.ProjectID,
			IssueTypes:     c.IssueTypes,
			ErrorLog:       c.ErrorLog,
			InboundFields:  len(c.Inbound.AllFields()),
			OutboundFields: len(c.Outbound.AllFields()),
			Domains:        c.Domains,
		})
	}
	return out
}

// NotifyHandler evaluates the change filter for an issue event
func (h *APIHandlers) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid payload format", err)
		return
	}

	h.writeJSON(w, http.StatusOK, NotifyResponse{
		Synchronize: h.sync.ShouldSynchronize(req.ProjectID, req.IssueTypeID, req.Event),
	})
}

// OutboundHandler runs an outbound round for an issue event
func (h *APIHandlers) OutboundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.OutboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid payload format", err)
		return
	}

	record, err := h.sync.HandleIssueEvent(r.Context(), &req)
	h.writeRound(w, record, err)
}

// InboundHandler applies an external resource to an issue
func (h *APIHandlers) InboundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.InboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid payload format", err)
		return
	}

	record, err := h.sync.ApplyExternal(r.Context(), &req)
	h.writeRound(w, record, err)
}

// HistoryHandler lists or clears the recorded rounds of an issue
func (h *APIHandlers) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	issueKey := strings.TrimSpace(r.URL.Query().Get("issue"))
	if issueKey == "" {
		h.writeError(w, http.StatusBadRequest, "Query parameter 'issue' is required", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rounds, err := h.storage.LoadRounds(issueKey)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to load round history", err)
			return
		}
		if rounds == nil {
			rounds = []*models.RoundRecord{}
		}
		h.writeJSON(w, http.StatusOK, HistoryResponse{
			Success:  true,
			IssueKey: issueKey,
			Count:    len(rounds),
			Rounds:   rounds,
		})
	case http.MethodDelete:
		count, err := h.storage.ClearRounds(issueKey)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to clear round history", err)
			return
		}
		h.logger.Info().Str("issue", issueKey).Int("count", count).Msg("Round history cleared")
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("Cleared %d rounds", count),
			"count":   count,
		})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *APIHandlers) writeRound(w http.ResponseWriter, record *models.RoundRecord, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if common.IsErrorType(err, common.ErrorTypeValidation) {
			status = http.StatusBadRequest
		}
		h.writeError(w, status, "Sync round failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *APIHandlers) testDatabaseConnection() bool {
	_, err := h.storage.LoadMappingDocument()
	return err == nil
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *APIHandlers) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.Error = err.Error()
		var se *common.SyncError
		if errors.As(err, &se) {
			resp.Code = se.Code
		}
		h.logger.Warn().Err(err).Int("status", status).Msg(message)
	}
	h.writeJSON(w, status, resp)
}

func documentContentType(data []byte) string {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "<") {
		return "application/xml"
	}
	return "application/yaml"
}
