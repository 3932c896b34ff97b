package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garyjia/claims-intake/internal/application/service"
	"github.com/garyjia/claims-intake/internal/domain/adjudication"
	"github.com/garyjia/claims-intake/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services       Services
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, maxUploadBytes int64, logger Logger) *Handlers {
	return &Handlers{
		services:       services,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// CreateClaimRequest is the body of POST /claims
type CreateClaimRequest struct {
	PolicyNumber        string    `json:"policy_number" binding:"required"`
	IncidentDate        time.Time `json:"incident_date" binding:"required"`
	IncidentLocation    string    `json:"incident_location" binding:"required"`
	IncidentDescription string    `json:"incident_description" binding:"required"`
	VehicleVIN          string    `json:"vehicle_vin"`
	VehicleMake         string    `json:"vehicle_make"`
	VehicleModel        string    `json:"vehicle_model"`
	VehicleYear         int       `json:"vehicle_year" binding:"required"`
	ClaimantName        string    `json:"claimant_name" binding:"required"`
	ClaimantEmail       string    `json:"claimant_email" binding:"required"`
	ClaimantPhone       string    `json:"claimant_phone" binding:"required"`
	EstimatedDamageCost *float64  `json:"estimated_damage_cost"`
}

// AdjudicateRequest is the body of POST /claims/:id/adjudicate. Both fields
// are optional; absent or unreadable values reach the engine as missing.
type AdjudicateRequest struct {
	FraudScore adjudication.Number              `json:"fraud_score"`
	AIAnalysis *adjudication.AIAnalysisSnapshot `json:"ai_analysis"`
}

// AdjudicationResponse is returned by POST /claims/:id/adjudicate
type AdjudicationResponse struct {
	ClaimID        string               `json:"claim_id"`
	ClaimNumber    string               `json:"claim_number"`
	Verdict        adjudication.Verdict `json:"verdict"`
	PreviousStatus string               `json:"previous_status"`
	ClaimStatus    string               `json:"claim_status"`
	AuditLogID     string               `json:"audit_log_id"`
}

// Root handles GET /
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the claims intake API"})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}

// CreateClaim handles POST /claims
func (h *Handlers) CreateClaim(c *gin.Context) {
	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid claim: "+err.Error())
		return
	}

	claim, err := h.services.Claims.CreateClaim(c.Request.Context(), service.CreateClaimInput{
		PolicyNumber:        req.PolicyNumber,
		IncidentDate:        req.IncidentDate,
		IncidentLocation:    req.IncidentLocation,
		IncidentDescription: req.IncidentDescription,
		VehicleVIN:          req.VehicleVIN,
		VehicleMake:         req.VehicleMake,
		VehicleModel:        req.VehicleModel,
		VehicleYear:         req.VehicleYear,
		ClaimantName:        req.ClaimantName,
		ClaimantEmail:       req.ClaimantEmail,
		ClaimantPhone:       req.ClaimantPhone,
		EstimatedDamageCost: req.EstimatedDamageCost,
	})
	if err != nil {
		h.handleServiceError(c, "Failed to create claim", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: claim})
}

// GetClaim handles GET /claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	claim, err := h.services.Claims.GetClaim(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, "Failed to get claim", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: claim})
}

// UploadPhoto handles POST /claims/:id/photos (multipart field "file", optional "ai_analysis")
func (h *Handlers) UploadPhoto(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || (h.maxUploadBytes > 0 && c.Request.ContentLength > h.maxUploadBytes) {
			respondError(c, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return
		}
		respondError(c, http.StatusUnprocessableEntity, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", "error", err, "claim_id", id)
		respondError(c, http.StatusBadRequest, "unreadable file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", "error", err, "claim_id", id)
		respondError(c, http.StatusBadRequest, "unreadable file")
		return
	}

	photo, err := h.services.Claims.UploadPhoto(c.Request.Context(), id, entity.PhotoUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
		AIAnalysis:  strings.TrimSpace(c.PostForm("ai_analysis")),
	})
	if err != nil {
		h.handleServiceError(c, "Failed to upload photo", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: photo})
}

// AdjudicateClaim handles POST /claims/:id/adjudicate
func (h *Handlers) AdjudicateClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable body")
		return
	}

	var req AdjudicateRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(c, http.StatusUnprocessableEntity, "body must be a JSON object")
			return
		}
	}

	result, err := h.services.Adjudication.Adjudicate(c.Request.Context(), id, service.AdjudicationRequest{
		FraudScore: req.FraudScore,
		AIAnalysis: req.AIAnalysis,
	})
	if err != nil {
		h.handleServiceError(c, "Failed to adjudicate claim", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: AdjudicationResponse{
			ClaimID:        result.ClaimID,
			ClaimNumber:    result.ClaimNumber,
			Verdict:        result.Verdict,
			PreviousStatus: result.PreviousStatus,
			ClaimStatus:    result.NewStatus,
			AuditLogID:     result.AuditLogID,
		},
	})
}

// ListAuditLog handles GET /claims/:id/audit-log
func (h *Handlers) ListAuditLog(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	entries, err := h.services.Claims.ListAuditLog(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, "Failed to list audit log", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// GetPolicy handles GET /policies/:policy_number
func (h *Handlers) GetPolicy(c *gin.Context) {
	policy, err := h.services.Policies.GetPolicy(c.Request.Context(), c.Param("policy_number"))
	if err != nil {
		h.handleServiceError(c, "Failed to get policy", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: policy})
}

// claimID validates the :id path parameter, writing a 422 when it is not a UUID
func claimID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid claim id")
		return "", false
	}
	return id.String(), true
}

// handleServiceError maps service errors onto HTTP statuses
func (h *Handlers) handleServiceError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrClaimNotFound):
		respondError(c, http.StatusNotFound, "Claim not found")
	case errors.Is(err, service.ErrPolicyNotFound):
		respondError(c, http.StatusNotFound, "Policy not found")
	case errors.Is(err, service.ErrInvalidClaim), errors.Is(err, service.ErrInvalidPhoto):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case service.IsConflict(err):
		respondError(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error(msg, "error", err, "path", c.Request.URL.Path)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}
