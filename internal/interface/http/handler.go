package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/adventure-ai/internal/domain/adventure"
	"github.com/yanqian/adventure-ai/internal/domain/similarity"
	"github.com/yanqian/adventure-ai/internal/infra/config"
	apperrors "github.com/yanqian/adventure-ai/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	adventureSvc  adventure.Service
	similaritySvc similarity.Service
	version       string
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, adventureSvc adventure.Service, similaritySvc similarity.Service, logger *slog.Logger) *Handler {
	return &Handler{
		adventureSvc:  adventureSvc,
		similaritySvc: similaritySvc,
		version:       cfg.App.Version,
		logger:        logger.With("component", "http.handler"),
	}
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health reports liveness. It never consults the LLM provider.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Generate turns a free-text request into a structured adventure.
func (h *Handler) Generate(c *gin.Context) {
	var req adventure.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidRequest, errMessage(err), err))
		return
	}

	adv, err := h.adventureSvc.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, adv)
}

type searchSimilarPayload struct {
	AdventureID *int64 `json:"adventure_id"`
}

// SearchSimilar lists catalog neighbors of an adventure.
func (h *Handler) SearchSimilar(c *gin.Context) {
	var payload searchSimilarPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidRequest, errMessage(err), err))
		return
	}
	if payload.AdventureID == nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidRequest, "adventure_id is required", nil))
		return
	}

	resp, err := h.similaritySvc.FindSimilar(c.Request.Context(), *payload.AdventureID)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAdventure returns one catalog entry or ADVENTURE_NOT_FOUND.
func (h *Handler) GetAdventure(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidRequest, "adventure id must be an integer", err))
		return
	}

	record, err := h.similaritySvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, record)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
