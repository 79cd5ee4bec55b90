package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context) (*models.SessionToken, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type auditSubmitter interface {
	Submit(ctx context.Context, sessionID string) (*dto.AuditStatusView, error)
}

// SessionHandler exposes session lifecycle and audit endpoints.
type SessionHandler struct {
	sessions sessionService
	audits   auditSubmitter
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions sessionService, audits auditSubmitter) *SessionHandler {
	return &SessionHandler{sessions: sessions, audits: audits}
}

// Create godoc
// @Summary Open an editing session
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	token, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, token)
}

// Get godoc
// @Summary Session snapshot
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewSessionView(session))
}

// Delete godoc
// @Summary Discard a session
// @Tags Sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Audit godoc
// @Summary Submit the transcript for auditing
// @Description Runs in the background; poll the session for audit_status.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/audit [post]
func (h *SessionHandler) Audit(c *gin.Context) {
	status, err := h.audits.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, status)
}
