package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskrouter/internal/session"
)

type SessionHandler interface {
	Resolve(c *gin.Context)
}

type sessionHandler struct {
	resolver *session.Resolver
	logger   *zap.Logger
}

func NewSessionHandler(resolver *session.Resolver, logger *zap.Logger) SessionHandler {
	return &sessionHandler{resolver: resolver, logger: logger}
}

type resolveSessionRequest struct {
	ThreadKind string `json:"thread_kind" binding:"required"`
	ThreadKey  string `json:"thread_key" binding:"required"`
}

// Resolve handles POST /api/sessions/resolve. The session owner is the
// authenticated caller; the thread triple comes from the request body.
func (h *sessionHandler) Resolve(c *gin.Context) {
	callerID := c.MustGet("username").(string)

	var req resolveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, state, err := h.resolver.GetOrCreate(c.Request.Context(), callerID, req.ThreadKind, req.ThreadKey)
	if err != nil {
		h.logger.Error("Failed to resolve session",
			zap.String("caller_id", callerID),
			zap.String("thread_kind", req.ThreadKind),
			zap.String("thread_key", req.ThreadKey),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess, "state": state})
}
