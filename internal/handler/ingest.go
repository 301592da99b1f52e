package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskrouter/internal/models"
	"taskrouter/internal/pipeline"
)

type IngestHandler interface {
	IngestMessage(c *gin.Context)
}

type ingestHandler struct {
	processor *pipeline.Processor
	logger    *zap.Logger
}

func NewIngestHandler(processor *pipeline.Processor, logger *zap.Logger) IngestHandler {
	return &ingestHandler{processor: processor, logger: logger}
}

type ingestRequest struct {
	SenderID   string     `json:"sender_id" binding:"required"`
	RawText    string     `json:"raw_text" binding:"required"`
	ChannelID  string     `json:"channel_id" binding:"required"`
	ReceivedAt *time.Time `json:"received_at"`
}

// IngestMessage handles POST /api/messages: the transport collaborator's
// entry point into the pipeline. A message that is not a work request is a
// successful call with no task.
func (h *ingestHandler) IngestMessage(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	task, err := h.processor.Process(c.Request.Context(), models.InboundMessage{
		SenderID:   req.SenderID,
		RawText:    req.RawText,
		ChannelID:  req.ChannelID,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		h.logger.Error("Failed to process message", zap.String("sender_id", req.SenderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Message processed, task not created"})
		return
	}

	if task == nil {
		c.JSON(http.StatusOK, gin.H{"task": nil, "work_request": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task, "work_request": true})
}
