package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/middleware"
	"github.com/openlearn/lms-api/internal/model"
	"github.com/openlearn/lms-api/internal/service/notification"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
	"github.com/openlearn/lms-api/pkg/httputil"
)

type Handler struct {
	service notification.Service
}

func NewHandler(service notification.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the recipient-scoped endpoints. The calling
// user is always the recipient; other users' records are unreachable.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.GetUnreadCount)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

// RegisterAdminRoutes mounts creation, broadcast and deletion.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.POST("", h.CreateNotification)
		notifications.POST("/advanced", h.CreateAdvancedNotification)
		notifications.POST("/broadcast", h.Broadcast)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

func (h *Handler) CreateNotification(c *gin.Context) {
	var req model.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	n, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, n)
}

func (h *Handler) CreateAdvancedNotification(c *gin.Context) {
	var req model.AdvancedNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	n, err := h.service.CreateAdvanced(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, n)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	recipientID, err := middleware.UserID(c)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewUnauthorized(err))
		return
	}

	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid pagination parameters", err))
		return
	}

	page, err := h.service.List(c.Request.Context(), recipientID, p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) GetUnreadCount(c *gin.Context) {
	recipientID, err := middleware.UserID(c)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewUnauthorized(err))
		return
	}

	count, err := h.service.CountUnread(c.Request.Context(), recipientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"unread_count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	recipientID, err := middleware.UserID(c)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewUnauthorized(err))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid notification id", err))
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), id, recipientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, n)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	recipientID, err := middleware.UserID(c)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewUnauthorized(err))
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), recipientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"updated_count": updated})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid notification id", err))
		return
	}

	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) Broadcast(c *gin.Context) {
	var req model.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	result, err := h.service.Broadcast(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, result)
}
