package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hirelane/api/internal/repository"
)

type inviteRequest struct {
	Email           string  `json:"email" binding:"required,email"`
	Role            string  `json:"role" binding:"required"`
	PermissionLevel *string `json:"permissionLevel"`
}

func (h HandlerSet) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.Invite(c.Request.Context(), actor, req.Email, req.Role, req.PermissionLevel); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "invitation sent"})
}

type resendInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ResendInvite(c *gin.Context) {
	var req resendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.ResendInvite(c.Request.Context(), actor, req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "invitation re-sent"})
}

func (h HandlerSet) AdminListApplications(c *gin.Context) {
	limit, offset := paging(c)

	apps, err := h.applications.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(apps))
	for _, app := range apps {
		items = append(items, gin.H{
			"id":        app.ID,
			"jobId":     app.JobID,
			"userId":    app.UserID,
			"email":     app.Email,
			"firstName": app.FirstName,
			"lastName":  app.LastName,
			"coverNote": app.CoverNote,
			"status":    app.Status,
			"createdAt": app.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) AdminResumeURL(c *gin.Context) {
	app, err := h.applications.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	url, err := h.store.ResumeURL(c.Request.Context(), app.ResumeKey, 15*time.Minute)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
