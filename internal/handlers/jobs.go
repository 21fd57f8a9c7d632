package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hirelane/api/internal/ids"
	"hirelane/api/internal/models"
	"hirelane/api/internal/repository"
	"hirelane/api/internal/service"
)

func paging(c *gin.Context) (int, int) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

func jobItem(job models.Job) gin.H {
	return gin.H{
		"id":          job.ID,
		"title":       job.Title,
		"department":  job.Department,
		"location":    job.Location,
		"description": job.Description,
		"status":      job.Status,
		"closesAt":    job.ClosesAt,
		"createdAt":   job.CreatedAt,
	}
}

func (h HandlerSet) ListJobs(c *gin.Context) {
	limit, offset := paging(c)

	jobs, err := h.jobs.ListOpen(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, jobItem(job))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) GetJob(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobItem(job))
}

// Apply takes a multipart form so the resume rides along with the fields.
// Signed-in users apply under their account; guests supply their contact
// details and can claim the application later by registering.
func (h HandlerSet) Apply(c *gin.Context) {
	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resume file required"})
		return
	}
	defer file.Close()

	input := service.ApplyInput{
		JobID:     c.Param("id"),
		Email:     c.PostForm("email"),
		FirstName: c.PostForm("firstName"),
		LastName:  c.PostForm("lastName"),
		CoverNote: c.PostForm("coverNote"),
		File:      file,
		Header:    header,
	}

	if userVal, exists := c.Get("current_user"); exists {
		if user, ok := userVal.(models.User); ok {
			input.User = &user
			input.FirstName = user.FirstName
			input.LastName = user.LastName
		}
	}

	if input.User == nil {
		if input.Email == "" || input.FirstName == "" || input.LastName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, firstName and lastName required"})
			return
		}
	}

	app, err := h.appService.Apply(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        app.ID,
		"jobId":     app.JobID,
		"status":    app.Status,
		"createdAt": app.CreatedAt,
	})
}

func (h HandlerSet) MyApplications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	limit, offset := paging(c)

	apps, err := h.applications.ListByUser(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(apps))
	for _, app := range apps {
		items = append(items, gin.H{
			"id":        app.ID,
			"jobId":     app.JobID,
			"status":    app.Status,
			"createdAt": app.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createJobRequest struct {
	Title       string     `json:"title" binding:"required"`
	Department  string     `json:"department" binding:"required"`
	Location    string     `json:"location" binding:"required"`
	Description string     `json:"description" binding:"required"`
	ClosesAt    *time.Time `json:"closesAt"`
}

func (h HandlerSet) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := models.Job{
		ID:          ids.New(),
		Title:       req.Title,
		Department:  req.Department,
		Location:    req.Location,
		Description: req.Description,
		Status:      models.JobStatusOpen,
		ClosesAt:    req.ClosesAt,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, jobItem(job))
}

type updateJobStatusRequest struct {
	Status models.JobStatus `json:"status" binding:"required,oneof=open closed"`
}

func (h HandlerSet) UpdateJobStatus(c *gin.Context) {
	var req updateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.jobs.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
