package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dueboard/backend/internal/collab"
	"dueboard/backend/internal/deadline"
	"dueboard/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// DeadlineInput defines the writable deadline fields.
type DeadlineInput struct {
	Title                string    `json:"title" binding:"required" example:"Algorithms assignment 3"`
	Description          string    `json:"description"`
	Subject              string    `json:"subject" example:"CS301"`
	Category             string    `json:"category" example:"assignment"`
	Priority             string    `json:"priority" example:"high"`
	Status               string    `json:"status" example:"pending"`
	DueDate              time.Time `json:"due_date" binding:"required"`
	EstimatedHours       float64   `json:"estimated_hours"`
	ActualHours          float64   `json:"actual_hours"`
	CompletionPercentage int       `json:"completion_percentage"`
	Notes                string    `json:"notes"`
}

// StatusInput carries a status-only update.
type StatusInput struct {
	Status string `json:"status" binding:"required" example:"completed"`
}

// CopyOptionsInput tunes copy creation when adding collaborators. Absent
// booleans default to true.
type CopyOptionsInput struct {
	TitleSuffix            string `json:"title_suffix"`
	CreateIndividualCopies *bool  `json:"create_individual_copies"`
	NotifyCollaborators    *bool  `json:"notify_collaborators"`
}

// AddCollaboratorsInput defines the collaborator fan-out request.
type AddCollaboratorsInput struct {
	Collaborators []uint           `json:"collaborators" binding:"required,min=1"`
	CreateCopies  *bool            `json:"create_copies"`
	CopyOptions   CopyOptionsInput `json:"copy_options"`
}

// CollaboratorResponse describes one attached collaborator.
type CollaboratorResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

// DeadlineResponse defines the API shape of a deadline.
type DeadlineResponse struct {
	ID                   uint                   `json:"id"`
	OwnerID              uint                   `json:"owner_id"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description,omitempty"`
	Subject              string                 `json:"subject,omitempty"`
	Category             string                 `json:"category,omitempty"`
	Priority             models.DeadlinePriority `json:"priority"`
	Status               models.DeadlineStatus   `json:"status"`
	DueDate              time.Time              `json:"due_date"`
	EstimatedHours       float64                `json:"estimated_hours"`
	ActualHours          float64                `json:"actual_hours"`
	CompletionPercentage int                    `json:"completion_percentage"`
	Notes                string                 `json:"notes,omitempty"`
	OriginDeadlineID     *uint                  `json:"origin_deadline_id,omitempty"`
	Collaborators        []CollaboratorResponse `json:"collaborators,omitempty"`
}

func newDeadlineResponse(d models.Deadline) DeadlineResponse {
	resp := DeadlineResponse{
		ID:                   d.ID,
		OwnerID:              d.OwnerID,
		Title:                d.Title,
		Description:          d.Description,
		Subject:              d.Subject,
		Category:             d.Category,
		Priority:             d.Priority,
		Status:               d.Status,
		DueDate:              d.DueDate,
		EstimatedHours:       d.EstimatedHours,
		ActualHours:          d.ActualHours,
		CompletionPercentage: d.CompletionPercentage,
		Notes:                d.Notes,
		OriginDeadlineID:     d.OriginDeadlineID,
	}
	for _, attachment := range d.Collaborators {
		resp.Collaborators = append(resp.Collaborators, CollaboratorResponse{
			UserID:   attachment.UserID,
			Username: attachment.User.Username,
			FullName: attachment.User.FullName,
			Role:     attachment.Role,
		})
	}
	return resp
}

func newDeadlineResponses(deadlines []models.Deadline) []DeadlineResponse {
	responses := make([]DeadlineResponse, 0, len(deadlines))
	for _, d := range deadlines {
		responses = append(responses, newDeadlineResponse(d))
	}
	return responses
}

func (in DeadlineInput) toCreateInput() deadline.CreateInput {
	return deadline.CreateInput{
		Title:                in.Title,
		Description:          in.Description,
		Subject:              in.Subject,
		Category:             in.Category,
		Priority:             models.DeadlinePriority(in.Priority),
		Status:               models.DeadlineStatus(in.Status),
		DueDate:              in.DueDate,
		EstimatedHours:       in.EstimatedHours,
		ActualHours:          in.ActualHours,
		CompletionPercentage: in.CompletionPercentage,
		Notes:                in.Notes,
	}
}

// endregion

// DeadlineHandler serves the deadlines API.
type DeadlineHandler struct {
	service *deadline.Service
	collab  *collab.Engine
}

// NewDeadlineHandler creates a deadline handler.
func NewDeadlineHandler(service *deadline.Service, collabEngine *collab.Engine) *DeadlineHandler {
	return &DeadlineHandler{service: service, collab: collabEngine}
}

// CreateDeadline godoc
// @Summary      Create a deadline
// @Description  Creates a new deadline owned by the authenticated user.
// @Tags         deadlines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body DeadlineInput true "Deadline"
// @Success      201  {object}  DeadlineResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /deadlines [post]
func (h *DeadlineHandler) CreateDeadline(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input DeadlineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.Create(c.Request.Context(), viewerID.(uint), input.toCreateInput())
	if err != nil {
		deadlineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDeadlineResponse(*d))
}

// GetDeadlines godoc
// @Summary      List deadlines
// @Description  Lists deadlines the user owns or collaborates on, with filters and pagination.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "Filter by status"
// @Param        priority query string false "Filter by priority"
// @Param        page     query int    false "Page number" default(1)
// @Param        limit    query int    false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[DeadlineResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /deadlines [get]
func (h *DeadlineHandler) GetDeadlines(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := deadline.ListFilter{
		Status:   models.DeadlineStatus(c.Query("status")),
		Priority: models.DeadlinePriority(c.Query("priority")),
		Page:     page,
		Limit:    limit,
	}

	deadlines, total, err := h.service.List(c.Request.Context(), viewerID.(uint), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deadlines"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newDeadlineResponses(deadlines), total, page, limit))
}

// GetDeadlineByID godoc
// @Summary      Get a deadline
// @Description  Returns a deadline visible to the user, with its collaborators.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Deadline ID"
// @Success      200 {object} DeadlineResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /deadlines/{id} [get]
func (h *DeadlineHandler) GetDeadlineByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline ID"})
		return
	}

	d, err := h.service.Get(c.Request.Context(), viewerID.(uint), uint(id))
	if err != nil {
		deadlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeadlineResponse(*d))
}

// UpdateDeadline godoc
// @Summary      Update a deadline
// @Description  Replaces the writable fields of a deadline. Owner only.
// @Tags         deadlines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int           true "Deadline ID"
// @Param        input body DeadlineInput true "Deadline"
// @Success      200 {object} DeadlineResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /deadlines/{id} [put]
func (h *DeadlineHandler) UpdateDeadline(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline ID"})
		return
	}

	var input DeadlineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.Update(c.Request.Context(), viewerID.(uint), uint(id), input.toCreateInput())
	if err != nil {
		deadlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeadlineResponse(*d))
}

// UpdateDeadlineStatus godoc
// @Summary      Update deadline status
// @Description  Changes only the lifecycle status of a deadline. Owner only.
// @Tags         deadlines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int         true "Deadline ID"
// @Param        input body StatusInput true "New status"
// @Success      200 {object} DeadlineResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /deadlines/{id}/status [patch]
func (h *DeadlineHandler) UpdateDeadlineStatus(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline ID"})
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.service.UpdateStatus(c.Request.Context(), viewerID.(uint), uint(id), models.DeadlineStatus(input.Status))
	if err != nil {
		deadlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDeadlineResponse(*d))
}

// DeleteDeadline godoc
// @Summary      Delete a deadline
// @Description  Deletes a deadline and its collaborator attachments. Owner only. Copies created for collaborators are independent and stay.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Deadline ID"
// @Success      200 {object} map[string]string "{"message": "Deadline deleted"}"
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /deadlines/{id} [delete]
func (h *DeadlineHandler) DeleteDeadline(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), viewerID.(uint), uint(id)); err != nil {
		deadlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deadline deleted"})
}

// GetUpcomingDeadlines godoc
// @Summary      Upcoming deadlines
// @Description  Lists the user's unfinished deadlines due within the given number of days.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Param        days query int false "Days ahead" default(7)
// @Success      200 {array} DeadlineResponse
// @Failure      401 {object} ErrorResponse
// @Router       /deadlines/upcoming [get]
func (h *DeadlineHandler) GetUpcomingDeadlines(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	deadlines, err := h.service.Upcoming(c.Request.Context(), viewerID.(uint), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch upcoming deadlines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deadlines": newDeadlineResponses(deadlines)})
}

// GetOverdueDeadlines godoc
// @Summary      Overdue deadlines
// @Description  Lists the user's past-due, unfinished deadlines.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} DeadlineResponse
// @Failure      401 {object} ErrorResponse
// @Router       /deadlines/overdue [get]
func (h *DeadlineHandler) GetOverdueDeadlines(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	deadlines, err := h.service.Overdue(c.Request.Context(), viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch overdue deadlines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deadlines": newDeadlineResponses(deadlines)})
}

// GetDeadlineStats godoc
// @Summary      Deadline statistics
// @Description  Returns the user's deadline counts by status.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} deadline.Stats
// @Failure      401 {object} ErrorResponse
// @Router       /deadlines/stats [get]
func (h *DeadlineHandler) GetDeadlineStats(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	stats, err := h.service.Stats(c.Request.Context(), viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deadline statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// AddCollaborators godoc
// @Summary      Add collaborators
// @Description  Attaches friends as collaborators to a deadline, optionally materializing an independent copy per invitee. Invitees are processed independently; skipped invitees are reported with a reason code rather than failing the call.
// @Tags         deadlines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                   true "Deadline ID"
// @Param        input body AddCollaboratorsInput true "Invitees and options"
// @Success      200 {object} collab.Outcome
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Only the owner may add collaborators"
// @Failure      404 {object} ErrorResponse
// @Router       /deadlines/{id}/collaborators [post]
func (h *DeadlineHandler) AddCollaborators(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline ID"})
		return
	}

	var input AddCollaboratorsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := collab.DefaultOptions()
	if input.CreateCopies != nil {
		opts.CreateCopies = *input.CreateCopies
	}
	if input.CopyOptions.CreateIndividualCopies != nil {
		opts.IndividualCopies = *input.CopyOptions.CreateIndividualCopies
	}
	if input.CopyOptions.NotifyCollaborators != nil {
		opts.NotifyCollaborators = *input.CopyOptions.NotifyCollaborators
	}
	if input.CopyOptions.TitleSuffix != "" {
		opts.TitleSuffix = input.CopyOptions.TitleSuffix
	}

	outcome, err := h.collab.AddCollaborators(c.Request.Context(), uint(id), viewerID.(uint), input.Collaborators, opts)
	if err != nil {
		deadlineError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// RemoveCollaborator godoc
// @Summary      Remove a collaborator
// @Description  Revokes a user's collaborator role on a deadline. Owner only. The collaborator's copy, if any, stays with them.
// @Tags         deadlines
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Deadline ID"
// @Param        userID path int true "Collaborator User ID"
// @Success      200 {object} map[string]string "{"message": "Collaborator removed"}"
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /deadlines/{id}/collaborators/{userID} [delete]
func (h *DeadlineHandler) RemoveCollaborator(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline ID"})
		return
	}
	collaboratorID, err := strconv.ParseUint(c.Param("userID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	removed, err := h.collab.RemoveCollaborator(c.Request.Context(), uint(id), viewerID.(uint), uint(collaboratorID))
	if err != nil {
		deadlineError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collaborator not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collaborator removed"})
}

// deadlineError maps deadline and collaboration errors to HTTP statuses.
func deadlineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, deadline.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, deadline.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, deadline.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process deadline request"})
	}
}
