package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"dueboard/backend/internal/database"
	"dueboard/backend/internal/models"
	"dueboard/backend/internal/notify"
	"dueboard/backend/internal/relationship"

	"github.com/gin-gonic/gin"
)

// FriendInput identifies the other user of a relationship action.
type FriendInput struct {
	FriendID uint `json:"friend_id" binding:"required" example:"2"`
}

// RelationshipResponse reports the pair's status after a transition.
type RelationshipResponse struct {
	FriendID uint                       `json:"friend_id" example:"2"`
	Status   models.RelationshipStatus `json:"status" example:"pending"`
}

// FriendHandler serves the friends API on top of the relationship engine.
type FriendHandler struct {
	engine *relationship.Engine
	queue  notify.Enqueuer
}

// NewFriendHandler creates a friend handler.
func NewFriendHandler(engine *relationship.Engine, queue notify.Enqueuer) *FriendHandler {
	return &FriendHandler{engine: engine, queue: queue}
}

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FriendInput true "Target user"
// @Success      201  {object}  RelationshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Already pending, already friends, or blocked"
// @Router       /friends/request [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input FriendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.engine.SendRequest(c.Request.Context(), viewerID.(uint), input.FriendID)
	if err != nil {
		relationshipError(c, err)
		return
	}

	h.queue.Enqueue(notify.NewIntent(models.NotificationFriendRequest, input.FriendID, viewerID.(uint)))
	c.JSON(http.StatusCreated, RelationshipResponse{FriendID: input.FriendID, Status: status})
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request. Only the recipient may accept.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FriendInput true "Requesting user"
// @Success      200  {object}  RelationshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Initiator cannot accept their own request"
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /friends/accept [put]
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input FriendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.engine.Accept(c.Request.Context(), viewerID.(uint), input.FriendID)
	if err != nil {
		relationshipError(c, err)
		return
	}

	h.queue.Enqueue(notify.NewIntent(models.NotificationFriendAccepted, input.FriendID, viewerID.(uint)))
	c.JSON(http.StatusOK, RelationshipResponse{FriendID: input.FriendID, Status: status})
}

// DeclineRequest godoc
// @Summary      Decline friend request
// @Description  Declines a pending friend request. The requester may resend later.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FriendInput true "Requesting user"
// @Success      200  {object}  RelationshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /friends/decline [put]
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input FriendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.engine.Decline(c.Request.Context(), viewerID.(uint), input.FriendID)
	if err != nil {
		relationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, RelationshipResponse{FriendID: input.FriendID, Status: status})
}

// RemoveFriend godoc
// @Summary      Remove friend
// @Description  Removes a friend, or cancels a sent request. Shared collaborator roles between the pair are revoked; copies already created stay with their owners.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend User ID"
// @Success      200  {object}  RelationshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Relationship not found"
// @Router       /friends/{id} [delete]
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	friendID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend ID"})
		return
	}

	status, err := h.engine.Remove(c.Request.Context(), viewerID.(uint), uint(friendID))
	if err != nil {
		relationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, RelationshipResponse{FriendID: uint(friendID), Status: status})
}

// BlockUser godoc
// @Summary      Block user
// @Description  Blocks another user, overwriting any prior relationship. Shared collaborator roles between the pair are revoked.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FriendInput true "User to block"
// @Success      200  {object}  RelationshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Already blocked by the other user"
// @Router       /friends/block [post]
func (h *FriendHandler) BlockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input FriendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.engine.Block(c.Request.Context(), viewerID.(uint), input.FriendID)
	if err != nil {
		relationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, RelationshipResponse{FriendID: input.FriendID, Status: status})
}

// UnblockUser godoc
// @Summary      Unblock user
// @Description  Removes a block. Only the user who placed the block may remove it.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body FriendInput true "User to unblock"
// @Success      200  {object}  RelationshipResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Only the blocker may unblock"
// @Failure      404  {object}  ErrorResponse "No block found"
// @Router       /friends/unblock [post]
func (h *FriendHandler) UnblockUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input FriendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.engine.Unblock(c.Request.Context(), viewerID.(uint), input.FriendID)
	if err != nil {
		relationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, RelationshipResponse{FriendID: input.FriendID, Status: status})
}

// GetFriends godoc
// @Summary      List friends
// @Description  Lists the authenticated user's accepted friends.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends [get]
func (h *FriendHandler) GetFriends(c *gin.Context) {
	h.list(c, h.engine.ListFriends)
}

// GetPendingRequests godoc
// @Summary      List pending requests
// @Description  Lists incoming friend requests awaiting the user's response.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/pending [get]
func (h *FriendHandler) GetPendingRequests(c *gin.Context) {
	h.list(c, h.engine.ListPending)
}

// GetSentRequests godoc
// @Summary      List sent requests
// @Description  Lists outgoing friend requests the user has sent.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/sent [get]
func (h *FriendHandler) GetSentRequests(c *gin.Context) {
	h.list(c, h.engine.ListSent)
}

// GetBlockedUsers godoc
// @Summary      List blocked users
// @Description  Lists users the authenticated user has blocked.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/blocked [get]
func (h *FriendHandler) GetBlockedUsers(c *gin.Context) {
	h.list(c, h.engine.ListBlocked)
}

// GetStats godoc
// @Summary      Friend statistics
// @Description  Returns the user's friend, pending, sent, and blocked counts.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  relationship.Stats
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/stats [get]
func (h *FriendHandler) GetStats(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	stats, err := h.engine.Stats(c.Request.Context(), viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches users by username or full name to add as friends, with pagination.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        search query     string  false  "Search query"
// @Param        page   query     int     false  "Page number" default(1)
// @Param        limit  query     int     false  "Items per page" default(10)
// @Success      200    {object}  PaginatedResponse[UserResponse]
// @Failure      401    {object}  ErrorResponse
// @Router       /friends/search [get]
func (h *FriendHandler) SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	searchQuery := c.Query("search")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	// Users with a block in either direction never show up in search.
	blocked := database.DB.Model(&models.Relationship{}).
		Select("CASE WHEN user_a_id = ? THEN user_b_id ELSE user_a_id END", viewerID).
		Where("status = ? AND (user_a_id = ? OR user_b_id = ?)",
			models.RelationshipBlocked, viewerID, viewerID)

	query := database.DB.Model(&models.User{}).
		Where("id <> ?", viewerID).
		Where("id NOT IN (?)", blocked)
	if searchQuery != "" {
		query = query.Where("username ILIKE ? OR full_name ILIKE ?", "%"+searchQuery+"%", "%"+searchQuery+"%")
	}

	result, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newUserResponses(result.Data), result.Meta.TotalItems, page, limit))
}

func (h *FriendHandler) list(c *gin.Context, fetch func(context.Context, uint) ([]models.User, error)) {
	viewerID, _ := c.Get("userID")

	users, err := fetch(c.Request.Context(), viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch relations"})
		return
	}

	responses := newUserResponses(users)
	c.JSON(http.StatusOK, gin.H{"users": responses, "count": len(responses)})
}

// relationshipError maps engine errors to HTTP statuses.
func relationshipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, relationship.ErrSelfRelationship):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, relationship.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, relationship.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, relationship.ErrAlreadyPending),
		errors.Is(err, relationship.ErrAlreadyFriends),
		errors.Is(err, relationship.ErrBlocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update relationship"})
	}
}
