package handler

import (
	"net/http"

	"pollstream/internal/domain/user"
	"pollstream/internal/repository"
	"pollstream/internal/services"
	"pollstream/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// PollHandler handles the poll, vote and like HTTP endpoints.
type PollHandler struct {
	polls *services.PollService
	votes *services.VoteService
	likes *services.LikeService
}

// NewPollHandler creates a poll handler.
func NewPollHandler(polls *services.PollService, votes *services.VoteService, likes *services.LikeService) *PollHandler {
	return &PollHandler{polls: polls, votes: votes, likes: likes}
}

// List returns every active poll with its live summary.
func (h *PollHandler) List(c *gin.Context) {
	views, err := h.polls.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(views))
}

// Get returns one active poll.
func (h *PollHandler) Get(c *gin.Context) {
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	view, err := h.polls.Get(c.Request.Context(), pollUUID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

// Create creates a poll with its initial options.
func (h *PollHandler) Create(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req httpdto.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	view, err := h.polls.Create(c.Request.Context(), actor, services.CreatePollInput{
		Title:   req.Title,
		Options: req.Options,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(view))
}

// Update applies a batch of title and option-text edits.
func (h *PollHandler) Update(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	var req httpdto.UpdatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	patches := lo.Map(req.Options, func(p httpdto.OptionPatch, _ int) services.EditOptionPatch {
		return services.EditOptionPatch{
			UUID:    uuid.MustParse(p.UUID),
			Version: p.Version,
			Text:    p.Text,
		}
	})

	view, err := h.polls.Edit(c.Request.Context(), actor, pollUUID, services.EditPollInput{
		Version: req.Version,
		Title:   req.Title,
		Options: patches,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

// Delete soft-deletes a poll.
func (h *PollHandler) Delete(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	if err := h.polls.Delete(c.Request.Context(), actor, pollUUID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": true}))
}

// AddOptions appends options to a poll.
func (h *PollHandler) AddOptions(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	var req httpdto.AddOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	view, err := h.polls.AddOptions(c.Request.Context(), actor, pollUUID, services.AddOptionsInput{
		Version: req.Version,
		Options: req.Options,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

// DeleteOptions soft-deletes a batch of options.
func (h *PollHandler) DeleteOptions(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	var req httpdto.DeleteOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	ids := lo.Map(req.OptionUUIDs, func(s string, _ int) uuid.UUID {
		return uuid.MustParse(s)
	})

	view, err := h.polls.DeleteOptions(c.Request.Context(), actor, pollUUID, services.DeleteOptionsInput{
		Version:     req.Version,
		OptionUUIDs: ids,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

// Vote records or replaces the caller's vote on a poll.
func (h *PollHandler) Vote(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	var req httpdto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	view, err := h.votes.CastVote(c.Request.Context(), actor, pollUUID, uuid.MustParse(req.OptionUUID))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(view))
}

// Like toggles the caller's like on a poll.
func (h *PollHandler) Like(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	pollUUID, ok := pathUUID(c)
	if !ok {
		return
	}

	result, err := h.likes.Toggle(c.Request.Context(), actor, pollUUID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(result))
}

// MyVotes returns the caller's voting history.
func (h *PollHandler) MyVotes(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.votes.MyVotes(c.Request.Context(), actor)
	if err != nil {
		c.Error(err)
		return
	}

	res := lo.Map(rows, func(v repository.UserVote, _ int) httpdto.UserVoteResponse {
		return httpdto.UserVoteResponse{
			PollUUID:   v.PollUUID.String(),
			OptionUUID: v.OptionUUID.String(),
		}
	})
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

// MyLikes returns the UUIDs of polls the caller currently likes.
func (h *PollHandler) MyLikes(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	ids, err := h.likes.MyLikes(c.Request.Context(), actor)
	if err != nil {
		c.Error(err)
		return
	}

	res := lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() })
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

func currentUser(c *gin.Context) (user.User, bool) {
	u, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return user.User{}, false
	}
	return u, true
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return uuid.Nil, false
	}
	return id, true
}
