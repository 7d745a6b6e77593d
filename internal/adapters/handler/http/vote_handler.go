package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

type VoteHandler struct {
	service ports.VoteService
	l       *zap.Logger
}

func NewVoteHandler(service ports.VoteService, l *zap.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		l:       l,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// VoteOnPoll casts a vote. Callers without a token vote anonymously.
func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.l, err)
		return
	}

	input := ports.VoteInput{
		PollID:   pollID,
		OptionID: req.OptionID,
	}
	if userID, ok := CallerID(r.Context()); ok {
		input.VoterID = &userID
	}

	vote, err := h.service.Cast(r.Context(), input)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

// ChangeVote moves the caller's vote in the poll to another option.
func (h *VoteHandler) ChangeVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.l, err)
		return
	}

	vote, err := h.service.ChangeVote(r.Context(), pollID, userID, req.OptionID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

// Unvote removes the caller's vote in the poll.
func (h *VoteHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	vote, err := h.service.GetVoterVote(r.Context(), pollID, userID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	if err := h.service.Remove(r.Context(), vote.ID); err != nil {
		writeError(w, r, h.l, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VoteHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	vote, err := h.service.GetVoterVote(r.Context(), pollID, userID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

func (h *VoteHandler) ListPollVotes(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	votes, err := h.service.ListPollVotes(r.Context(), pollID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) ListOptionVotes(w http.ResponseWriter, r *http.Request) {
	optionID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	votes, err := h.service.ListOptionVotes(r.Context(), optionID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.service.ListVotes(r.Context())
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}

func (h *VoteHandler) GetVote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	vote, err := h.service.GetVote(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

// DeleteVote removes a vote by id. Anonymous votes can be removed by anyone
// holding the id; a user's vote only by that user.
func (h *VoteHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	vote, err := h.service.GetVote(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	if !vote.IsAnonymous() {
		if caller, ok := CallerID(r.Context()); !ok || caller != *vote.VoterID {
			writeError(w, r, h.l, domain.ErrNotVoteOwner)
			return
		}
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		writeError(w, r, h.l, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
