package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

type PollHandler struct {
	service       ports.PollService
	resultService ports.ResultService
	l             *zap.Logger
}

func NewPollHandler(service ports.PollService, resultService ports.ResultService, l *zap.Logger) *PollHandler {
	return &PollHandler{
		service:       service,
		resultService: resultService,
		l:             l,
	}
}

type createPollRequest struct {
	Question   string     `json:"question"`
	ValidUntil *time.Time `json:"valid_until"`
	IsPublic   *bool      `json:"is_public"`
	Options    []string   `json:"options"`
}

type visibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

type optionRequest struct {
	Caption string `json:"caption"`
}

// CreatePoll creates a poll owned by the authenticated caller.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	var req createPollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.l, err)
		return
	}

	poll, err := h.service.Create(r.Context(), ports.CreatePollInput{
		Question:   req.Question,
		CreatedBy:  userID,
		ValidUntil: req.ValidUntil,
		IsPublic:   req.IsPublic,
		Options:    req.Options,
	})
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListPolls(r.Context())
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) ListPublicPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListPublicPolls(r.Context())
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

// ListPrivatePolls lists the caller's non-public polls.
func (h *PollHandler) ListPrivatePolls(w http.ResponseWriter, r *http.Request) {
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	polls, err := h.service.ListPrivatePolls(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	poll, err := h.service.GetPoll(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	var req visibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.l, err)
		return
	}

	poll, err := h.service.UpdateVisibility(r.Context(), id, req.IsPublic, userID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := h.ownedPoll(r)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	if err := h.service.DeletePoll(r.Context(), id); err != nil {
		writeError(w, r, h.l, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	id, err := h.ownedPoll(r)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	var req optionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.l, err)
		return
	}

	opt, err := h.service.AddOption(r.Context(), id, req.Caption)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusCreated, opt)
}

func (h *PollHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	options, err := h.service.ListOptions(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (h *PollHandler) GetOption(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	optionID, err := pathID(r, "optionId")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	opt, err := h.service.GetOption(r.Context(), pollID, optionID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, opt)
}

func (h *PollHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	pollID, err := h.ownedPoll(r)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	optionID, err := pathID(r, "optionId")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	if err := h.service.DeleteOption(r.Context(), pollID, optionID); err != nil {
		writeError(w, r, h.l, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	results, err := h.resultService.Results(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *PollHandler) ClearPollCache(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	h.service.ClearPollCache(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *PollHandler) ClearGlobalCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearGlobalCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ownedPoll returns the poll id of the route after checking the caller
// created it.
func (h *PollHandler) ownedPoll(r *http.Request) (uuid.UUID, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return uuid.Nil, err
	}
	userID, ok := CallerID(r.Context())
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if err := h.checkOwner(r.Context(), id, userID); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (h *PollHandler) checkOwner(ctx context.Context, pollID, userID uuid.UUID) error {
	poll, err := h.service.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.CreatedBy != userID {
		return domain.ErrNotPollOwner
	}
	return nil
}
