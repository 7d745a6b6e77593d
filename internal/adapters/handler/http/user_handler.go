package http

import (
	"net/http"

	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
	"go.uber.org/zap"
)

type UserHandler struct {
	service     ports.UserService
	voteService ports.VoteService
	l           *zap.Logger
}

func NewUserHandler(service ports.UserService, voteService ports.VoteService, l *zap.Logger) *UserHandler {
	return &UserHandler{
		service:     service,
		voteService: voteService,
		l:           l,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, r, h.l, domain.ErrUnauthorized)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes the caller's own account along with their polls and votes.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	if caller, _ := CallerID(r.Context()); caller != id {
		writeError(w, r, h.l, domain.ErrNotAccountOwner)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, h.l, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListUserPolls(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	polls, err := h.service.ListUserPolls(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *UserHandler) ListUserVotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}

	votes, err := h.voteService.ListUserVotes(r.Context(), id)
	if err != nil {
		writeError(w, r, h.l, err)
		return
	}
	writeJSON(w, http.StatusOK, votes)
}
