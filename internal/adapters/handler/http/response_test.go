package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrPollNotFound, http.StatusNotFound},
		{domain.ErrDidNotVote, http.StatusNotFound},
		{domain.ErrInvalidOption, http.StatusBadRequest},
		{domain.ErrAlreadyVoted, http.StatusConflict},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrNotPollOwner, http.StatusForbidden},
		{domain.ErrCreatorRequired, http.StatusUnprocessableEntity},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{errInvalidID, http.StatusBadRequest},
		{fmt.Errorf("failed to get poll: %w", domain.ErrPollNotFound), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}
