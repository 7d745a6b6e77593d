package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidRelationship = errors.New("invalid relationship")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
)

var (
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrPollNotFound   = fmt.Errorf("poll %w", ErrNotFound)
	ErrOptionNotFound = fmt.Errorf("vote option %w", ErrNotFound)
	ErrVoteNotFound   = fmt.Errorf("vote %w", ErrNotFound)
	ErrDidNotVote     = fmt.Errorf("user did not vote on this poll: %w", ErrNotFound)

	ErrInvalidOption = fmt.Errorf("option does not belong to this poll: %w", ErrInvalidRelationship)

	ErrAlreadyVoted = fmt.Errorf("user has already voted: %w", ErrConflict)
	ErrUserExists   = fmt.Errorf("username or email already taken: %w", ErrConflict)

	ErrNotPollOwner    = fmt.Errorf("only the poll creator can change it: %w", ErrForbidden)
	ErrNotVoteOwner    = fmt.Errorf("vote belongs to another user: %w", ErrForbidden)
	ErrNotAccountOwner = fmt.Errorf("users can only delete their own account: %w", ErrForbidden)

	ErrCreatorRequired  = fmt.Errorf("poll creator must be an existing user: %w", ErrValidation)
	ErrQuestionRequired = fmt.Errorf("question is required: %w", ErrValidation)
	ErrCaptionRequired  = fmt.Errorf("option caption is required: %w", ErrValidation)
	ErrUsernameRequired = fmt.Errorf("username is required: %w", ErrValidation)
	ErrEmailRequired    = fmt.Errorf("email is required: %w", ErrValidation)
	ErrPasswordRequired = fmt.Errorf("password is required: %w", ErrValidation)
	ErrInvalidValidity  = fmt.Errorf("poll must be valid until after it is published: %w", ErrValidation)

	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid access token: %w", ErrUnauthorized)
)
