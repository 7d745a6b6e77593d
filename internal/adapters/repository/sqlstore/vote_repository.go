package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
	"github.com/vncsmyrnk/pollapp/internal/core/ports"
)

var errVoteReference = fmt.Errorf("vote references a missing option or voter: %w", domain.ErrNotFound)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

const voteColumns = `id, published_at, voter_id, option_id, poll_id`

func (r *voteRepository) Save(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (id, published_at, voter_id, option_id, poll_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, vote.ID, vote.PublishedAt, nullUUID(vote.VoterID), vote.OptionID, vote.PollID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyVoted
		}
		if isForeignKeyViolation(err) {
			return errVoteReference
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes WHERE id = $1`
	vote, err := scanVote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) GetByVoter(ctx context.Context, pollID, voterID uuid.UUID) (*domain.Vote, error) {
	query := `SELECT ` + voteColumns + ` FROM votes WHERE poll_id = $1 AND voter_id = $2`
	vote, err := scanVote(r.db.QueryRowContext(ctx, query, pollID, voterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDidNotVote
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) Exists(ctx context.Context, pollID, voterID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM votes WHERE poll_id = $1 AND voter_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, voterID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

// UpdateOption moves the vote to another option of the same poll in a single
// statement.
func (r *voteRepository) UpdateOption(ctx context.Context, id, optionID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE votes SET option_id = $2 WHERE id = $1`, id, optionID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidOption
		}
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return expectAffected(res, domain.ErrVoteNotFound)
}

func (r *voteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return expectAffected(res, domain.ErrVoteNotFound)
}

func (r *voteRepository) List(ctx context.Context) ([]*domain.Vote, error) {
	return r.listVotes(ctx, `SELECT `+voteColumns+` FROM votes ORDER BY published_at, id`)
}

func (r *voteRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error) {
	return r.listVotes(ctx, `SELECT `+voteColumns+` FROM votes WHERE poll_id = $1 ORDER BY published_at, id`, pollID)
}

func (r *voteRepository) ListByOption(ctx context.Context, optionID uuid.UUID) ([]*domain.Vote, error) {
	return r.listVotes(ctx, `SELECT `+voteColumns+` FROM votes WHERE option_id = $1 ORDER BY published_at, id`, optionID)
}

func (r *voteRepository) ListByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	return r.listVotes(ctx, `SELECT `+voteColumns+` FROM votes WHERE voter_id = $1 ORDER BY published_at, id`, voterID)
}

func (r *voteRepository) CountByOption(ctx context.Context, optionID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE option_id = $1`, optionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// CountByPoll returns a count for every option of the poll, zero included.
func (r *voteRepository) CountByPoll(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	query := `
		SELECT o.id, COUNT(v.id)
		FROM vote_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count poll votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var optionID uuid.UUID
		var n int64
		if err := rows.Scan(&optionID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[optionID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote counts: %w", err)
	}
	return counts, nil
}

func (r *voteRepository) listVotes(ctx context.Context, query string, args ...any) ([]*domain.Vote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := []*domain.Vote{}
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func scanVote(s scanner) (*domain.Vote, error) {
	var vote domain.Vote
	var voter uuid.NullUUID
	if err := s.Scan(&vote.ID, &vote.PublishedAt, &voter, &vote.OptionID, &vote.PollID); err != nil {
		return nil, err
	}
	if voter.Valid {
		vote.VoterID = &voter.UUID
	}
	return &vote, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
