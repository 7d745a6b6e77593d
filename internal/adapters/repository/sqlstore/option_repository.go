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

// appendAttempts bounds retries when two writers append to the same poll at
// once and collide on (poll_id, presentation_order).
const appendAttempts = 5

type optionRepository struct {
	db *sql.DB
}

func NewOptionRepository(db *sql.DB) ports.OptionRepository {
	return &optionRepository{db: db}
}

func (r *optionRepository) Append(ctx context.Context, option *domain.VoteOption) error {
	query := `
		INSERT INTO vote_options (id, poll_id, caption, presentation_order)
		VALUES ($1, $2, $3, (
			SELECT COALESCE(MAX(presentation_order), 0) + 1
			FROM vote_options
			WHERE poll_id = $2
		))
		RETURNING presentation_order
	`

	var err error
	for range appendAttempts {
		err = r.db.QueryRowContext(ctx, query, option.ID, option.PollID, option.Caption).Scan(&option.PresentationOrder)
		if err == nil {
			return nil
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPollNotFound
		}
		if !isUniqueViolation(err) {
			break
		}
	}
	return fmt.Errorf("failed to append option: %w", err)
}

func (r *optionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VoteOption, error) {
	query := `SELECT id, poll_id, caption, presentation_order FROM vote_options WHERE id = $1`

	var opt domain.VoteOption
	err := r.db.QueryRowContext(ctx, query, id).Scan(&opt.ID, &opt.PollID, &opt.Caption, &opt.PresentationOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return &opt, nil
}

func (r *optionRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]domain.VoteOption, error) {
	return fetchOptions(ctx, r.db, pollID)
}

// Delete removes the option and, through the schema, every vote cast for it.
func (r *optionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vote_options WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return expectAffected(res, domain.ErrOptionNotFound)
}

func fetchOptions(ctx context.Context, db *sql.DB, pollID uuid.UUID) ([]domain.VoteOption, error) {
	queryOptions := `
		SELECT id, poll_id, caption, presentation_order
		FROM vote_options
		WHERE poll_id = $1
		ORDER BY presentation_order
	`
	rows, err := db.QueryContext(ctx, queryOptions, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll options: %w", err)
	}
	defer rows.Close()

	options := []domain.VoteOption{}
	for rows.Next() {
		var opt domain.VoteOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Caption, &opt.PresentationOrder); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
