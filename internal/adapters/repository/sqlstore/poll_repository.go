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

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

const pollColumns = `id, question, published_at, valid_until, is_public, created_by`

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, question, published_at, valid_until, is_public, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Question, poll.PublishedAt, poll.ValidUntil, poll.IsPublic, poll.CreatedBy)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCreatorRequired
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryOption := `
		INSERT INTO vote_options (id, poll_id, caption, presentation_order)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.PollID, opt.Caption, opt.PresentationOrder)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	queryPoll := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1`

	poll, err := scanPoll(r.db.QueryRowContext(ctx, queryPoll, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	options, err := fetchOptions(ctx, r.db, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls ORDER BY published_at DESC, id`
	return r.listPolls(ctx, query)
}

func (r *pollRepository) ListByVisibility(ctx context.Context, isPublic bool) ([]*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE is_public = $1 ORDER BY published_at DESC, id`
	return r.listPolls(ctx, query, isPublic)
}

func (r *pollRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE created_by = $1 ORDER BY published_at DESC, id`
	return r.listPolls(ctx, query, creatorID)
}

func (r *pollRepository) ListVotedBy(ctx context.Context, voterID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT poll_id FROM votes WHERE voter_id = $1`, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voted polls: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voted polls: %w", err)
	}
	return ids, nil
}

func (r *pollRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE polls SET is_public = $2 WHERE id = $1`, id, isPublic)
	if err != nil {
		return fmt.Errorf("failed to update poll visibility: %w", err)
	}
	return expectAffected(res, domain.ErrPollNotFound)
}

// Delete removes the poll. Options and votes go with it through the schema's
// cascading foreign keys.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	return expectAffected(res, domain.ErrPollNotFound)
}

// listPolls drains the poll rows before loading options so it never needs a
// second connection.
func (r *pollRepository) listPolls(ctx context.Context, query string, args ...any) ([]*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	polls := []*domain.Poll{}
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	rows.Close()

	for _, poll := range polls {
		options, err := fetchOptions(ctx, r.db, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options
	}
	return polls, nil
}

func scanPoll(s scanner) (*domain.Poll, error) {
	var poll domain.Poll
	err := s.Scan(&poll.ID, &poll.Question, &poll.PublishedAt, &poll.ValidUntil, &poll.IsPublic, &poll.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
