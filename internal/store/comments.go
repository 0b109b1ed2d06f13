package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellimanage/platform/internal/apperrors"
	"github.com/intellimanage/platform/internal/models"
)

// CommentStore holds task comments.
type CommentStore struct {
	db *pgxpool.Pool
}

// NewCommentStore creates a CommentStore.
func NewCommentStore(db *pgxpool.Pool) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO comments (id, task_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5)",
		c.ID, c.TaskID, c.AuthorID, c.Body, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// Get retrieves a comment by id.
func (s *CommentStore) Get(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	err := s.db.QueryRow(ctx,
		"SELECT id, task_id, author_id, body, created_at FROM comments WHERE id = $1", id,
	).Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

// ListByTask lists a task's comments, oldest first.
func (s *CommentStore) ListByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, task_id, author_id, body, created_at FROM comments WHERE task_id = $1 ORDER BY created_at ASC",
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Delete removes a comment.
func (s *CommentStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
