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

// AttachmentStore holds attachment metadata rows; the bytes live in
// object storage.
type AttachmentStore struct {
	db *pgxpool.Pool
}

// NewAttachmentStore creates an AttachmentStore.
func NewAttachmentStore(db *pgxpool.Pool) *AttachmentStore {
	return &AttachmentStore{db: db}
}

// Create inserts attachment metadata.
func (s *AttachmentStore) Create(ctx context.Context, a *models.Attachment) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO attachments (id, task_id, uploader_id, file_name, content_type, size, object_key, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		a.ID, a.TaskID, a.UploaderID, a.FileName, a.ContentType, a.Size, a.ObjectKey, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

// Get retrieves attachment metadata by id.
func (s *AttachmentStore) Get(ctx context.Context, id string) (*models.Attachment, error) {
	var a models.Attachment
	err := s.db.QueryRow(ctx,
		"SELECT id, task_id, uploader_id, file_name, content_type, size, object_key, created_at FROM attachments WHERE id = $1",
		id,
	).Scan(&a.ID, &a.TaskID, &a.UploaderID, &a.FileName, &a.ContentType, &a.Size, &a.ObjectKey, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("attachment not found")
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &a, nil
}

// ListByTask lists a task's attachments, newest first.
func (s *AttachmentStore) ListByTask(ctx context.Context, taskID string) ([]*models.Attachment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, task_id, uploader_id, file_name, content_type, size, object_key, created_at FROM attachments WHERE task_id = $1 ORDER BY created_at DESC",
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var out []*models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UploaderID, &a.FileName, &a.ContentType, &a.Size, &a.ObjectKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Delete removes attachment metadata.
func (s *AttachmentStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM attachments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}
