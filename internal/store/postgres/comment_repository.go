// Copyright 2026 The Huddle Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/huddlehq/huddle/internal/content"
	"github.com/huddlehq/huddle/internal/id"
)

// CommentRepository implements content.CommentRepository
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts the comment and its tag rows in one transaction.
func (r *CommentRepository) Create(ctx context.Context, comment *content.Comment, tagUserIDs []string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, comment.PostID, comment.AuthorID, comment.Body, now)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	for _, userID := range tagUserIDs {
		tag := &content.Tag{
			ID:        id.NewUUIDv7(),
			UserID:    userID,
			Target:    content.CommentRef(comment.ID),
			CreatedAt: now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO tags (id, user_id, comment_id, created_at)
			VALUES ($1, $2, $3, $4)
		`, tag.ID, tag.UserID, comment.ID, now)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
		comment.Tags = append(comment.Tags, tag)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit comment creation: %w", err)
	}

	comment.CreatedAt = now

	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, commentID string) (*content.Comment, error) {
	var comment content.Comment

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, post_id, author_id, body, created_at
		FROM comments
		WHERE id = $1
	`, commentID).Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Body, &comment.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, content.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

// ListByPost retrieves a post's comments, oldest first, with their tags.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*content.Comment, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, post_id, author_id, body, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*content.Comment
	byID := make(map[string]*content.Comment)
	for rows.Next() {
		var comment content.Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
		byID[comment.ID] = &comment
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return comments, nil
	}

	commentIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
	}

	tagRows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, comment_id, created_at
		FROM tags
		WHERE comment_id = ANY($1)
	`, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list comment tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var tagID, userID, commentID string
		var createdAt time.Time
		if err := tagRows.Scan(&tagID, &userID, &commentID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if comment, ok := byID[commentID]; ok {
			comment.Tags = append(comment.Tags, &content.Tag{
				ID:        tagID,
				UserID:    userID,
				Target:    content.CommentRef(commentID),
				CreatedAt: createdAt,
			})
		}
	}

	return comments, tagRows.Err()
}

// Delete removes a comment; its tags follow via the delete cascade.
func (r *CommentRepository) Delete(ctx context.Context, commentID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM comments WHERE id = $1
	`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return content.ErrCommentNotFound
	}

	return nil
}
