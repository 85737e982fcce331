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
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/huddlehq/huddle/internal/content"
)

// TagRepository implements content.TagRepository
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a tag. The target's one-of shape maps to the nullable
// post_id/comment_id pair guarded by the table's check constraint.
func (r *TagRepository) Create(ctx context.Context, tag *content.Tag) error {
	var postID, commentID *string
	if pid, ok := tag.Target.PostID(); ok {
		postID = &pid
	}
	if cid, ok := tag.Target.CommentID(); ok {
		commentID = &cid
	}

	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tags (id, user_id, post_id, comment_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, tag.ID, tag.UserID, postID, commentID, now)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	tag.CreatedAt = now

	return nil
}

// GetByID retrieves a tag by ID
func (r *TagRepository) GetByID(ctx context.Context, tagID string) (*content.Tag, error) {
	var tag content.Tag
	var postID, commentID sql.NullString

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, user_id, post_id, comment_id, created_at
		FROM tags
		WHERE id = $1
	`, tagID).Scan(&tag.ID, &tag.UserID, &postID, &commentID, &tag.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, content.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	switch {
	case postID.Valid:
		tag.Target = content.PostRef(postID.String)
	case commentID.Valid:
		tag.Target = content.CommentRef(commentID.String)
	default:
		// Unreachable while the check constraint holds.
		return nil, fmt.Errorf("tag %s has no target", tagID)
	}

	return &tag, nil
}

// Delete removes a tag
func (r *TagRepository) Delete(ctx context.Context, tagID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM tags WHERE id = $1
	`, tagID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return content.ErrTagNotFound
	}

	return nil
}
