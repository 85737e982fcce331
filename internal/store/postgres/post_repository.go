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

// PostRepository implements content.PostRepository
type PostRepository struct {
	db *DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts the post and its tag rows in one transaction.
func (r *PostRepository) Create(ctx context.Context, post *content.Post, tagUserIDs []string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO posts (id, group_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, post.ID, post.GroupID, post.AuthorID, post.Body, now)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	for _, userID := range tagUserIDs {
		tag := &content.Tag{
			ID:        id.NewUUIDv7(),
			UserID:    userID,
			Target:    content.PostRef(post.ID),
			CreatedAt: now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO tags (id, user_id, post_id, created_at)
			VALUES ($1, $2, $3, $4)
		`, tag.ID, tag.UserID, post.ID, now)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
		post.Tags = append(post.Tags, tag)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit post creation: %w", err)
	}

	post.CreatedAt = now

	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, postID string) (*content.Post, error) {
	var post content.Post

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, group_id, author_id, body, created_at
		FROM posts
		WHERE id = $1
	`, postID).Scan(&post.ID, &post.GroupID, &post.AuthorID, &post.Body, &post.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, content.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// ListByGroup retrieves a group's posts, newest first, with their tags.
func (r *PostRepository) ListByGroup(ctx context.Context, groupID string) ([]*content.Post, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, group_id, author_id, body, created_at
		FROM posts
		WHERE group_id = $1
		ORDER BY created_at DESC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*content.Post
	byID := make(map[string]*content.Post)
	for rows.Next() {
		var post content.Post
		if err := rows.Scan(&post.ID, &post.GroupID, &post.AuthorID, &post.Body, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &post)
		byID[post.ID] = &post
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	tagRows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, post_id, created_at
		FROM tags
		WHERE post_id = ANY($1)
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list post tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var tagID, userID, postID string
		var createdAt time.Time
		if err := tagRows.Scan(&tagID, &userID, &postID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if post, ok := byID[postID]; ok {
			post.Tags = append(post.Tags, &content.Tag{
				ID:        tagID,
				UserID:    userID,
				Target:    content.PostRef(postID),
				CreatedAt: createdAt,
			})
		}
	}

	return posts, tagRows.Err()
}

// Delete removes a post; comments and tags follow via the delete cascade.
func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM posts WHERE id = $1
	`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return content.ErrPostNotFound
	}

	return nil
}
