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

package content

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/huddlehq/huddle/internal/access"
	"github.com/huddlehq/huddle/internal/audit"
	"github.com/huddlehq/huddle/internal/group"
	"github.com/huddlehq/huddle/internal/id"
	"github.com/huddlehq/huddle/internal/session"
)

// MemberResolver restricts tag targets to members of a group. Implemented by
// the group repository.
type MemberResolver interface {
	ResolveGroupMembers(ctx context.Context, groupID string, contactNumbers []string) ([]group.ContactRef, error)
}

// Service provides post, comment and tag business logic
type Service struct {
	posts       PostRepository
	comments    CommentRepository
	tags        TagRepository
	members     MemberResolver
	checker     *access.Checker
	auditLogger audit.Logger
}

// NewService creates a new content service
func NewService(
	posts PostRepository,
	comments CommentRepository,
	tags TagRepository,
	members MemberResolver,
	checker *access.Checker,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		posts:       posts,
		comments:    comments,
		tags:        tags,
		members:     members,
		checker:     checker,
		auditLogger: auditLogger,
	}
}

// CreatePost publishes a post into the caller's active group. Requested tag
// contacts are filtered to active-group members; non-members are dropped
// silently rather than failing the post.
func (s *Service) CreatePost(ctx context.Context, claims session.Claims, body string, tagContacts []string) (*Post, error) {
	if !claims.GroupScoped() {
		return nil, access.ErrDenied
	}
	if body == "" {
		return nil, access.ErrInvalidInput
	}

	tagUserIDs, err := s.resolveTagContacts(ctx, claims.Group(), tagContacts)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:       id.NewUUIDv7(),
		GroupID:  claims.Group(),
		AuthorID: claims.UserID,
		Body:     body,
	}

	if err := s.posts.Create(ctx, post, tagUserIDs); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePostCreated,
		GroupID:  claims.Group(),
		ActorID:  claims.UserID,
		Resource: "post",
		Metadata: map[string]any{"tags": len(tagUserIDs)},
	})

	return post, nil
}

// CreateComment replies to a post in the caller's active group. A post
// outside the active group reads as not found.
func (s *Service) CreateComment(ctx context.Context, claims session.Claims, postID, body string, tagContacts []string) (*Comment, error) {
	if !claims.GroupScoped() {
		return nil, access.ErrDenied
	}
	if body == "" {
		return nil, access.ErrInvalidInput
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if err == ErrPostNotFound {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post.GroupID != claims.Group() {
		return nil, access.ErrNotFound
	}

	tagUserIDs, err := s.resolveTagContacts(ctx, claims.Group(), tagContacts)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       id.NewUUIDv7(),
		PostID:   post.ID,
		AuthorID: claims.UserID,
		Body:     body,
	}

	if err := s.comments.Create(ctx, comment, tagUserIDs); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCommentCreated,
		GroupID:  claims.Group(),
		ActorID:  claims.UserID,
		Resource: "comment",
		Metadata: map[string]any{"post_id": post.ID, "tags": len(tagUserIDs)},
	})

	return comment, nil
}

// CreateTag is the direct tagging path. The tagged contact must resolve to a
// member of the active group and the target content must live in that group;
// anything else reads as not found.
func (s *Service) CreateTag(ctx context.Context, claims session.Claims, contactNumber string, target TargetRef) (*Tag, error) {
	if !claims.GroupScoped() {
		return nil, access.ErrDenied
	}

	refs, err := s.members.ResolveGroupMembers(ctx, claims.Group(), []string{contactNumber})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tagged contact: %w", err)
	}
	if len(refs) == 0 {
		return nil, access.ErrNotFound
	}

	if _, _, err := s.resolveTargetOwnership(ctx, claims.Group(), target); err != nil {
		return nil, err
	}

	tag := &Tag{
		ID:     id.NewUUIDv7(),
		UserID: refs[0].UserID,
		Target: target,
	}

	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTagCreated,
		GroupID:  claims.Group(),
		ActorID:  claims.UserID,
		Resource: "tag",
		Metadata: map[string]any{"target": string(target.Kind())},
	})

	return tag, nil
}

// DeletePost removes a post; author only, within the post's group.
func (s *Service) DeletePost(ctx context.Context, claims session.Claims, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if err == ErrPostNotFound {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to load post: %w", err)
	}

	if err := s.checker.CanDeletePost(ctx, claims, post.AuthorID, post.GroupID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePostDeleted,
		GroupID:  post.GroupID,
		ActorID:  claims.UserID,
		Resource: "post",
	})

	return nil
}

// DeleteComment removes a comment; author only, within the parent post's
// group.
func (s *Service) DeleteComment(ctx context.Context, claims session.Claims, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if err == ErrCommentNotFound {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	post, err := s.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return fmt.Errorf("failed to load parent post: %w", err)
	}

	if err := s.checker.CanDeleteComment(ctx, claims, comment.AuthorID, post.GroupID); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeCommentDeleted,
		GroupID:  post.GroupID,
		ActorID:  claims.UserID,
		Resource: "comment",
	})

	return nil
}

// DeleteTag removes a tag after resolving ownership through whichever target
// the tag carries.
func (s *Service) DeleteTag(ctx context.Context, claims session.Claims, tagID string) error {
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		if err == ErrTagNotFound {
			return access.ErrNotFound
		}
		return fmt.Errorf("failed to load tag: %w", err)
	}

	authorID, groupID, err := s.resolveTarget(ctx, tag.Target)
	if err != nil {
		return err
	}

	if err := s.checker.CanDeleteTag(ctx, claims, authorID, groupID); err != nil {
		return err
	}

	if err := s.tags.Delete(ctx, tagID); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTagDeleted,
		GroupID:  groupID,
		ActorID:  claims.UserID,
		Resource: "tag",
	})

	return nil
}

// ListPosts returns the active group's posts with comments and tags.
func (s *Service) ListPosts(ctx context.Context, claims session.Claims) ([]*Post, error) {
	if !claims.GroupScoped() {
		return nil, access.ErrDenied
	}
	posts, err := s.posts.ListByGroup(ctx, claims.Group())
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListComments returns a post's comments when the post is in the active
// group.
func (s *Service) ListComments(ctx context.Context, claims session.Claims, postID string) ([]*Comment, error) {
	if !claims.GroupScoped() {
		return nil, access.ErrDenied
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if err == ErrPostNotFound {
			return nil, access.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post.GroupID != claims.Group() {
		return nil, access.ErrNotFound
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// resolveTagContacts maps requested contact numbers to user IDs, keeping only
// members of the group. The independent lookups collapse into one batch
// query.
func (s *Service) resolveTagContacts(ctx context.Context, groupID string, tagContacts []string) ([]string, error) {
	contacts := lo.Uniq(lo.Filter(tagContacts, func(c string, _ int) bool { return c != "" }))
	if len(contacts) == 0 {
		return nil, nil
	}

	refs, err := s.members.ResolveGroupMembers(ctx, groupID, contacts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tagged contacts: %w", err)
	}

	return lo.Map(refs, func(ref group.ContactRef, _ int) string { return ref.UserID }), nil
}

// resolveTarget follows a tag target to the author and group that own it.
func (s *Service) resolveTarget(ctx context.Context, target TargetRef) (authorID, groupID string, err error) {
	switch target.Kind() {
	case TargetPost:
		postID, _ := target.PostID()
		post, err := s.posts.GetByID(ctx, postID)
		if err != nil {
			if err == ErrPostNotFound {
				return "", "", access.ErrNotFound
			}
			return "", "", fmt.Errorf("failed to load tagged post: %w", err)
		}
		return post.AuthorID, post.GroupID, nil
	case TargetComment:
		commentID, _ := target.CommentID()
		comment, err := s.comments.GetByID(ctx, commentID)
		if err != nil {
			if err == ErrCommentNotFound {
				return "", "", access.ErrNotFound
			}
			return "", "", fmt.Errorf("failed to load tagged comment: %w", err)
		}
		post, err := s.posts.GetByID(ctx, comment.PostID)
		if err != nil {
			return "", "", fmt.Errorf("failed to load tagged comment's post: %w", err)
		}
		return comment.AuthorID, post.GroupID, nil
	default:
		return "", "", access.ErrInvalidInput
	}
}

// resolveTargetOwnership verifies a tag target lives in the given group.
func (s *Service) resolveTargetOwnership(ctx context.Context, groupID string, target TargetRef) (authorID, targetGroupID string, err error) {
	authorID, targetGroupID, err = s.resolveTarget(ctx, target)
	if err != nil {
		return "", "", err
	}
	if targetGroupID != groupID {
		return "", "", access.ErrNotFound
	}
	return authorID, targetGroupID, nil
}
