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

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/access"
	"github.com/huddlehq/huddle/internal/content"
)

// CreatePostRequest represents post creation data
type CreatePostRequest struct {
	Body        string   `json:"body" validate:"required"`
	TagContacts []string `json:"tag_contacts" example:"+15550101"`
}

// CreatePost publishes a post into the active group
// @Summary Create Post
// @Description Publish a post in the caller's active group, optionally tagging members
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /posts [post]
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	var req CreatePostRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.contentService.CreatePost(r.Context(), claims, req.Body, req.TagContacts)
	if err != nil {
		h.respondAccessError(w, r, err, "failed to create post")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"post": postResponse(post)})
}

// ListPosts lists the active group's posts
// @Summary List Posts
// @Description List posts of the caller's active group, newest first
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	posts, err := h.contentService.ListPosts(r.Context(), claims)
	if err != nil {
		h.respondAccessError(w, r, err, "failed to list posts")
		return
	}

	out := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		out = append(out, postResponse(p))
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": out})
}

// DeletePost removes a post
// @Summary Delete Post
// @Description Delete a post; author only, within the active group
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param postID path string true "Post ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /posts/{postID} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	if err := h.contentService.DeletePost(r.Context(), claims, chi.URLParam(r, "postID")); err != nil {
		h.respondAccessError(w, r, err, "failed to delete post")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// CreateCommentRequest represents comment creation data
type CreateCommentRequest struct {
	Body        string   `json:"body" validate:"required"`
	TagContacts []string `json:"tag_contacts"`
}

// CreateComment replies to a post
// @Summary Create Comment
// @Description Comment on a post in the caller's active group
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path string true "Post ID"
// @Param request body CreateCommentRequest true "Comment Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /posts/{postID}/comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	var req CreateCommentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.contentService.CreateComment(r.Context(), claims, chi.URLParam(r, "postID"), req.Body, req.TagContacts)
	if err != nil {
		h.respondAccessError(w, r, err, "failed to create comment")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"comment": commentResponse(comment)})
}

// ListComments lists a post's comments
// @Summary List Comments
// @Description List comments of a post in the caller's active group, oldest first
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param postID path string true "Post ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /posts/{postID}/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	comments, err := h.contentService.ListComments(r.Context(), claims, chi.URLParam(r, "postID"))
	if err != nil {
		h.respondAccessError(w, r, err, "failed to list comments")
		return
	}

	out := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentResponse(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"comments": out})
}

// DeleteComment removes a comment
// @Summary Delete Comment
// @Description Delete a comment; author only, within the parent post's group
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /comments/{commentID} [delete]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	if err := h.contentService.DeleteComment(r.Context(), claims, chi.URLParam(r, "commentID")); err != nil {
		h.respondAccessError(w, r, err, "failed to delete comment")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// CreateTagRequest represents direct tagging data. Exactly one of post_id and
// comment_id must be set.
type CreateTagRequest struct {
	ContactNumber string `json:"contact_number" validate:"required" example:"+15550101"`
	PostID        string `json:"post_id,omitempty"`
	CommentID     string `json:"comment_id,omitempty"`
}

// CreateTag tags a member on a post or comment
// @Summary Create Tag
// @Description Tag an active-group member on a post or a comment
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTagRequest true "Tag Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tags [post]
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	var req CreateTagRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var target content.TargetRef
	switch {
	case req.PostID != "" && req.CommentID == "":
		target = content.PostRef(req.PostID)
	case req.CommentID != "" && req.PostID == "":
		target = content.CommentRef(req.CommentID)
	default:
		respondError(w, http.StatusBadRequest, "exactly one of post_id and comment_id must be set")
		return
	}

	tag, err := h.contentService.CreateTag(r.Context(), claims, req.ContactNumber, target)
	if err != nil {
		h.respondAccessError(w, r, err, "failed to create tag")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"tag": tagResponse(tag)})
}

// DeleteTag removes a tag
// @Summary Delete Tag
// @Description Delete a tag; owner of the tagged content only
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param tagID path string true "Tag ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tags/{tagID} [delete]
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	if err := h.contentService.DeleteTag(r.Context(), claims, chi.URLParam(r, "tagID")); err != nil {
		h.respondAccessError(w, r, err, "failed to delete tag")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "tag deleted"})
}

func postResponse(p *content.Post) map[string]any {
	tags := make([]map[string]any, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, tagResponse(t))
	}
	return map[string]any{
		"post_id":    p.ID,
		"group_id":   p.GroupID,
		"author_id":  p.AuthorID,
		"body":       p.Body,
		"created_at": p.CreatedAt,
		"tags":       tags,
	}
}

func commentResponse(c *content.Comment) map[string]any {
	tags := make([]map[string]any, 0, len(c.Tags))
	for _, t := range c.Tags {
		tags = append(tags, tagResponse(t))
	}
	return map[string]any{
		"comment_id": c.ID,
		"post_id":    c.PostID,
		"author_id":  c.AuthorID,
		"body":       c.Body,
		"created_at": c.CreatedAt,
		"tags":       tags,
	}
}

func tagResponse(t *content.Tag) map[string]any {
	resp := map[string]any{
		"tag_id":     t.ID,
		"user_id":    t.UserID,
		"created_at": t.CreatedAt,
	}
	if postID, ok := t.Target.PostID(); ok {
		resp["post_id"] = postID
	}
	if commentID, ok := t.Target.CommentID(); ok {
		resp["comment_id"] = commentID
	}
	return resp
}
