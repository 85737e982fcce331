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
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/access"
	"github.com/huddlehq/huddle/internal/group"
	"github.com/huddlehq/huddle/internal/observability/logger"
)

// CreateGroupRequest represents group creation data
type CreateGroupRequest struct {
	Name           string   `json:"name" validate:"required" example:"Weekend Hikers"`
	ColorScheme    string   `json:"color_scheme" example:"forest"`
	WelcomeText    string   `json:"welcome_text" example:"Welcome to the trail"`
	Description    string   `json:"description"`
	InviteContacts []string `json:"invite_contacts" example:"+15550101,+15550102"`
}

// CreateGroup creates a group with the caller as admin
// @Summary Create Group
// @Description Create a group, invite contacts, and scope the session to it
// @Tags Group
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGroupRequest true "Group Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	var req CreateGroupRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	g, err := h.groupService.Create(r.Context(), claims.UserID, group.Attributes{
		Name:        req.Name,
		ColorScheme: req.ColorScheme,
		WelcomeText: req.WelcomeText,
		Description: req.Description,
	}, req.InviteContacts)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create group", logger.Error(err))
		h.respondAccessError(w, r, err, "failed to create group")
		return
	}

	// Creating a group selects it: the admin lands in the new group.
	token, err := h.codec.Issue(claims.WithGroup(g.ID))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue session token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"group": groupResponse(g),
		"token": token,
	})
}

// SelectGroup scopes the session to a group
// @Summary Select Group
// @Description Verify membership and issue a token bound to the group
// @Tags Group
// @Produce json
// @Security BearerAuth
// @Param groupID path string true "Group ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /groups/{groupID}/select [post]
func (h *Handler) SelectGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	g, err := h.groupService.Select(r.Context(), claims.UserID, chi.URLParam(r, "groupID"))
	if err != nil {
		h.respondAccessError(w, r, err, "failed to select group")
		return
	}

	token, err := h.codec.Issue(claims.WithGroup(g.ID))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue session token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"group": groupResponse(g),
		"token": token,
	})
}

// ListGroups lists the caller's groups
// @Summary List Groups
// @Description List the groups the caller is a member of
// @Tags Group
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router /groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	groups, err := h.groupService.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list groups", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupResponse(g))
	}
	respondJSON(w, http.StatusOK, map[string]any{"groups": out})
}

// ListMembers lists the active group's members
// @Summary List Members
// @Description List the members of the caller's active group
// @Tags Group
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /group/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	members, err := h.groupService.Members(r.Context(), claims)
	if err != nil {
		h.respondAccessError(w, r, err, "failed to list members")
		return
	}

	out := make([]map[string]any, 0, len(members))
	for _, m := range members {
		out = append(out, map[string]any{
			"user_id":        m.UserID,
			"contact_number": m.ContactNumber,
			"full_name":      m.FullName,
			"joined_at":      m.JoinedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"members": out})
}

// RemoveMember removes a user from the active group
// @Summary Remove Member
// @Description Remove a member from the caller's active group; admin only
// @Tags Group
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /group/members/{userID} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		h.respondAccessError(w, r, access.ErrUnauthenticated, "authentication required")
		return
	}

	if err := h.groupService.RemoveMember(r.Context(), claims, chi.URLParam(r, "userID")); err != nil {
		h.respondAccessError(w, r, err, "failed to remove member")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "member removed",
	})
}

func groupResponse(g *group.Group) map[string]any {
	return map[string]any{
		"group_id":     g.ID,
		"admin_id":     g.AdminID,
		"name":         g.Name,
		"color_scheme": g.ColorScheme,
		"welcome_text": g.WelcomeText,
		"description":  g.Description,
		"created_at":   g.CreatedAt,
	}
}
