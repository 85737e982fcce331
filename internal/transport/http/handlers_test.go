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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/huddlehq/huddle/internal/audit"
	"github.com/huddlehq/huddle/internal/session"
)

func createMinimalHandler(t *testing.T) *Handler {
	t.Helper()
	codec, err := session.NewCodec([]byte("test-secret"), "huddle-test")
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	return &Handler{
		codec:       codec,
		auditLogger: audit.NewSlogLogger(),
		validate:    validator.New(),
	}
}

func withClaims(r *http.Request, claims session.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
}

// =============================================================================
// AUTH API INPUT VALIDATION TESTS
// Category: Auth API - Input Validation & HTTP Behavior
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that malformed JSON in the registration request is rejected safely.
// Scope: Unit Test
// Security: JSON parsing safety
// Expected: Returns HTTP 400 Bad Request for malformed JSON.
// Test Case ID: REG-01
func TestAuth_Register_MalformedJSON_ReturnsBadRequest(t *testing.T) {
	h := createMinimalHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(`{invalid_json}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code,
		"REG-01: Malformed JSON should return 400 Bad Request")
}

// TestPurpose: Validates that registration without a contact number fails struct validation.
// Scope: Unit Test
// Security: Input sanitization boundary check
// Expected: Returns HTTP 400 Bad Request for a missing contact number.
// Test Case ID: REG-02
func TestAuth_Register_MissingContact_ReturnsBadRequest(t *testing.T) {
	h := createMinimalHandler(t)

	body, _ := json.Marshal(RegisterRequest{
		FullName:   "Test User",
		Passphrase: "validPassphrase123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code,
		"REG-02: Missing contact number should return 400 Bad Request")
}

// TestPurpose: Validates that passphrases below the minimum length are rejected before reaching the service.
// Scope: Unit Test
// Security: Passphrase strength validation
// Expected: Returns HTTP 400 Bad Request for short passphrases.
// Test Case ID: REG-03
func TestAuth_Register_WeakPassphrase_ReturnsBadRequest(t *testing.T) {
	h := createMinimalHandler(t)

	body, _ := json.Marshal(RegisterRequest{
		ContactNumber: "+15550100",
		FullName:      "Test User",
		Passphrase:    "short",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code,
		"REG-03: Short passphrase should return 400 Bad Request")
}

// TestPurpose: Validates that empty login bodies are rejected with 400 Bad Request.
// Scope: Unit Test
// Security: Request body parsing and validation
// Expected: Returns HTTP 400 Bad Request for empty bodies.
// Test Case ID: LGN-01
func TestAuth_Login_EmptyBody_ReturnsBadRequest(t *testing.T) {
	h := createMinimalHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte{}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code,
		"LGN-01: Empty body should return 400 Bad Request")
}

// =============================================================================
// SESSION TOKEN MIDDLEWARE TESTS
// Category: Session - Bearer Token Handling
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that requests without a bearer token never reach protected handlers.
// Scope: Unit Test
// Security: Authentication gate
// Expected: Returns HTTP 401 Unauthorized; downstream handler is not invoked.
// Test Case ID: MID-01
func TestMiddleware_Auth_MissingToken_ReturnsUnauthorized(t *testing.T) {
	h := createMinimalHandler(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	h.AuthMiddleware(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called, "MID-01: Handler must not run without a token")
}

// TestPurpose: Validates that forged or corrupted tokens are rejected.
// Scope: Unit Test
// Security: Signature verification at the transport boundary
// Expected: Returns HTTP 401 Unauthorized for a token signed under another secret.
// Test Case ID: MID-02
func TestMiddleware_Auth_ForgedToken_ReturnsUnauthorized(t *testing.T) {
	h := createMinimalHandler(t)

	otherCodec, _ := session.NewCodec([]byte("attacker-secret"), "huddle-test")
	forged, _ := otherCodec.Issue(session.Claims{UserID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()

	called := false
	h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called, "MID-02: Handler must not run with a forged token")
}

// TestPurpose: Validates that a valid bearer token puts the decoded claims in the request context.
// Scope: Unit Test
// Security: Claims propagation
// Expected: Downstream handler sees the user ID and active group from the token.
// Test Case ID: MID-03
func TestMiddleware_Auth_ValidToken_PropagatesClaims(t *testing.T) {
	h := createMinimalHandler(t)

	token, err := h.codec.Issue(session.Claims{UserID: "user-1"}.WithGroup("group-1"))
	assert.NoError(t, err)

	var got session.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		assert.True(t, ok)
		got = claims
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	h.AuthMiddleware(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "group-1", got.Group())
}

// =============================================================================
// TAG API TESTS
// Category: Tags - Target Exclusivity
// Type: Unit Test (UT)
// =============================================================================

// TestPurpose: Validates that a tag request naming both a post and a comment target is rejected.
// Scope: Unit Test
// Security: Target exclusivity invariant at the API boundary
// Expected: Returns HTTP 400 Bad Request when both or neither target is set.
// Test Case ID: TAG-01
func TestTags_Create_AmbiguousTarget_ReturnsBadRequest(t *testing.T) {
	h := createMinimalHandler(t)

	for _, reqBody := range []CreateTagRequest{
		{ContactNumber: "+15550101", PostID: "post-1", CommentID: "comment-1"},
		{ContactNumber: "+15550101"},
	} {
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = withClaims(req, session.Claims{UserID: "user-1"}.WithGroup("group-1"))
		w := httptest.NewRecorder()

		h.CreateTag(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code,
			"TAG-01: Ambiguous tag target should return 400 Bad Request")
	}
}

// TestPurpose: Validates the second authentication gate inside handlers: a
// request that reaches a protected handler without decoded claims is rejected
// through the access-error mapping, not served.
// Scope: Unit Test
// Security: Defense in depth behind the auth middleware
// Expected: Returns HTTP 401 Unauthorized when the context carries no claims.
// Test Case ID: MID-04
func TestHandlers_MissingClaims_ReturnsUnauthorized(t *testing.T) {
	h := createMinimalHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()

	h.GetCurrentUser(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication required")
}
