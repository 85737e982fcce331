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
	"context"

	"github.com/huddlehq/huddle/internal/session"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// GetClaims retrieves the decoded session claims from context. The second
// return is false on unauthenticated requests.
func GetClaims(ctx context.Context) (session.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(session.Claims)
	return claims, ok
}
