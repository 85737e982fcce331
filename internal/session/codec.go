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

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the wire form of Claims inside the JWT.
type tokenClaims struct {
	UserID      string  `json:"user_id"`
	ActiveGroup *string `json:"active_group,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and decodes session tokens with a process-wide HMAC secret.
// Tokens carry no expiry: the state machine lives entirely in the claims and
// a token is replaced, never refreshed, when the session state changes.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec creates a token codec. The secret is read-only after startup.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &Codec{secret: secret, issuer: issuer}, nil
}

// Issue signs the claims into an opaque token string.
func (c *Codec) Issue(claims Claims) (string, error) {
	tc := &tokenClaims{
		UserID:      claims.UserID,
		ActiveGroup: claims.ActiveGroup,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   c.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	return token.SignedString(c.secret)
}

// Decode verifies the token signature and returns the embedded claims.
// Any parse or signature failure surfaces as ErrTokenInvalid; callers treat
// it as an authentication failure.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, ErrTokenInvalid
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || tc.UserID == "" {
		return Claims{}, ErrTokenInvalid
	}

	return Claims{UserID: tc.UserID, ActiveGroup: tc.ActiveGroup}, nil
}
