package audit

import (
	"testing"
)

// TestPurpose: Validates that sensitive metadata keys are identified as secrets so they never reach the log in plaintext.
// Scope: Unit Test
// Security: Data Masking and Leakage Prevention (CWE-532)
// Expected: Returns true for keys containing 'passphrase', 'token', 'secret', etc., and false for non-sensitive keys.
// Test Case ID: AUD-01
func TestAudit_IsSecret(t *testing.T) {
	tests := []struct {
		key      string
		isSecret bool
	}{
		{"passphrase", true},
		{"Passphrase", true},
		{"PASSPHRASE", true},
		{"new_passphrase", true},
		{"password", true},
		{"token", true},
		{"access_token", true},
		{"secret", true},
		{"api_key", true},
		{"hash", true},
		{"passphrase_hash", true},
		{"credential", true},
		{"private_key", true},
		{"user_id", false},
		{"group_id", false},
		{"contact_number", false},
		{"reason", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := isSecret(tt.key); got != tt.isSecret {
				t.Errorf("isSecret(%q) = %v, want %v", tt.key, got, tt.isSecret)
			}
		})
	}
}
