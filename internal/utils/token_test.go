package utils

import "testing"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	other, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == other {
		t.Error("two generated tokens are identical")
	}
}

func TestGenerateTokenRejectsBadLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := GenerateToken(n); err == nil {
			t.Errorf("GenerateToken(%d) succeeded, want error", n)
		}
	}
}
