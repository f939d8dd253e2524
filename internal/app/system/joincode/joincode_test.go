package joincode

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
)

func TestGenerate_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !Valid(code) {
			t.Fatalf("Generate produced malformed code %q", code)
		}
		seen[code] = true
	}
	// 200 draws from a 36^8 space colliding would mean a broken source.
	if len(seen) < 200 {
		t.Errorf("expected 200 distinct codes, got %d", len(seen))
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABCD1234", true},
		{"ZZZZZZZZ", true},
		{"00000000", true},
		{"", false},
		{"ABC123", false},
		{"ABCD12345", false},
		{"abcd1234", false},
		{"ABCD-123", false},
		{"ABCD 123", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.code); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIssue_RetriesOnCollision(t *testing.T) {
	calls := 0
	issuer := New(func(ctx context.Context, code string) (bool, error) {
		calls++
		// First three draws collide, fourth is free.
		return calls < 4, nil
	})

	code, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !Valid(code) {
		t.Errorf("issued malformed code %q", code)
	}
	if calls != 4 {
		t.Errorf("expected 4 uniqueness checks, got %d", calls)
	}
}

func TestIssue_Exhausted(t *testing.T) {
	issuer := New(func(ctx context.Context, code string) (bool, error) {
		return true, nil // every code taken
	})

	_, err := issuer.Issue(context.Background())
	if !apperrors.IsCode(err, apperrors.CodeIssuanceExhausted) {
		t.Errorf("expected issuance_exhausted, got %v", err)
	}
}

func TestIssue_CheckError(t *testing.T) {
	issuer := New(func(ctx context.Context, code string) (bool, error) {
		return false, errors.New("store down")
	})

	_, err := issuer.Issue(context.Background())
	if apperrors.KindOf(err) != apperrors.KindTransient {
		t.Errorf("expected transient error, got %v", err)
	}
}
