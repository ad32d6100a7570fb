package simpleassets

import (
	"errors"
	"testing"
)

// TestCanTransition covers every move of the publish state machine
func TestCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   AssetStatus
		to     AssetStatus
		wantOK bool
	}{
		{name: "allow: pending to uploading", from: AssetStatusPending, to: AssetStatusUploading, wantOK: true},
		{name: "allow: pending to failed", from: AssetStatusPending, to: AssetStatusFailed, wantOK: true},
		{name: "deny: pending to completed", from: AssetStatusPending, to: AssetStatusCompleted},
		{name: "deny: pending to pending", from: AssetStatusPending, to: AssetStatusPending},
		{name: "allow: uploading to completed", from: AssetStatusUploading, to: AssetStatusCompleted, wantOK: true},
		{name: "allow: uploading to failed", from: AssetStatusUploading, to: AssetStatusFailed, wantOK: true},
		{name: "deny: uploading to pending", from: AssetStatusUploading, to: AssetStatusPending},
		{name: "deny: completed is terminal", from: AssetStatusCompleted, to: AssetStatusFailed},
		{name: "deny: failed is terminal", from: AssetStatusFailed, to: AssetStatusUploading},
		{name: "deny: unknown source", from: AssetStatus("ARCHIVED"), to: AssetStatusFailed},
		{name: "deny: unknown target", from: AssetStatusPending, to: AssetStatus("archived")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := canTransition(tt.from, tt.to)
			if ok != tt.wantOK {
				t.Errorf("canTransition(%s, %s) = %v, want %v", tt.from, tt.to, ok, tt.wantOK)
			}
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("expected ErrInvalidStatus, got %v", err)
			}
		})
	}
}

func TestAssetStatusHelpers(t *testing.T) {
	for _, s := range []AssetStatus{AssetStatusPending, AssetStatusUploading, AssetStatusCompleted, AssetStatusFailed} {
		parsed, err := ParseAssetStatus(string(s))
		if err != nil || parsed != s {
			t.Errorf("ParseAssetStatus(%q) = %q, %v", s, parsed, err)
		}
	}

	if _, err := ParseAssetStatus("pending"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("status parsing is case-sensitive, got %v", err)
	}

	if AssetStatusPending.IsTerminal() || AssetStatusUploading.IsTerminal() {
		t.Error("pending and uploading are not terminal")
	}
	if !AssetStatusCompleted.IsTerminal() || !AssetStatusFailed.IsTerminal() {
		t.Error("completed and failed are terminal")
	}
}
