package memory

import (
	"context"
	"errors"
	"testing"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

func TestIssueStore_InsertBulkAndGet(t *testing.T) {
	store := NewIssueStore()
	ctx := context.Background()

	issues := []domain.ParseIssue{
		{Message: "invalid json: x", InputFile: "a.jsonl", InputLineNumber: 2, RawLine: "{", Kind: domain.IssueKindStructural},
		{Message: "unsupported type: burn", InputFile: "a.jsonl", InputLineNumber: 5, RawLine: `{"type":"burn"}`, Kind: domain.IssueKindValidation},
	}

	if err := store.InsertBulk(ctx, "run-1", issues); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 2 || got[0].InputLineNumber != 2 || got[1].InputLineNumber != 5 {
		t.Errorf("unexpected issues: %+v", got)
	}

	if err := store.InsertBulk(ctx, "run-1", issues); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	empty, err := store.GetByRunID(ctx, "run-2")
	if err != nil || len(empty) != 0 {
		t.Errorf("GetByRunID for unknown run = (%v, %v)", empty, err)
	}

	if err := store.InsertBulk(ctx, "", issues); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
