package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stigmahq/stigma-core/internal/model"
)

func TestClaimRepository_InsertAndObserveAll(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ObserveAll(ctx)
	if r := recv(t, ch); r.Err != nil || len(r.Value) != 0 {
		t.Fatalf("expected empty initial emission, got %+v", r)
	}

	claim := model.NewClaim("Sea levels", "20cm rise since 1900", "coastal")
	if err := repo.Insert(ctx, claim); err != nil {
		t.Fatalf("insert: %v", err)
	}

	r := recv(t, ch)
	if r.Err != nil {
		t.Fatalf("emission error: %v", r.Err)
	}
	if len(r.Value) != 1 || r.Value[0].ID != claim.ID {
		t.Errorf("expected the inserted claim, got %+v", r.Value)
	}
}

func TestClaimRepository_ObserveByID_AbsentThenPresent(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	claim := model.NewClaim("t", "d", "c")

	// Subscribe before the claim exists.
	ch := repo.ObserveByID(ctx, claim.ID)

	first := recv(t, ch)
	if first.Err != nil {
		t.Fatalf("first emission error: %v", first.Err)
	}
	if first.Value != nil {
		t.Fatalf("expected absence before insert, got %+v", first.Value)
	}

	if err := repo.Insert(ctx, claim); err != nil {
		t.Fatalf("insert: %v", err)
	}

	second := recv(t, ch)
	if second.Err != nil {
		t.Fatalf("second emission error: %v", second.Err)
	}
	if second.Value == nil || second.Value.ID != claim.ID {
		t.Errorf("expected presence after insert, got %+v", second.Value)
	}
}

func TestClaimRepository_ObserveAllConsistentWithGetAll(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ObserveAll(ctx)
	recv(t, ch) // initial

	// A sequence of writes: inserts, an update, a delete.
	claims := make([]model.Claim, 3)
	for i := range claims {
		claims[i] = model.NewClaim("claim", "d", "c")
		if err := repo.Insert(ctx, claims[i]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	claims[0].Status = model.StatusAnalyzing
	if err := repo.Update(ctx, claims[0]); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Delete(ctx, claims[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	direct, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}

	// The observation's last value must converge on the direct scan.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case r := <-ch:
			if r.Err != nil {
				t.Fatalf("emission error: %v", r.Err)
			}
			if reflect.DeepEqual(r.Value, direct) {
				return
			}
		case <-deadline:
			t.Fatalf("observation never converged on the direct scan result")
		}
	}
}

func TestClaimRepository_ObserveByStatus(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pending := model.NewClaim("p", "d", "c")
	analyzing := model.NewClaim("a", "d", "c")
	analyzing.Status = model.StatusAnalyzing
	if err := repo.InsertMany(ctx, []model.Claim{pending, analyzing}); err != nil {
		t.Fatalf("insert many: %v", err)
	}

	ch := repo.ObserveByStatus(ctx, model.StatusAnalyzing)
	r := recv(t, ch)
	if r.Err != nil {
		t.Fatalf("emission error: %v", r.Err)
	}
	if len(r.Value) != 1 || r.Value[0].ID != analyzing.ID {
		t.Errorf("expected only the analyzing claim, got %+v", r.Value)
	}
}

func TestClaimRepository_InsertRejectsInvalidStatus(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx := context.Background()

	claim := model.NewClaim("t", "d", "c")
	claim.Status = "QUEUED"

	err := repo.Insert(ctx, claim)
	if !errors.Is(err, model.ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation, got %v", err)
	}

	// Nothing may have been written.
	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected insert must not persist, found %d claims", len(all))
	}
}

func TestClaimRepository_UpdateRefreshesUpdatedAt(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx := context.Background()

	claim := model.NewClaim("t", "d", "c")
	if err := repo.Insert(ctx, claim); err != nil {
		t.Fatalf("insert: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	claim.Status = model.StatusAnalyzing
	if err := repo.Update(ctx, claim); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(all))
	}
	got := all[0]
	if got.Status != model.StatusAnalyzing {
		t.Errorf("status not persisted: %s", got.Status)
	}
	if got.UpdatedAt <= claim.CreatedAt {
		t.Errorf("UpdatedAt not refreshed: created=%d updated=%d", got.CreatedAt, got.UpdatedAt)
	}
	if got.CreatedAt != claim.CreatedAt {
		t.Errorf("CreatedAt must be immutable: %d != %d", got.CreatedAt, claim.CreatedAt)
	}
}

func TestClaimRepository_DeleteDoesNotCascade(t *testing.T) {
	s := openTestStore(t)
	claims := NewClaimRepository(s, nil)
	analyses := NewAnalysisRepository(s, nil)
	ctx := context.Background()

	claim := model.NewClaim("t", "d", "c")
	if err := claims.Insert(ctx, claim); err != nil {
		t.Fatalf("insert claim: %v", err)
	}
	if err := analyses.Insert(ctx, fullAnalysis(claim.ID, 1700000000000, 0.5)); err != nil {
		t.Fatalf("insert analysis: %v", err)
	}

	if err := claims.Delete(ctx, claim.ID); err != nil {
		t.Fatalf("delete claim: %v", err)
	}

	remaining, err := analyses.GetAll(ctx)
	if err != nil {
		t.Fatalf("get analyses: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("analysis rows must survive claim deletion, got %d", len(remaining))
	}
	// The reference is now dangling, and that is the contract.
	if remaining[0].ClaimID != claim.ID {
		t.Errorf("unexpected claim reference %q", remaining[0].ClaimID)
	}
}

func TestClaimRepository_DeleteAll(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Insert(ctx, model.NewClaim("t", "d", "c")); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty store, got %d claims", len(all))
	}
}

func TestClaimRepository_SyncWithRemoteUnimplemented(t *testing.T) {
	repo := NewClaimRepository(openTestStore(t), nil)
	ctx := context.Background()

	claim := model.NewClaim("t", "d", "c")
	if err := repo.Insert(ctx, claim); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.SyncWithRemote(ctx); !errors.Is(err, ErrUnimplemented) {
		t.Errorf("expected ErrUnimplemented, got %v", err)
	}

	// The placeholder must never corrupt local state.
	all, err := repo.GetAll(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("local state disturbed by sync placeholder: %v, %d claims", err, len(all))
	}
}
