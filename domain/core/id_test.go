package core

import (
	"errors"
	"testing"
)

func TestNewID(t *testing.T) {
	t.Run("generates unique IDs", func(t *testing.T) {
		seen := make(map[ID]bool)
		for i := 0; i < 100; i++ {
			id := NewID()
			if id.IsEmpty() {
				t.Fatal("NewID returned empty ID")
			}
			if seen[id] {
				t.Fatalf("duplicate ID generated: %s", id)
			}
			seen[id] = true
		}
	})

	t.Run("v7 IDs are time-ordered", func(t *testing.T) {
		a := NewID()
		b := NewID()
		if a.String() > b.String() {
			t.Errorf("expected lexicographic ordering, got %s > %s", a, b)
		}
	})
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID(""); err == nil {
		t.Error("expected error for empty run ID")
	}
	if _, err := ParseRunID("   "); err == nil {
		t.Error("expected error for blank run ID")
	}
	id, err := ParseRunID("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "run-1" {
		t.Errorf("expected run-1, got %s", id)
	}
}

func TestDeriveSeed(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		if DeriveSeed(42, "rows") != DeriveSeed(42, "rows") {
			t.Error("same (seed, name) must derive the same child seed")
		}
	})

	t.Run("independent streams", func(t *testing.T) {
		if DeriveSeed(42, "rows") == DeriveSeed(42, "cols") {
			t.Error("different stream names must derive different seeds")
		}
		if DeriveSeed(42, "rows") == DeriveSeed(43, "rows") {
			t.Error("different base seeds must derive different seeds")
		}
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("fold count error is a configuration error", func(t *testing.T) {
		err := NewFoldCountError(5, 3)
		if !IsConfigurationError(err) {
			t.Error("expected configuration error")
		}
		if !errors.Is(err, ErrInvalidFoldCount) {
			t.Error("expected ErrInvalidFoldCount in chain")
		}
	})

	t.Run("fit error is not structural", func(t *testing.T) {
		err := NewFitError(3, ErrRankDeficient)
		if !IsFitFailure(err) {
			t.Error("expected fit failure")
		}
		if IsConfigurationError(err) || IsDataShapeError(err) {
			t.Error("fit failure must not look like a structural error")
		}
	})

	t.Run("shape error", func(t *testing.T) {
		err := NewShapeError("response length", 60, 59)
		if !IsDataShapeError(err) {
			t.Error("expected data shape error")
		}
	})
}
