//go:build integration
// +build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fastenhq/javacg/internal/testutil"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	testDB := testutil.RequireDB(t)
	return &Store{pool: testDB.Pool}
}

func TestIntegration_SaveAndGetRevision(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	path := "mvn/s/slf4j-api/slf4j-api_org.slf4j_1.7.29.json"
	rev := &Revision{
		GroupID:       "org.slf4j",
		ArtifactID:    "slf4j-api",
		Version:       "1.7.29",
		Status:        StatusCompleted,
		InternalCalls: 42,
		ExternalCalls: 17,
		OutputPath:    &path,
	}

	if err := s.SaveRevision(ctx, rev); err != nil {
		t.Fatalf("SaveRevision() error: %v", err)
	}
	if rev.ID == uuid.Nil {
		t.Fatal("SaveRevision() should assign an ID")
	}

	got, err := s.GetRevision(ctx, rev.ID)
	if err != nil {
		t.Fatalf("GetRevision() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetRevision() returned nil")
	}
	if got.GroupID != "org.slf4j" || got.InternalCalls != 42 {
		t.Errorf("GetRevision() = %+v", got)
	}
}

func TestIntegration_SaveRevision_UpsertByCoordinate(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kind := "AnalysisFailure"
	first := &Revision{
		GroupID:     "com.example",
		ArtifactID:  "demo",
		Version:     "1.0.0",
		Status:      StatusFailed,
		FailureKind: &kind,
	}
	if err := s.SaveRevision(ctx, first); err != nil {
		t.Fatalf("SaveRevision() error: %v", err)
	}

	// A retry of the same coordinate replaces the outcome
	second := &Revision{
		GroupID:       "com.example",
		ArtifactID:    "demo",
		Version:       "1.0.0",
		Status:        StatusCompleted,
		InternalCalls: 5,
	}
	if err := s.SaveRevision(ctx, second); err != nil {
		t.Fatalf("SaveRevision() retry error: %v", err)
	}

	got, err := s.GetRevisionByCoordinate(ctx, "com.example", "demo", "1.0.0")
	if err != nil {
		t.Fatalf("GetRevisionByCoordinate() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetRevisionByCoordinate() returned nil")
	}
	if got.Status != StatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
	if got.FailureKind != nil {
		t.Errorf("FailureKind = %v, want nil after successful retry", *got.FailureKind)
	}
}

func TestIntegration_GetRevision_NotFound(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got, err := s.GetRevision(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GetRevision() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetRevision() = %+v, want nil for unknown ID", got)
	}
}

func TestIntegration_ListRevisions(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i, version := range []string{"1.0.0", "1.1.0", "1.2.0"} {
		rev := &Revision{
			GroupID:       "com.example",
			ArtifactID:    "listed",
			Version:       version,
			Status:        StatusCompleted,
			InternalCalls: i,
		}
		if err := s.SaveRevision(ctx, rev); err != nil {
			t.Fatalf("SaveRevision() error: %v", err)
		}
	}

	revs, err := s.ListRevisions(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListRevisions() error: %v", err)
	}
	if len(revs) != 2 {
		t.Errorf("len(revs) = %d, want 2", len(revs))
	}
}

func TestIntegration_GetStats(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kind := "NotFound"
	records := []*Revision{
		{GroupID: "g", ArtifactID: "ok", Version: "1", Status: StatusCompleted},
		{GroupID: "g", ArtifactID: "empty", Version: "1", Status: StatusEmpty},
		{GroupID: "g", ArtifactID: "gone", Version: "1", Status: StatusFailed, FailureKind: &kind},
		{GroupID: "g", ArtifactID: "gone", Version: "2", Status: StatusFailed, FailureKind: &kind},
	}
	for _, rev := range records {
		if err := s.SaveRevision(ctx, rev); err != nil {
			t.Fatalf("SaveRevision() error: %v", err)
		}
	}

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Completed != 1 || stats.Empty != 1 || stats.Failed != 2 {
		t.Errorf("counts = %d/%d/%d, want 1/1/2", stats.Completed, stats.Empty, stats.Failed)
	}
	if stats.Failures["NotFound"] != 2 {
		t.Errorf("Failures[NotFound] = %d, want 2", stats.Failures["NotFound"])
	}
}
