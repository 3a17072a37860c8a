package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
)

// These tests need a live Postgres. Set DOCGEN_TEST_DATABASE_URL to run them;
// the schema is reset and re-migrated on every run.
func setupIntegrationStore(t *testing.T) (*PostgresStore, context.Context) {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("DOCGEN_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("DOCGEN_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if err := ApplyMigrations(ctx, db, filepath.Join("..", "..", "db", "migrations")); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	return NewPostgresStore(db), ctx
}

func seedProject(t *testing.T, ctx context.Context, s *PostgresStore, userID, projectID string) {
	t.Helper()

	if err := s.CreateUser(ctx, User{
		ID:           userID,
		FullName:     "Ada Lovelace",
		Email:        userID + "@example.com",
		PasswordHash: "x",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.InsertProject(ctx, Project{
		ID:      projectID,
		UserID:  userID,
		Title:   "Integration",
		DocType: "docx",
		Topic:   "widgets",
		Outline: []outline.Entry{{ID: "section_1", Title: "Intro", Order: 1}},
	}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
}

func sectionSnapshot(text string) map[string]ContentEntry {
	return map[string]ContentEntry{
		"section_1": {Title: "Intro", Content: text, GeneratedAt: time.Now()},
	}
}

// Regenerating a section must append a new revision row, never rewrite the
// existing one, and the newest row must match the snapshot text.
func TestGenerationAppendsRevisions(t *testing.T) {
	s, ctx := setupIntegrationStore(t)
	seedProject(t, ctx, s, "user-gen", "proj-gen")

	if err := s.SaveSectionContent(ctx, "proj-gen", "section_1", sectionSnapshot("first draft")); err != nil {
		t.Fatalf("save section content: %v", err)
	}
	if err := s.SaveSectionContent(ctx, "proj-gen", "section_1", sectionSnapshot("second draft")); err != nil {
		t.Fatalf("save section content again: %v", err)
	}

	revisions, err := s.ListContentRevisions(ctx, "proj-gen", "section_1")
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("revisions = %d, want 2", len(revisions))
	}
	if revisions[0].Text != "first draft" || revisions[1].Text != "second draft" {
		t.Fatalf("revision texts = %q, %q", revisions[0].Text, revisions[1].Text)
	}

	item, err := s.GetProject(ctx, "proj-gen")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got := item.Content["section_1"].Content; got != revisions[len(revisions)-1].Text {
		t.Fatalf("snapshot %q diverged from latest revision %q", got, revisions[len(revisions)-1].Text)
	}
}

// Refinement edits in place: it rewrites the latest revision row instead of
// appending, records the refinements row, and keeps snapshot and latest
// revision equal.
func TestRefinementRewritesLatestRevision(t *testing.T) {
	s, ctx := setupIntegrationStore(t)
	seedProject(t, ctx, s, "user-ref", "proj-ref")

	if err := s.SaveSectionContent(ctx, "proj-ref", "section_1", sectionSnapshot("original")); err != nil {
		t.Fatalf("save section content: %v", err)
	}

	now := time.Now()
	content := sectionSnapshot("refined")
	history := []RefinementEvent{{SectionID: "section_1", Prompt: "tighten it", Timestamp: now}}
	ref := Refinement{
		ProjectID:   "proj-ref",
		SectionID:   "section_1",
		Prompt:      "tighten it",
		UpdatedText: "refined",
		Timestamp:   now,
	}
	if err := s.SaveRefinement(ctx, "proj-ref", content, history, ref); err != nil {
		t.Fatalf("save refinement: %v", err)
	}

	revisions, err := s.ListContentRevisions(ctx, "proj-ref", "section_1")
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("revisions = %d, want 1 (refine must not append)", len(revisions))
	}
	if revisions[0].Text != "refined" {
		t.Fatalf("latest revision = %q, want %q", revisions[0].Text, "refined")
	}

	refinements, err := s.ListRefinements(ctx, "proj-ref")
	if err != nil {
		t.Fatalf("list refinements: %v", err)
	}
	if len(refinements) != 1 || refinements[0].UpdatedText != "refined" {
		t.Fatalf("refinements = %+v", refinements)
	}

	item, err := s.GetProject(ctx, "proj-ref")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got := item.Content["section_1"].Content; got != revisions[0].Text {
		t.Fatalf("snapshot %q diverged from latest revision %q", got, revisions[0].Text)
	}
}

// Deleting a project must take its revision and refinement rows with it.
func TestDeleteProjectCascades(t *testing.T) {
	s, ctx := setupIntegrationStore(t)
	seedProject(t, ctx, s, "user-del", "proj-del")

	if err := s.SaveSectionContent(ctx, "proj-del", "section_1", sectionSnapshot("body")); err != nil {
		t.Fatalf("save section content: %v", err)
	}
	now := time.Now()
	if err := s.SaveRefinement(ctx, "proj-del", sectionSnapshot("body 2"),
		[]RefinementEvent{{SectionID: "section_1", Prompt: "p", Timestamp: now}},
		Refinement{ProjectID: "proj-del", SectionID: "section_1", Prompt: "p", UpdatedText: "body 2", Timestamp: now},
	); err != nil {
		t.Fatalf("save refinement: %v", err)
	}

	if err := s.DeleteProject(ctx, "proj-del"); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	var contentRows, refinementRows int
	if err := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM content WHERE project_id='proj-del'`).Scan(&contentRows); err != nil {
		t.Fatalf("count content rows: %v", err)
	}
	if err := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM refinements WHERE project_id='proj-del'`).Scan(&refinementRows); err != nil {
		t.Fatalf("count refinement rows: %v", err)
	}
	if contentRows != 0 || refinementRows != 0 {
		t.Fatalf("cascade left %d content rows and %d refinement rows", contentRows, refinementRows)
	}
}
