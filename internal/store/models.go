package store

import (
	"time"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
)

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Project is the aggregate the whole service revolves around. Outline,
// Content, RefinementHistory and Feedback are stored as JSONB snapshot
// columns; Content and refinements additionally have normalized row tables
// kept in step by the transactional write paths below.
type Project struct {
	ID                string
	UserID            string
	Title             string
	Description       string
	DocType           string // "docx" or "pptx"
	Topic             string
	Outline           []outline.Entry
	Content           map[string]ContentEntry
	RefinementHistory []RefinementEvent
	Feedback          map[string]FeedbackEntry
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContentEntry is the snapshot value stored per section id in the project's
// content column. RefinedAt is set only after the first refinement.
type ContentEntry struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	GeneratedAt time.Time  `json:"generated_at"`
	RefinedAt   *time.Time `json:"refined_at,omitempty"`
}

// RefinementEvent is one entry of the append-only refinement history column.
type RefinementEvent struct {
	SectionID string    `json:"section_id"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackEntry is the per-section feedback snapshot. Like is a tri-state:
// nil means no reaction recorded. Comments only grow.
type FeedbackEntry struct {
	Like     *bool     `json:"like,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
}

type Comment struct {
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// ContentRevision is a normalized row in the content table. The latest row
// per (project, section) mirrors the snapshot text.
type ContentRevision struct {
	ID        int64
	ProjectID string
	SectionID string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Refinement is an append-only audit row recording one refine call.
type Refinement struct {
	ID          int64
	ProjectID   string
	SectionID   string
	Prompt      string
	UpdatedText string
	Timestamp   time.Time
}

// RefreshSession backs the Postgres fallback for refresh tokens when Redis
// is not configured.
type RefreshSession struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
}
