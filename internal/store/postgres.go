package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.FullName, user.Email, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, password_hash, created_at
		FROM users
		WHERE email=$1
	`, email).Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, password_hash, created_at
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

const projectColumns = `id, user_id, title, description, doc_type, topic, outline, content, refinement_history, feedback, created_at, updated_at`

func (s *PostgresStore) InsertProject(ctx context.Context, item Project) error {
	outlineJSON, contentJSON, historyJSON, feedbackJSON, err := marshalProjectColumns(item)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, title, description, doc_type, topic, outline, content, refinement_history, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, item.ID, item.UserID, item.Title, item.Description, item.DocType, item.Topic,
		outlineJSON, contentJSON, historyJSON, feedbackJSON)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id=$1`, projectID)
	return scanProject(row)
}

func (s *PostgresStore) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id=$1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		item, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateProjectMeta(ctx context.Context, projectID, title, description, topic string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET title=$2, description=$3, topic=$4, updated_at=NOW()
		WHERE id=$1
	`, projectID, title, description, topic)
	if err != nil {
		return fmt.Errorf("update project meta: %w", err)
	}
	return nil
}

// DeleteProject removes the project; content and refinement rows go with it
// via ON DELETE CASCADE.
func (s *PostgresStore) DeleteProject(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id=$1`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveOutline(ctx context.Context, projectID string, entries []outline.Entry, topic, docType string) error {
	outlineJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE projects
		SET outline=$2, topic=$3, doc_type=$4, updated_at=NOW()
		WHERE id=$1
	`, projectID, outlineJSON, topic, docType)
	if err != nil {
		return fmt.Errorf("save outline: %w", err)
	}
	return nil
}

// SaveSectionContent writes a single section: the full content snapshot plus
// a fresh revision row appended for that section, in one transaction so the
// two representations cannot drift. Every generation write appends; the
// revision history only ever grows.
func (s *PostgresStore) SaveSectionContent(ctx context.Context, projectID, sectionID string, content map[string]ContentEntry) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin section content tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET content=$2, updated_at=NOW() WHERE id=$1
	`, projectID, contentJSON); err != nil {
		return fmt.Errorf("save section content: %w", err)
	}
	if err := insertRevision(ctx, tx, projectID, sectionID, content[sectionID].Content); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit section content tx: %w", err)
	}
	return nil
}

// SaveGeneratedContent replaces the whole content snapshot and records one
// revision per generated section. sectionIDs carries outline order so the
// revision rows are inserted in the same order the document reads.
func (s *PostgresStore) SaveGeneratedContent(ctx context.Context, projectID string, content map[string]ContentEntry, sectionIDs []string) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin generated content tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET content=$2, updated_at=NOW() WHERE id=$1
	`, projectID, contentJSON); err != nil {
		return fmt.Errorf("save generated content: %w", err)
	}
	for _, sectionID := range sectionIDs {
		if err := insertRevision(ctx, tx, projectID, sectionID, content[sectionID].Content); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit generated content tx: %w", err)
	}
	return nil
}

// SaveRefinement applies the four refine mutations atomically: content
// snapshot, refinement history snapshot, the append-only refinements row, and
// the latest content revision row.
func (s *PostgresStore) SaveRefinement(ctx context.Context, projectID string, content map[string]ContentEntry, history []RefinementEvent, ref Refinement) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal refinement history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refinement tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET content=$2, refinement_history=$3, updated_at=NOW() WHERE id=$1
	`, projectID, contentJSON, historyJSON); err != nil {
		return fmt.Errorf("save refined content: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refinements (project_id, section_id, prompt, updated_text, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, ref.ProjectID, ref.SectionID, ref.Prompt, ref.UpdatedText, ref.Timestamp); err != nil {
		return fmt.Errorf("insert refinement: %w", err)
	}
	if err := upsertLatestRevision(ctx, tx, projectID, ref.SectionID, ref.UpdatedText); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refinement tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveFeedback(ctx context.Context, projectID string, feedback map[string]FeedbackEntry) error {
	feedbackJSON, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE projects SET feedback=$2, updated_at=NOW() WHERE id=$1
	`, projectID, feedbackJSON)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRefinements(ctx context.Context, projectID string) ([]Refinement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, section_id, prompt, updated_text, timestamp
		FROM refinements
		WHERE project_id=$1
		ORDER BY id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list refinements: %w", err)
	}
	defer rows.Close()

	items := make([]Refinement, 0)
	for rows.Next() {
		var item Refinement
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.SectionID, &item.Prompt, &item.UpdatedText, &item.Timestamp); err != nil {
			return nil, fmt.Errorf("scan refinement: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refinements: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListContentRevisions(ctx context.Context, projectID, sectionID string) ([]ContentRevision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, section_id, text, created_at, updated_at
		FROM content
		WHERE project_id=$1 AND section_id=$2
		ORDER BY id
	`, projectID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list content revisions: %w", err)
	}
	defer rows.Close()

	items := make([]ContentRevision, 0)
	for rows.Next() {
		var item ContentRevision
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.SectionID, &item.Text, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content revision: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content revisions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.full_name, u.email, u.password_hash, u.created_at
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// insertRevision appends one content revision row. Generation writes always
// append; the newly inserted row becomes the latest and mirrors the snapshot.
func insertRevision(ctx context.Context, tx *sql.Tx, projectID, sectionID, text string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO content (project_id, section_id, text)
		VALUES ($1, $2, $3)
	`, projectID, sectionID, text); err != nil {
		return fmt.Errorf("insert content revision: %w", err)
	}
	return nil
}

// upsertLatestRevision updates the newest content row for the section, or
// inserts the first one. Refinement edits text in place, so it rewrites the
// latest revision rather than appending a new one; the latest row always
// mirrors the snapshot text.
func upsertLatestRevision(ctx context.Context, tx *sql.Tx, projectID, sectionID, text string) error {
	var latestID int64
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM content
		WHERE project_id=$1 AND section_id=$2
		ORDER BY id DESC
		LIMIT 1
	`, projectID, sectionID).Scan(&latestID)
	if errors.Is(err, sql.ErrNoRows) {
		return insertRevision(ctx, tx, projectID, sectionID, text)
	}
	if err != nil {
		return fmt.Errorf("find latest content revision: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE content SET text=$2, updated_at=NOW() WHERE id=$1
	`, latestID, text); err != nil {
		return fmt.Errorf("update content revision: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		item         Project
		outlineJSON  []byte
		contentJSON  []byte
		historyJSON  []byte
		feedbackJSON []byte
	)
	err := row.Scan(&item.ID, &item.UserID, &item.Title, &item.Description, &item.DocType, &item.Topic,
		&outlineJSON, &contentJSON, &historyJSON, &feedbackJSON, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	if len(outlineJSON) > 0 {
		if err := json.Unmarshal(outlineJSON, &item.Outline); err != nil {
			return Project{}, fmt.Errorf("unmarshal outline: %w", err)
		}
	}
	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &item.Content); err != nil {
			return Project{}, fmt.Errorf("unmarshal content: %w", err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &item.RefinementHistory); err != nil {
			return Project{}, fmt.Errorf("unmarshal refinement history: %w", err)
		}
	}
	if len(feedbackJSON) > 0 {
		if err := json.Unmarshal(feedbackJSON, &item.Feedback); err != nil {
			return Project{}, fmt.Errorf("unmarshal feedback: %w", err)
		}
	}
	if item.Content == nil {
		item.Content = make(map[string]ContentEntry)
	}
	if item.Feedback == nil {
		item.Feedback = make(map[string]FeedbackEntry)
	}
	return item, nil
}

func marshalProjectColumns(item Project) (outlineJSON, contentJSON, historyJSON, feedbackJSON []byte, err error) {
	if item.Outline == nil {
		item.Outline = []outline.Entry{}
	}
	if item.Content == nil {
		item.Content = map[string]ContentEntry{}
	}
	if item.RefinementHistory == nil {
		item.RefinementHistory = []RefinementEvent{}
	}
	if item.Feedback == nil {
		item.Feedback = map[string]FeedbackEntry{}
	}
	if outlineJSON, err = json.Marshal(item.Outline); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal outline: %w", err)
	}
	if contentJSON, err = json.Marshal(item.Content); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal content: %w", err)
	}
	if historyJSON, err = json.Marshal(item.RefinementHistory); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal refinement history: %w", err)
	}
	if feedbackJSON, err = json.Marshal(item.Feedback); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal feedback: %w", err)
	}
	return outlineJSON, contentJSON, historyJSON, feedbackJSON, nil
}
