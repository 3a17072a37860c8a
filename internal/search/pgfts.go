package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
// The tsvectors are computed inline; project and content volumes here do not
// justify materialized fts columns.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across projects and content rows using
// plainto_tsquery and ts_rank, scoped to the querying user.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	const tsQuery = "plainto_tsquery('english', $1)"
	args := []any{q.Text, q.UserID}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultProject {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'project'::text AS type, p.id, p.title,
				ts_headline('english', coalesce(p.description, '') || ' ' || coalesce(p.topic, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				p.id AS project_id, ''::text AS section_id,
				ts_rank(to_tsvector('english', p.title || ' ' || coalesce(p.description, '') || ' ' || coalesce(p.topic, '')), %s) AS rank
			FROM projects p
			WHERE p.user_id = $2
				AND to_tsvector('english', p.title || ' ' || coalesce(p.description, '') || ' ' || coalesce(p.topic, '')) @@ %s`,
			tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultSection {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'section'::text AS type, c.project_id || ':' || c.section_id AS id, c.section_id AS title,
				ts_headline('english', c.text, %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				c.project_id, c.section_id,
				ts_rank(to_tsvector('english', c.text), %s) AS rank
			FROM content c
			JOIN projects p ON p.id = c.project_id
			WHERE p.user_id = $2
				AND c.id = (SELECT max(c2.id) FROM content c2 WHERE c2.project_id = c.project_id AND c2.section_id = c.section_id)
				AND to_tsvector('english', c.text) @@ %s`,
			tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, project_id, section_id
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.ProjectID, &r.SectionID); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}
