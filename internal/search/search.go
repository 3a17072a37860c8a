package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultProject ResultType = "project"
	ResultSection ResultType = "section"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type      ResultType `json:"type"`
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Snippet   string     `json:"snippet"`
	ProjectID string     `json:"projectId"`
	SectionID string     `json:"sectionId,omitempty"`
}

// Query describes a search request. UserID is mandatory: results never cross
// an ownership boundary.
type Query struct {
	Text       string
	UserID     string
	FilterType ResultType // empty = all types
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ProjectRecord is the data we index for a project.
type ProjectRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Topic       string `json:"topic"`
	DocType     string `json:"docType"`
}

// SectionRecord is the data we index for one section's content. ID is
// projectID:sectionID so re-generation overwrites the previous text.
type SectionRecord struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	SectionID string `json:"sectionId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}
