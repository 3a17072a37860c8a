package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ridhiagarwalla/AI-doc-Generator/internal/auth"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/authpw"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/compose"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/export"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/outline"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/search"
	"github.com/ridhiagarwalla/AI-doc-Generator/internal/store"
)

// dataStore is the persistence surface the service needs. *store.PostgresStore
// satisfies it; tests swap in fakes.
type dataStore interface {
	CreateUser(ctx context.Context, user store.User) error
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, userID string) (store.User, error)

	InsertProject(ctx context.Context, item store.Project) error
	GetProject(ctx context.Context, projectID string) (store.Project, error)
	ListProjects(ctx context.Context, userID string) ([]store.Project, error)
	UpdateProjectMeta(ctx context.Context, projectID, title, description, topic string) error
	DeleteProject(ctx context.Context, projectID string) error

	SaveOutline(ctx context.Context, projectID string, entries []outline.Entry, topic, docType string) error
	SaveSectionContent(ctx context.Context, projectID, sectionID string, content map[string]store.ContentEntry) error
	SaveGeneratedContent(ctx context.Context, projectID string, content map[string]store.ContentEntry, sectionIDs []string) error
	SaveRefinement(ctx context.Context, projectID string, content map[string]store.ContentEntry, history []store.RefinementEvent, ref store.Refinement) error
	SaveFeedback(ctx context.Context, projectID string, feedback map[string]store.FeedbackEntry) error

	Ping(ctx context.Context) error
}

// SessionStore holds refresh tokens: Redis when configured, Postgres
// otherwise.
type SessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

// Session is the authenticated principal plus the tokens minted for it.
type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
}

type Service struct {
	store           dataStore
	sessions        SessionStore
	passwords       *authpw.Service
	composer        *compose.Service
	search          *search.Service
	secret          []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	generateTimeout time.Duration
}

type ServiceConfig struct {
	Store           dataStore
	Sessions        SessionStore
	Passwords       *authpw.Service
	Composer        *compose.Service
	Search          *search.Service // may be nil
	JWTSecret       string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	GenerateTimeout time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.GenerateTimeout == 0 {
		cfg.GenerateTimeout = 60 * time.Second
	}
	return &Service{
		store:           cfg.Store,
		sessions:        cfg.Sessions,
		passwords:       cfg.Passwords,
		composer:        cfg.Composer,
		search:          cfg.Search,
		secret:          []byte(cfg.JWTSecret),
		accessTTL:       cfg.AccessTTL,
		refreshTTL:      cfg.RefreshTTL,
		generateTimeout: cfg.GenerateTimeout,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// --- auth ---

func (s *Service) Register(ctx context.Context, fullName, email, password string) (Session, error) {
	user, err := s.passwords.Register(ctx, authpw.RegisterRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
	if err != nil {
		var validation authpw.ValidationError
		if errors.As(err, &validation) {
			return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", validation.Message, nil)
		}
		if errors.Is(err, authpw.ErrEmailTaken) {
			return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Email already registered", nil)
		}
		return Session{}, fmt.Errorf("register: %w", err)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.passwords.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, authpw.ErrInvalidCredentials) {
			return Session{}, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	token, err := auth.IssueToken(s.secret, user.ID, user.FullName, s.accessTTL)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh := auth.NewRefreshToken()
	expiresAt := time.Now().Add(s.refreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, expiresAt); err != nil {
		return Session{}, fmt.Errorf("save refresh session: %w", err)
	}
	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.FullName,
		Email:        user.Email,
	}, nil
}

// SessionFromToken resolves a bearer token into a session without touching
// storage.
func (s *Service) SessionFromToken(_ context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:    token,
		UserID:   claims.Subject,
		UserName: claims.Name,
	}, nil
}

// Refresh rotates the refresh token and mints a fresh access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	hash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, hash)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
	}
	if err := s.sessions.RevokeRefreshSession(ctx, hash); err != nil {
		log.Printf("app: revoke rotated refresh token: %v", err)
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
}

func (s *Service) Me(ctx context.Context, session Session) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":         user.ID,
		"full_name":  user.FullName,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	}, nil
}

// --- projects ---

func (s *Service) CreateProject(ctx context.Context, session Session, title, description, docType, topic string) (store.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return store.Project{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	if docType == "" {
		docType = compose.DocTypeDocument
	}
	if docType != compose.DocTypeDocument && docType != compose.DocTypePresentation {
		return store.Project{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "doc_type must be docx or pptx", nil)
	}

	now := time.Now()
	item := store.Project{
		ID:          uuid.NewString(),
		UserID:      session.UserID,
		Title:       title,
		Description: description,
		DocType:     docType,
		Topic:       topic,
		Content:     map[string]store.ContentEntry{},
		Feedback:    map[string]store.FeedbackEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertProject(ctx, item); err != nil {
		return store.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.indexProject(item)
	return item, nil
}

func (s *Service) ListProjects(ctx context.Context, session Session) ([]store.Project, error) {
	items, err := s.store.ListProjects(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return items, nil
}

func (s *Service) GetProject(ctx context.Context, session Session, projectID string) (store.Project, error) {
	return s.ownedProject(ctx, session, projectID)
}

func (s *Service) UpdateProject(ctx context.Context, session Session, projectID, title, description, topic string) (store.Project, error) {
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return store.Project{}, err
	}
	if strings.TrimSpace(title) != "" {
		item.Title = strings.TrimSpace(title)
	}
	if description != "" {
		item.Description = description
	}
	if topic != "" {
		item.Topic = topic
	}
	if err := s.store.UpdateProjectMeta(ctx, item.ID, item.Title, item.Description, item.Topic); err != nil {
		return store.Project{}, fmt.Errorf("update project: %w", err)
	}
	s.indexProject(item)
	return item, nil
}

func (s *Service) DeleteProject(ctx context.Context, session Session, projectID string) error {
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, item.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if s.search != nil {
		s.search.DeleteProject(item.ID)
	}
	return nil
}

// ownedProject loads a project and enforces ownership. A project belonging to
// someone else reads as 404, never 403, so ids cannot be probed.
func (s *Service) ownedProject(ctx context.Context, session Session, projectID string) (store.Project, error) {
	item, err := s.store.GetProject(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Project{}, domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
	}
	if err != nil {
		return store.Project{}, fmt.Errorf("get project: %w", err)
	}
	if item.UserID != session.UserID {
		return store.Project{}, domainError(http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
	}
	return item, nil
}

// --- generation ---

// GenerateOutline asks the model for an outline and persists it along with
// the topic and doc type. It cannot fail on model errors: the composer
// degrades to the stock outline.
func (s *Service) GenerateOutline(ctx context.Context, session Session, projectID, topic, docType string) ([]outline.Entry, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "topic is required", nil)
	}
	if docType != compose.DocTypeDocument && docType != compose.DocTypePresentation {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "doc_type must be docx or pptx", nil)
	}

	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	titles := s.composer.Outline(tctx, topic, docType)
	entries := compose.Entries(titles, docType)
	if dupes := outline.Collisions(entries); len(dupes) > 0 {
		log.Printf("app: outline for project %s has colliding section ids: %v", item.ID, dupes)
	}

	if err := s.store.SaveOutline(ctx, item.ID, entries, topic, docType); err != nil {
		return nil, fmt.Errorf("save outline: %w", err)
	}
	return entries, nil
}

// GenerateAll generates content for every outline entry and replaces the
// project's content in one transactional write. Per-section model failures
// degrade to placeholders; the operation itself only fails on storage.
func (s *Service) GenerateAll(ctx context.Context, session Session, projectID string) (map[string]store.ContentEntry, error) {
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return nil, err
	}
	if len(item.Outline) == 0 {
		return nil, domainError(http.StatusBadRequest, "INVALID_STATE", "Project outline is empty", nil)
	}
	if strings.TrimSpace(item.Topic) == "" {
		return nil, domainError(http.StatusBadRequest, "INVALID_STATE", "Project topic is required", nil)
	}

	tctx, cancel := context.WithTimeout(ctx, s.generateTimeout*time.Duration(len(item.Outline)))
	defer cancel()

	content := make(map[string]store.ContentEntry, len(item.Outline))
	sectionIDs := make([]string, 0, len(item.Outline))
	for _, entry := range item.Outline {
		sectionID := entry.SectionID()
		text := s.composer.Section(tctx, item.Topic, entry.DisplayTitle(), item.DocType, "")
		content[sectionID] = store.ContentEntry{
			Title:       entry.DisplayTitle(),
			Content:     text,
			GeneratedAt: time.Now(),
		}
		sectionIDs = append(sectionIDs, sectionID)
	}

	if err := s.store.SaveGeneratedContent(ctx, item.ID, content, sectionIDs); err != nil {
		return nil, fmt.Errorf("save generated content: %w", err)
	}
	s.indexSections(item, content)
	return content, nil
}

// GenerateSection generates (or regenerates) one section. Existing text for
// the section is passed to the model as revision context. The content map is
// keyed by the id the caller sent, matching how it will be looked up later.
func (s *Service) GenerateSection(ctx context.Context, session Session, projectID, sectionID string) (string, error) {
	if strings.TrimSpace(sectionID) == "" {
		return "", domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "section_id is required", nil)
	}
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return "", err
	}
	entry, ok := outline.Find(item.Outline, sectionID)
	if !ok {
		return "", domainError(http.StatusNotFound, "NOT_FOUND", "Section not found", nil)
	}

	existing := ""
	if current, ok := item.Content[sectionID]; ok {
		existing = current.Content
	}

	tctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()
	text := s.composer.Section(tctx, item.Topic, entry.DisplayTitle(), item.DocType, existing)

	content := item.Content
	if content == nil {
		content = map[string]store.ContentEntry{}
	}
	content[sectionID] = store.ContentEntry{
		Title:       entry.DisplayTitle(),
		Content:     text,
		GeneratedAt: time.Now(),
	}

	if err := s.store.SaveSectionContent(ctx, item.ID, sectionID, content); err != nil {
		return "", fmt.Errorf("save section content: %w", err)
	}
	s.indexSections(item, content)
	return text, nil
}

// Refine rewrites one section per the user's instruction and records the
// refinement in all four places atomically: content snapshot, history
// snapshot, refinements row and the latest content revision.
func (s *Service) Refine(ctx context.Context, session Session, projectID, sectionID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "refinement_prompt is required", nil)
	}
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return "", err
	}
	current, ok := item.Content[sectionID]
	if !ok {
		return "", domainError(http.StatusNotFound, "NOT_FOUND", "Section content not found", nil)
	}

	tctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()
	refined := s.composer.Refine(tctx, current.Content, prompt, item.Topic, current.Title)

	now := time.Now()
	current.Content = refined
	current.RefinedAt = &now

	content := item.Content
	content[sectionID] = current

	history := append(item.RefinementHistory, store.RefinementEvent{
		SectionID: sectionID,
		Prompt:    prompt,
		Timestamp: now,
	})

	ref := store.Refinement{
		ProjectID:   item.ID,
		SectionID:   sectionID,
		Prompt:      prompt,
		UpdatedText: refined,
		Timestamp:   now,
	}
	if err := s.store.SaveRefinement(ctx, item.ID, content, history, ref); err != nil {
		return "", fmt.Errorf("save refinement: %w", err)
	}
	s.indexSections(item, content)
	return refined, nil
}

// Feedback records a reaction and/or comment for a section. A like only
// changes when the request carries one; comments are append-only.
func (s *Service) Feedback(ctx context.Context, session Session, projectID, sectionID string, like *bool, comment string) error {
	if strings.TrimSpace(sectionID) == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "section_id is required", nil)
	}
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return err
	}

	feedback := item.Feedback
	if feedback == nil {
		feedback = map[string]store.FeedbackEntry{}
	}
	entry := feedback[sectionID]
	if like != nil {
		entry.Like = like
	}
	if comment != "" {
		entry.Comments = append(entry.Comments, store.Comment{
			Comment:   comment,
			Timestamp: time.Now(),
		})
	}
	feedback[sectionID] = entry

	if err := s.store.SaveFeedback(ctx, item.ID, feedback); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// --- export ---

// Export renders the project in the requested format. docx and pptx are
// bound to the project's doc type; pdf prints either kind.
func (s *Service) Export(ctx context.Context, session Session, projectID string, format export.Format) (*export.Result, error) {
	item, err := s.ownedProject(ctx, session, projectID)
	if err != nil {
		return nil, err
	}
	switch format {
	case export.FormatDOCX:
		if item.DocType != compose.DocTypeDocument {
			return nil, domainError(http.StatusBadRequest, "INVALID_STATE", "Project is not a Word document", nil)
		}
	case export.FormatPPTX:
		if item.DocType != compose.DocTypePresentation {
			return nil, domainError(http.StatusBadRequest, "INVALID_STATE", "Project is not a PowerPoint presentation", nil)
		}
	case export.FormatPDF:
	default:
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unsupported export format", nil)
	}
	if len(item.Content) == 0 {
		return nil, domainError(http.StatusBadRequest, "INVALID_STATE", "No content to export", nil)
	}

	text := make(map[string]string, len(item.Content))
	for id, entry := range item.Content {
		text[id] = entry.Content
	}
	doc := export.BuildDocument(item.Title, item.Topic, item.Outline, text)

	result, err := export.Render(doc, format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return result, nil
}

// --- search ---

func (s *Service) Search(_ context.Context, session Session, text, filterType string, limit, offset int) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}
	}
	return s.search.Search(search.Query{
		Text:       text,
		UserID:     session.UserID,
		FilterType: search.ResultType(filterType),
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Service) indexProject(item store.Project) {
	if s.search == nil {
		return
	}
	s.search.IndexProject(search.ProjectRecord{
		ID:          item.ID,
		UserID:      item.UserID,
		Title:       item.Title,
		Description: item.Description,
		Topic:       item.Topic,
		DocType:     item.DocType,
	})
}

func (s *Service) indexSections(item store.Project, content map[string]store.ContentEntry) {
	if s.search == nil {
		return
	}
	records := make([]search.SectionRecord, 0, len(content))
	for sectionID, entry := range content {
		records = append(records, search.SectionRecord{
			ID:        item.ID + ":" + sectionID,
			ProjectID: item.ID,
			UserID:    item.UserID,
			SectionID: sectionID,
			Title:     entry.Title,
			Content:   entry.Content,
		})
	}
	s.search.IndexSections(records)
}
