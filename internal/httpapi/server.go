package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
	"NewsPrep/internal/usecase"
)

const (
	defaultLatestLimit = 10
	maxLatestLimit     = 50

	queryTimeout = 5 * time.Second
)

// Server exposes the query surface, the study-aid endpoints and the
// manual scheduler controls over HTTP.
type Server struct {
	repository ports.ArticleRepository
	scheduler  *usecase.Scheduler
	study      *usecase.StudyAids
	logger     *slog.Logger

	ingestBusy atomic.Bool
}

// NewServer wires the handler dependencies.
func NewServer(repository ports.ArticleRepository, scheduler *usecase.Scheduler, study *usecase.StudyAids, logger *slog.Logger) *Server {
	return &Server{
		repository: repository,
		scheduler:  scheduler,
		study:      study,
		logger:     logger,
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/news", func(r chi.Router) {
		r.Post("/process", s.handleProcess)
		r.Post("/cleanup", s.handleCleanup)
		r.Get("/jobs", s.handleJobs)
		r.Post("/jobs/stop", s.handleJobsStop)

		r.Get("/categories", s.handleCategories)
		r.Get("/daily", s.handleDaily)
		r.Get("/category/{category}", s.handleByCategory)
		r.Get("/latest", s.handleLatest)
		r.Get("/stats", s.handleStats)

		r.Post("/summarize", s.handleSummarize)
		r.Post("/key-points", s.handleKeyPoints)
		r.Post("/headings", s.handleHeadings)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// newsCard is the read-side projection: full article text stays server
// side, clients get the study material.
type newsCard struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Category   domain.Category    `json:"category"`
	Summary    string             `json:"summary"`
	Source     string             `json:"source"`
	Link       string             `json:"link"`
	Important  bool               `json:"important"`
	MCQs       []domain.MCQ       `json:"mcqs"`
	Flashcards []domain.Flashcard `json:"flashcards"`
	MindMap    domain.MindMap     `json:"mindmap"`
	Date       string             `json:"date"`
	CreatedAt  time.Time          `json:"created_at"`
}

func toCards(articles []domain.Article) []newsCard {
	cards := make([]newsCard, 0, len(articles))
	for _, a := range articles {
		cards = append(cards, newsCard{
			ID:         a.ID,
			Title:      a.Title,
			Category:   a.Category,
			Summary:    a.Summary,
			Source:     a.Source,
			Link:       a.SourceURL,
			Important:  a.Important,
			MCQs:       a.MCQs,
			Flashcards: a.Flashcards,
			MindMap:    a.MindMap,
			Date:       a.Date,
			CreatedAt:  a.CreatedAt,
		})
	}
	return cards
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcess runs a full ingestion immediately. The run is detached
// from the request context so a dropped client does not abort it; a
// second request while one is running gets 409 instead of a second run.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if !s.ingestBusy.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "news processing already running"})
		return
	}
	defer s.ingestBusy.Store(false)

	saved, err := s.scheduler.TriggerIngest(context.Background())
	if err != nil {
		s.logger.Error("manual ingest failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("manual ingest finished", "saved", saved)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "news processing completed",
		"articles_saved": saved,
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.scheduler.TriggerCleanup(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "cleanup completed",
		"articles_deleted": deleted,
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.scheduler.Status()})
}

func (s *Server) handleJobsStop(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Stop()
	writeJSON(w, http.StatusOK, messageResponse{Message: "scheduled jobs stopped"})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": domain.Categories()})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	articles, err := s.repository.ArticlesByDate(ctx, date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "news": toCards(articles)})
}

func (s *Server) handleByCategory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "category")
	category := domain.Category(raw)
	if !category.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category: " + raw})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	articles, err := s.repository.ArticlesByCategory(ctx, category)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "news": toCards(articles)})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	limit := clampInt(r.URL.Query().Get("limit"), defaultLatestLimit, maxLatestLimit)

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	articles, err := s.repository.LatestArticles(ctx, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"news": toCards(articles)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	stats, err := s.repository.Stats(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type summarizeRequest struct {
	Content   string `json:"content"`
	MaxLength int    `json:"max_length"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	summary, err := s.study.Summarize(r.Context(), req.Content, req.MaxLength)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

type keyPointsRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleKeyPoints(w http.ResponseWriter, r *http.Request) {
	var req keyPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	points, err := s.study.KeyPoints(r.Context(), req.Content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key_points": points})
}

func (s *Server) handleHeadings(w http.ResponseWriter, r *http.Request) {
	var req keyPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	headings, err := s.study.Headings(r.Context(), req.Content)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"headings": headings})
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
