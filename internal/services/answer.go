// backend/internal/services/answer.go
package services

import (
	"context"
	"strings"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/llm"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/sirupsen/logrus"
)

// Searcher aggregates provider results for a query.
type Searcher interface {
	AggregateWithURLs(ctx context.Context, query string, customURLs []string) []models.SearchResult
}

// Generator produces an answer from search context and conversation state.
type Generator interface {
	Generate(ctx context.Context, results []models.SearchResult, history []models.Message, query string, previousQueries []string) (string, error)
}

// SessionStore is the short-term conversation memory.
type SessionStore interface {
	GetOrCreate(id string) models.Session
	AppendTurn(id, role, content string) error
	RecordQuery(id, query string)
	PreviousQueries(id, current string) []string
	History(id string) ([]models.Message, error)
	Delete(id string) error
}

type AnswerService struct {
	searcher  Searcher
	generator Generator
	sessions  SessionStore
	logger    *logrus.Logger
}

func NewAnswerService(searcher Searcher, generator Generator, sessions SessionStore, logger *logrus.Logger) *AnswerService {
	return &AnswerService{
		searcher:  searcher,
		generator: generator,
		sessions:  sessions,
		logger:    logger,
	}
}

// Search records the query against the session and returns the aggregated
// results. Provider failures only shrink the result set.
func (s *AnswerService) Search(ctx context.Context, sessionID, query string, customURLs []string) []models.SearchResult {
	query = strings.TrimSpace(query)
	s.sessions.GetOrCreate(sessionID)
	s.sessions.RecordQuery(sessionID, query)

	results := s.searcher.AggregateWithURLs(ctx, query, customURLs)

	s.logger.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"query":       query,
		"custom_urls": len(customURLs),
		"results":     len(results),
	}).Info("Search completed")

	return results
}

// Answer generates a reply for query. When results is nil the service runs
// the search itself. The exchange is stored in the session only when
// generation succeeds.
func (s *AnswerService) Answer(ctx context.Context, sessionID, query string, results []models.SearchResult) (*models.AnswerResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Message: "query must not be empty"}
	}

	if results == nil {
		results = s.Search(ctx, sessionID, query, nil)
	}

	sess := s.sessions.GetOrCreate(sessionID)
	if n := len(sess.Queries); n == 0 || sess.Queries[n-1] != query {
		// results came from the client without a search in this session
		s.sessions.RecordQuery(sessionID, query)
	}

	history := sess.Messages
	previous := s.sessions.PreviousQueries(sessionID, query)

	answer, err := s.generator.Generate(ctx, results, history, query, previous)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"session_id": sessionID,
			"query":      query,
		}).Error("Failed to generate answer")
		return nil, err
	}

	if err := s.sessions.AppendTurn(sessionID, models.RoleUser, query); err != nil {
		return nil, err
	}
	if err := s.sessions.AppendTurn(sessionID, models.RoleAssistant, answer); err != nil {
		return nil, err
	}

	citations := llm.Citations(results)

	s.logger.WithFields(logrus.Fields{
		"session_id":       sessionID,
		"query":            query,
		"context_items":    len(results),
		"previous_queries": len(previous),
		"citations":        len(citations),
	}).Info("Answer completed")

	return &models.AnswerResponse{
		Answer:        answer,
		Citations:     citations,
		SearchResults: results,
	}, nil
}

// ClearSession drops the session's history and queries.
func (s *AnswerService) ClearSession(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// History returns the session's conversation turns.
func (s *AnswerService) History(sessionID string) ([]models.Message, error) {
	return s.sessions.History(sessionID)
}
