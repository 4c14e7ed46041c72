// backend/internal/api/handlers/answer.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/models"
	"github.com/Ayash-Bera/miniplex/pkg/utils"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

const maxQueryLength = 2000

// AnswerService is the orchestration core behind the HTTP API.
type AnswerService interface {
	Search(ctx context.Context, sessionID, query string, customURLs []string) []models.SearchResult
	Answer(ctx context.Context, sessionID, query string, results []models.SearchResult) (*models.AnswerResponse, error)
	ClearSession(sessionID string) error
	History(sessionID string) ([]models.Message, error)
}

type AnswerHandler struct {
	service AnswerService
	logger  *logrus.Logger
}

func NewAnswerHandler(service AnswerService, logger *logrus.Logger) *AnswerHandler {
	return &AnswerHandler{
		service: service,
		logger:  logger,
	}
}

// HandleSearch runs the provider fan-out for a session.
func (h *AnswerHandler) HandleSearch(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid search request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := validateSearchRequest(&req); err != nil {
		utils.DomainErrorResponse(c, "Invalid search request", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"query":       req.Query,
		"custom_urls": len(req.CustomURLs),
		"ip_address":  c.ClientIP(),
	}).Info("Processing search request")

	results := h.service.Search(c.Request.Context(), sessionID, req.Query, req.CustomURLs)

	utils.SuccessResponse(c, http.StatusOK, "Search completed", results)
}

// HandleAnswer generates an answer, searching first if the client sent no
// results.
func (h *AnswerHandler) HandleAnswer(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid answer request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := validateAnswerRequest(&req); err != nil {
		utils.DomainErrorResponse(c, "Invalid answer request", err)
		return
	}

	resp, err := h.service.Answer(c.Request.Context(), sessionID, req.Query, req.SearchResults)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", sessionID).Error("Answer failed")
		utils.DomainErrorResponse(c, "Failed to generate answer", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Answer generated", resp)
}

func (h *AnswerHandler) sessionID(c *gin.Context) (string, bool) {
	id := c.Param("session_id")
	if !utils.ValidateSessionID(id) {
		utils.DomainErrorResponse(c, "Invalid session id", &domain.ValidationError{
			Message: "session id must be 1-128 characters of letters, digits, '-' or '_'",
		})
		return "", false
	}
	return id, true
}

func validateSearchRequest(req *models.SearchRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Query, validation.Required, validation.Length(1, maxQueryLength)),
		validation.Field(&req.CustomURLs, validation.Each(validation.By(httpURL))),
	)
	return asValidationError(err)
}

func validateAnswerRequest(req *models.AnswerRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Query, validation.Required, validation.Length(1, maxQueryLength)),
		validation.Field(&req.SearchResults, validation.Each(validation.By(searchResult))),
	)
	return asValidationError(err)
}

func httpURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func searchResult(value interface{}) error {
	r, ok := value.(models.SearchResult)
	if !ok {
		return nil
	}
	if r.Source != "" && !r.Source.Valid() {
		return errors.New("unknown source " + string(r.Source))
	}
	return nil
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ValidationError{Message: err.Error()}
}
