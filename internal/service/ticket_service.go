package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/classifier"
	"github.com/spec-kit/nexus-ai/internal/domain"
	"github.com/spec-kit/nexus-ai/internal/events"
	"github.com/spec-kit/nexus-ai/internal/repository"
	apperrors "github.com/spec-kit/nexus-ai/pkg/util"
)

const (
	minMessageLength = 10
	maxMessageLength = 5000

	// DefaultListLimit is the page size used when a request omits limit.
	DefaultListLimit = 10
	maxListLimit     = 100
)

// TicketService coordinates the classify-then-persist workflow.
type TicketService struct {
	tickets    repository.TicketRepository
	classifier classifier.Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Classifier classifier.Classifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ListQuery describes list filters and pagination.
type ListQuery struct {
	Skip          int
	Limit         int
	Category      *string
	Urgency       *string
	MinConfidence *float64
}

// ListResult is a page of tickets plus pagination bookkeeping.
type ListResult struct {
	Total    int64
	Tickets  []domain.Ticket
	Page     int
	PageSize int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket validates the message, classifies it and persists the result
// in a single insert. Classification is run exactly once; a failed insert
// leaves no row behind.
func (s *TicketService) CreateTicket(ctx context.Context, userMessage string) (*domain.Ticket, error) {
	message := strings.TrimSpace(userMessage)
	length := utf8.RuneCountInString(message)
	if length < minMessageLength {
		return nil, apperrors.NewValidationError(
			"user_message must be at least 10 characters",
			map[string]any{"field": "user_message", "length": length})
	}
	if length > maxMessageLength {
		return nil, apperrors.NewValidationError(
			"user_message must be at most 5000 characters",
			map[string]any{"field": "user_message", "length": length})
	}

	result, err := s.classifier.Classify(ctx, message)
	if err != nil {
		s.logger.Error("classification failed",
			zap.Int("message_length", length),
			zap.Error(err))
		return nil, apperrors.NewClassificationFailed(err)
	}

	raw := result.RawResponse
	ticket := &domain.Ticket{
		UserMessage:   message,
		Category:      result.Classification.Category,
		Urgency:       result.Classification.Urgency,
		Sentiment:     result.Classification.Sentiment,
		Confidence:    result.Classification.Confidence,
		AIRawResponse: &raw,
		ModelVersion:  result.ModelVersion,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("ticket insert failed",
			zap.Int("message_length", length),
			zap.Error(err))
		return nil, apperrors.NewStoreError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, Ticket: ticket})
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("category", ticket.Category),
		zap.String("urgency", string(ticket.Urgency)))
	return ticket, nil
}

// GetTicket fetches one ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return ticket, nil
}

// ListTickets returns a filtered, paginated page of tickets with the total
// match count. Page numbering follows skip/limit + 1 (integer division).
func (s *TicketService) ListTickets(ctx context.Context, query ListQuery) (*ListResult, error) {
	if query.Skip < 0 {
		return nil, apperrors.NewValidationError("skip must be >= 0",
			map[string]any{"field": "skip"})
	}
	if query.Limit < 1 || query.Limit > maxListLimit {
		return nil, apperrors.NewValidationError("limit must be between 1 and 100",
			map[string]any{"field": "limit"})
	}
	if query.MinConfidence != nil && (*query.MinConfidence < 0 || *query.MinConfidence > 1) {
		return nil, apperrors.NewValidationError("min_confidence must be between 0.0 and 1.0",
			map[string]any{"field": "min_confidence"})
	}

	filter := repository.TicketFilter{
		Category:      query.Category,
		Urgency:       query.Urgency,
		MinConfidence: query.MinConfidence,
		Limit:         query.Limit,
		Offset:        query.Skip,
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	total, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	return &ListResult{
		Total:    total,
		Tickets:  tickets,
		Page:     query.Skip/query.Limit + 1,
		PageSize: query.Limit,
	}, nil
}

// Stats aggregates classification outcomes. With no tickets stored the
// average confidence is exactly 0.0.
func (s *TicketService) Stats(ctx context.Context) (*repository.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	stats.AvgConfidence = math.Round(stats.AvgConfidence*1000) / 1000
	return stats, nil
}
