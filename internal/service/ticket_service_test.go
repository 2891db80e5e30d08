package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/nexus-ai/internal/classifier"
	"github.com/spec-kit/nexus-ai/internal/domain"
	"github.com/spec-kit/nexus-ai/internal/events"
	"github.com/spec-kit/nexus-ai/internal/repository"
	apperrors "github.com/spec-kit/nexus-ai/pkg/util"
)

// memoryTicketRepo is an in-memory TicketRepository for tests.
type memoryTicketRepo struct {
	tickets []domain.Ticket
	nextID  int64
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{nextID: 1}
}

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	ticket.CreatedAt = time.Now().UTC()
	r.nextID++
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			found := r.tickets[i]
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryTicketRepo) matches(t domain.Ticket, filter repository.TicketFilter) bool {
	if filter.Category != nil && t.Category != *filter.Category {
		return false
	}
	if filter.Urgency != nil && string(t.Urgency) != *filter.Urgency {
		return false
	}
	if filter.MinConfidence != nil && t.Confidence < *filter.MinConfidence {
		return false
	}
	return true
}

func (r *memoryTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var all []domain.Ticket
	// newest first
	for i := len(r.tickets) - 1; i >= 0; i-- {
		if r.matches(r.tickets[i], filter) {
			all = append(all, r.tickets[i])
		}
	}
	if filter.Offset >= len(all) {
		return nil, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (r *memoryTicketRepo) Count(_ context.Context, filter repository.TicketFilter) (int64, error) {
	var count int64
	for _, t := range r.tickets {
		if r.matches(t, filter) {
			count++
		}
	}
	return count, nil
}

func (r *memoryTicketRepo) Stats(_ context.Context) (*repository.TicketStats, error) {
	stats := &repository.TicketStats{
		ByCategory: make(map[string]int64),
		ByUrgency:  make(map[string]int64),
	}
	var sum float64
	for _, t := range r.tickets {
		stats.TotalTickets++
		stats.ByCategory[t.Category]++
		stats.ByUrgency[string(t.Urgency)]++
		sum += t.Confidence
	}
	if stats.TotalTickets > 0 {
		stats.AvgConfidence = sum / float64(stats.TotalTickets)
	}
	return stats, nil
}

func newTestService(repo repository.TicketRepository) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Classifier: classifier.NewHeuristic(zap.NewNop()),
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return de.Code
}

func TestCreateTicketRoundTrip(t *testing.T) {
	repo := newMemoryTicketRepo()
	svc := newTestService(repo)

	created, err := svc.CreateTicket(context.Background(), "My app keeps crashing and it's urgent!!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Category != "Technical Issue" {
		t.Fatalf("expected Technical Issue, got %s", created.Category)
	}
	if created.Urgency != domain.UrgencyCritical {
		t.Fatalf("expected Critical, got %s", created.Urgency)
	}
	if created.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if created.AIRawResponse == nil || *created.AIRawResponse == "" {
		t.Fatal("expected raw response to be persisted")
	}

	fetched, err := svc.GetTicket(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.Category != created.Category ||
		fetched.Urgency != created.Urgency ||
		fetched.Sentiment != created.Sentiment ||
		fetched.Confidence != created.Confidence {
		t.Fatalf("re-fetched classification differs:\n%+v\n%+v", created, fetched)
	}
}

func TestCreateTicketLengthBoundaries(t *testing.T) {
	svc := newTestService(newMemoryTicketRepo())

	// 9 characters after trim
	if _, err := svc.CreateTicket(context.Background(), "  abcdefghi  "); err == nil {
		t.Fatal("expected 9-char message to be rejected")
	} else if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}

	// exactly 10 characters
	if _, err := svc.CreateTicket(context.Background(), "abcdefghij"); err != nil {
		t.Fatalf("expected 10-char message to be accepted, got %v", err)
	}

	if _, err := svc.CreateTicket(context.Background(), strings.Repeat("a", 5001)); err == nil {
		t.Fatal("expected 5001-char message to be rejected")
	}
	if _, err := svc.CreateTicket(context.Background(), strings.Repeat("a", 5000)); err != nil {
		t.Fatalf("expected 5000-char message to be accepted, got %v", err)
	}
}

func TestCreateTicketClassifierFailure(t *testing.T) {
	svc := NewTicketService(TicketDependencies{
		TicketRepo: newMemoryTicketRepo(),
		Classifier: failingClassifier{},
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})

	_, err := svc.CreateTicket(context.Background(), "a perfectly valid message")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainCode(t, err); code != "CLASSIFICATION_FAILED" {
		t.Fatalf("expected CLASSIFICATION_FAILED, got %s", code)
	}
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (*classifier.Result, error) {
	return nil, &classifier.ClassificationError{Provider: "OpenAI", Err: errors.New("connection refused")}
}

func TestGetTicketNotFound(t *testing.T) {
	svc := newTestService(newMemoryTicketRepo())

	_, err := svc.GetTicket(context.Background(), 999)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestListMinConfidenceFilter(t *testing.T) {
	repo := newMemoryTicketRepo()
	seed := []float64{0.95, 0.5, 0.9, 0.89}
	for _, conf := range seed {
		_ = repo.Create(context.Background(), &domain.Ticket{
			UserMessage: "seeded for filter test",
			Category:    "Billing",
			Urgency:     domain.UrgencyLow,
			Sentiment:   domain.SentimentNeutral,
			Confidence:  conf,
		})
	}
	svc := newTestService(repo)

	minConf := 0.9
	result, err := svc.ListTickets(context.Background(), ListQuery{Limit: DefaultListLimit, MinConfidence: &minConf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", result.Total)
	}
	for _, ticket := range result.Tickets {
		if ticket.Confidence < 0.9 {
			t.Fatalf("ticket with confidence %v should be excluded", ticket.Confidence)
		}
	}
}

func TestListPagination(t *testing.T) {
	repo := newMemoryTicketRepo()
	for i := 0; i < 15; i++ {
		_ = repo.Create(context.Background(), &domain.Ticket{
			UserMessage: "pagination seed ticket",
			Category:    "Account",
			Urgency:     domain.UrgencyMedium,
			Sentiment:   domain.SentimentNeutral,
			Confidence:  0.6,
		})
	}
	svc := newTestService(repo)

	result, err := svc.ListTickets(context.Background(), ListQuery{Skip: 10, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 15 {
		t.Fatalf("expected total 15, got %d", result.Total)
	}
	if len(result.Tickets) != 5 {
		t.Fatalf("expected 5 tickets on second page, got %d", len(result.Tickets))
	}
	if result.Page != 2 {
		t.Fatalf("expected page 2, got %d", result.Page)
	}
	if result.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", result.PageSize)
	}
}

func TestListQueryValidation(t *testing.T) {
	svc := newTestService(newMemoryTicketRepo())
	ctx := context.Background()

	if _, err := svc.ListTickets(ctx, ListQuery{Skip: -1, Limit: DefaultListLimit}); err == nil {
		t.Fatal("expected negative skip to be rejected")
	}
	if _, err := svc.ListTickets(ctx, ListQuery{Limit: 101}); err == nil {
		t.Fatal("expected limit > 100 to be rejected")
	}
	if _, err := svc.ListTickets(ctx, ListQuery{Limit: 0}); err == nil {
		t.Fatal("expected zero limit to be rejected")
	}
	if _, err := svc.ListTickets(ctx, ListQuery{Limit: -1}); err == nil {
		t.Fatal("expected negative limit to be rejected")
	}
	bad := 1.5
	if _, err := svc.ListTickets(ctx, ListQuery{Limit: DefaultListLimit, MinConfidence: &bad}); err == nil {
		t.Fatal("expected min_confidence > 1 to be rejected")
	}
}

func TestStats(t *testing.T) {
	repo := newMemoryTicketRepo()
	svc := newTestService(repo)

	empty, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.TotalTickets != 0 || empty.AvgConfidence != 0.0 {
		t.Fatalf("expected zeroed stats, got %+v", empty)
	}

	seed := []struct {
		category   string
		urgency    domain.Urgency
		confidence float64
	}{
		{"Billing", domain.UrgencyHigh, 0.9},
		{"Billing", domain.UrgencyLow, 0.7},
		{"Account", domain.UrgencyHigh, 0.8},
	}
	for _, s := range seed {
		_ = repo.Create(context.Background(), &domain.Ticket{
			UserMessage: "stats seed ticket",
			Category:    s.category,
			Urgency:     s.urgency,
			Sentiment:   domain.SentimentNeutral,
			Confidence:  s.confidence,
		})
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTickets != 3 {
		t.Fatalf("expected 3 tickets, got %d", stats.TotalTickets)
	}
	var categorySum int64
	for _, count := range stats.ByCategory {
		categorySum += count
	}
	if categorySum != stats.TotalTickets {
		t.Fatalf("by_category counts (%d) must sum to total (%d)", categorySum, stats.TotalTickets)
	}
	if stats.ByCategory["Billing"] != 2 || stats.ByUrgency["High"] != 2 {
		t.Fatalf("unexpected group counts: %+v", stats)
	}
	want := math.Round((0.9+0.7+0.8)/3*1000) / 1000
	if stats.AvgConfidence != want {
		t.Fatalf("expected avg confidence %v, got %v", want, stats.AvgConfidence)
	}
}
