package dto

import (
	"time"

	"github.com/spec-kit/nexus-ai/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	UserMessage string `json:"user_message"`
}

// TicketResponse is the flat ticket representation returned by every
// ticket endpoint.
type TicketResponse struct {
	ID           int64            `json:"id"`
	UserMessage  string           `json:"user_message"`
	Category     string           `json:"category"`
	Urgency      domain.Urgency   `json:"urgency"`
	Sentiment    domain.Sentiment `json:"sentiment"`
	Confidence   float64          `json:"confidence"`
	ModelVersion string           `json:"model_version"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TicketListResponse is a paginated ticket page.
type TicketListResponse struct {
	Total    int64            `json:"total"`
	Tickets  []TicketResponse `json:"tickets"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// TicketStatsResponse aggregates classification outcomes.
type TicketStatsResponse struct {
	TotalTickets  int64            `json:"total_tickets"`
	ByCategory    map[string]int64 `json:"by_category"`
	ByUrgency     map[string]int64 `json:"by_urgency"`
	AvgConfidence float64          `json:"avg_confidence"`
}
