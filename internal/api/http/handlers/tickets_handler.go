package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nexus-ai/internal/api/dto"
	"github.com/spec-kit/nexus-ai/internal/domain"
	"github.com/spec-kit/nexus-ai/internal/service"
	apperrors "github.com/spec-kit/nexus-ai/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), req.UserMessage)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ticketResponse(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListTickets(c.UserContext(), query)
	if err != nil {
		return err
	}

	tickets := make([]dto.TicketResponse, 0, len(result.Tickets))
	for i := range result.Tickets {
		tickets = append(tickets, ticketResponse(&result.Tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Total:    result.Total,
		Tickets:  tickets,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("ticket id must be an integer",
			map[string]any{"field": "id"})
	}

	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// Stats GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketStatsResponse{
		TotalTickets:  stats.TotalTickets,
		ByCategory:    stats.ByCategory,
		ByUrgency:     stats.ByUrgency,
		AvgConfidence: stats.AvgConfidence,
	})
}

// parseListQuery fills defaults for absent params; explicit values pass
// through unchanged so the service can reject out-of-range ones.
func parseListQuery(c *fiber.Ctx) (service.ListQuery, error) {
	query := service.ListQuery{Skip: 0, Limit: service.DefaultListLimit}

	if raw := c.Query("skip"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return query, apperrors.NewValidationError("skip must be an integer",
				map[string]any{"field": "skip"})
		}
		query.Skip = parsed
	}
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return query, apperrors.NewValidationError("limit must be an integer",
				map[string]any{"field": "limit"})
		}
		query.Limit = parsed
	}
	if raw := c.Query("category"); raw != "" {
		query.Category = &raw
	}
	if raw := c.Query("urgency"); raw != "" {
		query.Urgency = &raw
	}
	if raw := c.Query("min_confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, apperrors.NewValidationError("min_confidence must be a number",
				map[string]any{"field": "min_confidence"})
		}
		query.MinConfidence = &parsed
	}
	return query, nil
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:           ticket.ID,
		UserMessage:  ticket.UserMessage,
		Category:     ticket.Category,
		Urgency:      ticket.Urgency,
		Sentiment:    ticket.Sentiment,
		Confidence:   ticket.Confidence,
		ModelVersion: ticket.ModelVersion,
		CreatedAt:    ticket.CreatedAt,
	}
}
