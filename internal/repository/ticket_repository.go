package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/nexus-ai/internal/domain"
)

// TicketFilter captures list/count parameters.
type TicketFilter struct {
	Category      *string
	Urgency       *string
	MinConfidence *float64
	Limit         int
	Offset        int
}

// TicketStats aggregates classification outcomes across all tickets.
type TicketStats struct {
	TotalTickets  int64
	ByCategory    map[string]int64
	ByUrgency     map[string]int64
	AvgConfidence float64
}

// TicketRepository encapsulates ticket persistence. Tickets are append-only:
// no update or delete operations exist.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, user_message, category, urgency, sentiment, confidence, ai_raw_response, model_version, created_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (user_message, category, urgency, sentiment, confidence, ai_raw_response, model_version)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.UserMessage,
		ticket.Category,
		ticket.Urgency,
		ticket.Sentiment,
		ticket.Confidence,
		ticket.AIRawResponse,
		ticket.ModelVersion,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserMessage,
		&ticket.Category,
		&ticket.Urgency,
		&ticket.Sentiment,
		&ticket.Confidence,
		&ticket.AIRawResponse,
		&ticket.ModelVersion,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := filterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	clauses, args := filterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(id) FROM tickets WHERE %s`, strings.Join(clauses, " AND "))

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	stats := &TicketStats{
		ByCategory: make(map[string]int64),
		ByUrgency:  make(map[string]int64),
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(id), COALESCE(AVG(confidence), 0) FROM tickets`,
	).Scan(&stats.TotalTickets, &stats.AvgConfidence); err != nil {
		return nil, err
	}

	if err := r.groupCounts(ctx, "category", stats.ByCategory); err != nil {
		return nil, err
	}
	if err := r.groupCounts(ctx, "urgency", stats.ByUrgency); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *ticketRepository) groupCounts(ctx context.Context, column string, dest map[string]int64) error {
	query := fmt.Sprintf(`SELECT %s, COUNT(id) FROM tickets GROUP BY %s`, column, column)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}
	return rows.Err()
}

func filterClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Urgency != nil {
		args = append(args, *filter.Urgency)
		clauses = append(clauses, fmt.Sprintf("urgency=$%d", len(args)))
	}
	if filter.MinConfidence != nil {
		args = append(args, *filter.MinConfidence)
		clauses = append(clauses, fmt.Sprintf("confidence >= $%d", len(args)))
	}
	return clauses, args
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.UserMessage,
			&ticket.Category,
			&ticket.Urgency,
			&ticket.Sentiment,
			&ticket.Confidence,
			&ticket.AIRawResponse,
			&ticket.ModelVersion,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
