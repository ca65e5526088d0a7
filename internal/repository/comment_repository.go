package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// CommentRepository manages ticket comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	ListByTicket(ctx context.Context, orgID, ticketID string) ([]domain.TicketComment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates the repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, organization_id, author_type, author_id, comment_type, body)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.OrganizationID,
		comment.AuthorType,
		comment.AuthorID,
		comment.CommentType,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, orgID, ticketID string) ([]domain.TicketComment, error) {
	const query = `
        SELECT id, ticket_id, organization_id, author_type, author_id, comment_type, body, created_at
        FROM ticket_comments WHERE ticket_id=$1 AND organization_id=$2
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketComment
	for rows.Next() {
		var comment domain.TicketComment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.OrganizationID,
			&comment.AuthorType,
			&comment.AuthorID,
			&comment.CommentType,
			&comment.Body,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
