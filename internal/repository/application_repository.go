package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// ApplicationFilter captures listing parameters. Nil fields are ignored.
type ApplicationFilter struct {
	ApplicantID *string
	AssigneeID  *string
	ServiceID   *string
	Statuses    []domain.ApplicationStatus
	Limit       int
	Offset      int
}

// ApplicationRepository encapsulates application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	Update(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	GetByReferenceNo(ctx context.Context, ref string) (*domain.Application, error)
	ListWithFilter(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error)
	CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int64, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

const applicationColumns = `id, reference_no, service_id, applicant_id, assignee_id, status, form_data,
               remarks, submitted_at, updated_at, processed_at`

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `
        INSERT INTO applications (reference_no, service_id, applicant_id, assignee_id, status, form_data, remarks)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, submitted_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		app.ReferenceNo,
		app.ServiceID,
		app.ApplicantID,
		app.AssigneeID,
		app.Status,
		app.FormData,
		app.Remarks,
	).Scan(&app.ID, &app.SubmittedAt, &app.UpdatedAt)
}

func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	const query = `
        UPDATE applications SET assignee_id=$1, status=$2, form_data=$3, remarks=$4,
            processed_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		app.AssigneeID,
		app.Status,
		app.FormData,
		app.Remarks,
		app.ProcessedAt,
		app.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *applicationRepository) GetByReferenceNo(ctx context.Context, ref string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE reference_no=$1`
	return r.fetchSingle(ctx, query, ref)
}

func (r *applicationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Application, error) {
	var app domain.Application
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&app.ID,
		&app.ReferenceNo,
		&app.ServiceID,
		&app.ApplicantID,
		&app.AssigneeID,
		&app.Status,
		&app.FormData,
		&app.Remarks,
		&app.SubmittedAt,
		&app.UpdatedAt,
		&app.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListWithFilter(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error) {
	base := `SELECT ` + applicationColumns + ` FROM applications`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ApplicantID != nil {
		args = append(args, *filter.ApplicantID)
		clauses = append(clauses, fmt.Sprintf("applicant_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.ServiceID != nil {
		args = append(args, *filter.ServiceID)
		clauses = append(clauses, fmt.Sprintf("service_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY submitted_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var result []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(
			&app.ID,
			&app.ReferenceNo,
			&app.ServiceID,
			&app.ApplicantID,
			&app.AssigneeID,
			&app.Status,
			&app.FormData,
			&app.Remarks,
			&app.SubmittedAt,
			&app.UpdatedAt,
			&app.ProcessedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ApplicationStatus]int64)
	for rows.Next() {
		var status domain.ApplicationStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
