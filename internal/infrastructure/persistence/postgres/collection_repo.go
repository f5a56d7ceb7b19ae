package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	pgpkg "github.com/Ban68/LePret-sub001/pkg/postgres"
)

// uniqueOpenCaseIndex allows one non-closed case per request.
const uniqueOpenCaseIndex = "uq_collection_cases_open_request"

const caseColumns = `id, company_id, request_id, status, priority, promise_amount, promise_date,
	next_action_at, closed_at, resolution, created_at, updated_at`

// CollectionCaseRepo implements port.CollectionCaseRepository.
type CollectionCaseRepo struct {
	q pgpkg.Querier
}

// FindByID retrieves a collection case by ID.
func (r *CollectionCaseRepo) FindByID(ctx context.Context, companyID, id string) (model.CollectionCase, error) {
	query := `SELECT ` + caseColumns + ` FROM collection_cases WHERE company_id = $1 AND id = $2`
	c, err := scanCollectionCase(r.q.QueryRow(ctx, query, companyID, id))
	if isNoRows(err) {
		return model.CollectionCase{}, apperr.CollectionCaseNotFound()
	}
	return c, err
}

// FindOpenByRequest returns the case of the request that is not closed.
func (r *CollectionCaseRepo) FindOpenByRequest(ctx context.Context, companyID, requestID string) (model.CollectionCase, bool, error) {
	query := `SELECT ` + caseColumns + ` FROM collection_cases
		WHERE company_id = $1 AND request_id = $2 AND status <> $3`
	c, err := scanCollectionCase(r.q.QueryRow(ctx, query,
		companyID, requestID, valueobject.CollectionCaseStatusClosed.String(),
	))
	if isNoRows(err) {
		return model.CollectionCase{}, false, nil
	}
	if err != nil {
		return model.CollectionCase{}, false, err
	}
	return c, true, nil
}

// Insert stores a new case.
func (r *CollectionCaseRepo) Insert(ctx context.Context, c model.CollectionCase) error {
	query := `
		INSERT INTO collection_cases (` + caseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.Exec(ctx, query,
		c.ID(), c.CompanyID(), c.RequestID(), c.Status().String(), c.Priority().String(),
		nullDecimal(c.PromiseAmount()), utcPtr(c.PromiseDate()), utcPtr(c.NextActionAt()),
		utcPtr(c.ClosedAt()), c.Resolution(), c.CreatedAt().UTC(), c.UpdatedAt().UTC(),
	)
	if pgpkg.IsUniqueViolation(err, uniqueOpenCaseIndex) {
		return apperr.DuplicateCollectionCase(err)
	}
	if err != nil {
		return fmt.Errorf("insert collection case: %w", err)
	}
	return nil
}

// Update writes the mutable columns of a case.
func (r *CollectionCaseRepo) Update(ctx context.Context, c model.CollectionCase) error {
	query := `
		UPDATE collection_cases SET
			status         = $3,
			priority       = $4,
			promise_amount = $5,
			promise_date   = $6,
			next_action_at = $7,
			closed_at      = $8,
			resolution     = $9,
			updated_at     = $10
		WHERE company_id = $1 AND id = $2
	`
	tag, err := r.q.Exec(ctx, query,
		c.CompanyID(), c.ID(), c.Status().String(), c.Priority().String(),
		nullDecimal(c.PromiseAmount()), utcPtr(c.PromiseDate()), utcPtr(c.NextActionAt()),
		utcPtr(c.ClosedAt()), c.Resolution(), c.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update collection case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.CollectionCaseNotFound()
	}
	return nil
}

func scanCollectionCase(s scannable) (model.CollectionCase, error) {
	var (
		id, companyID, requestID        string
		statusStr, priorityStr          string
		promiseAmount                   decimal.NullDecimal
		promiseDate, nextAction, closed *time.Time
		resolution                      string
		createdAt, updatedAt            time.Time
	)
	err := s.Scan(
		&id, &companyID, &requestID, &statusStr, &priorityStr, &promiseAmount, &promiseDate,
		&nextAction, &closed, &resolution, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.CollectionCase{}, fmt.Errorf("scan collection case: %w", err)
	}

	status, err := valueobject.NewCollectionCaseStatus(statusStr)
	if err != nil {
		return model.CollectionCase{}, fmt.Errorf("parse case status: %w", err)
	}
	priority, err := valueobject.NewPriority(priorityStr)
	if err != nil {
		return model.CollectionCase{}, fmt.Errorf("parse case priority: %w", err)
	}

	return model.ReconstructCollectionCase(
		id, companyID, requestID, status, priority,
		decimalPtr(promiseAmount), promiseDate, nextAction, closed,
		resolution, createdAt, updatedAt,
	), nil
}

// ---------------------------------------------------------------------------
// Collection actions
// ---------------------------------------------------------------------------

// CollectionActionRepo implements port.CollectionActionRepository.
type CollectionActionRepo struct {
	q pgpkg.Querier
}

func (r *CollectionActionRepo) Insert(ctx context.Context, a model.CollectionAction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO collection_actions (id, case_id, company_id, kind, notes, due_at, completed_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		a.ID(), a.CaseID(), a.CompanyID(), a.Kind().String(), a.Notes(),
		utcPtr(a.DueAt()), utcPtr(a.CompletedAt()), a.CreatedBy(), a.CreatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert collection action: %w", err)
	}
	return nil
}

func (r *CollectionActionRepo) ListByCase(ctx context.Context, companyID, caseID string) ([]model.CollectionAction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, case_id, company_id, kind, notes, due_at, completed_at, created_by, created_at
		FROM collection_actions
		WHERE company_id = $1 AND case_id = $2
		ORDER BY created_at, id
	`, companyID, caseID)
	if err != nil {
		return nil, fmt.Errorf("query collection actions: %w", err)
	}
	defer rows.Close()

	var out []model.CollectionAction
	for rows.Next() {
		var (
			id, cID, coID, kindStr, notes string
			dueAt, completedAt            *time.Time
			createdBy                     string
			createdAt                     time.Time
		)
		if err := rows.Scan(&id, &cID, &coID, &kindStr, &notes, &dueAt, &completedAt, &createdBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan collection action: %w", err)
		}
		kind, err := valueobject.NewActionKind(kindStr)
		if err != nil {
			return nil, fmt.Errorf("parse action kind: %w", err)
		}
		out = append(out, model.ReconstructCollectionAction(
			id, cID, coID, kind, notes, dueAt, completedAt, createdBy, createdAt,
		))
	}
	return out, rows.Err()
}
