package postgres

import (
	"context"
	"fmt"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	pgpkg "github.com/Ban68/LePret-sub001/pkg/postgres"
)

// ---------------------------------------------------------------------------
// Bank accounts
// ---------------------------------------------------------------------------

// BankAccountRepo implements port.BankAccountRepository.
type BankAccountRepo struct {
	q pgpkg.Querier
}

func (r *BankAccountRepo) ListByCompany(ctx context.Context, companyID string) ([]model.BankAccount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, bank_name, account_number, account_type, is_default, created_at
		FROM bank_accounts
		WHERE company_id = $1
		ORDER BY created_at, id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query bank accounts: %w", err)
	}
	defer rows.Close()

	var out []model.BankAccount
	for rows.Next() {
		var a model.BankAccount
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.BankName, &a.AccountNumber, &a.AccountType, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bank account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *BankAccountRepo) Insert(ctx context.Context, a model.BankAccount) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO bank_accounts (id, company_id, bank_name, account_number, account_type, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.CompanyID, a.BankName, a.AccountNumber, a.AccountType, a.IsDefault, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert bank account: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Companies
// ---------------------------------------------------------------------------

// CompanyRepo implements port.CompanyRepository.
type CompanyRepo struct {
	q pgpkg.Querier
}

func (r *CompanyRepo) FindByID(ctx context.Context, id string) (model.Company, error) {
	var c model.Company
	err := r.q.QueryRow(ctx, `SELECT id, name, type FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Type)
	if isNoRows(err) {
		return model.Company{}, apperr.CompanyNotFound()
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("scan company: %w", err)
	}
	return c, nil
}

func (r *CompanyRepo) Insert(ctx context.Context, c model.Company) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO companies (id, name, type) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type
	`, c.ID, c.Name, c.Type)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

// InvoiceRepo implements port.InvoiceRepository.
type InvoiceRepo struct {
	q pgpkg.Querier
}

func (r *InvoiceRepo) FindByIDs(ctx context.Context, companyID string, ids []string) ([]model.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, number, amount, due_date
		FROM invoices
		WHERE company_id = $1 AND id = ANY($2)
	`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]model.Invoice, len(ids))
	for rows.Next() {
		var (
			inv     model.Invoice
			rawDate *string
		)
		if err := rows.Scan(&inv.ID, &inv.CompanyID, &inv.Number, &inv.Amount, &rawDate); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.DueDate = parseDueDate(rawDate)
		byID[inv.ID] = inv
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	// Keep the caller's order.
	out := make([]model.Invoice, 0, len(byID))
	for _, id := range ids {
		if inv, ok := byID[id]; ok {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *InvoiceRepo) Insert(ctx context.Context, inv model.Invoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoices (id, company_id, number, amount, due_date)
		VALUES ($1, $2, $3, $4, $5)
	`, inv.ID, inv.CompanyID, inv.Number, inv.Amount, formatDueDate(inv.DueDate))
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}
