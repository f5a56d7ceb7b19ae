// Package postgres is the PostgreSQL adapter for the repository ports.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ban68/LePret-sub001/internal/domain/port"
	pgpkg "github.com/Ban68/LePret-sub001/pkg/postgres"
)

// UnitOfWork implements port.UnitOfWork on a pgx pool. Transactions run at
// read committed; concurrent writers of one request are serialized by the
// version check in the request repository.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a unit of work over pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// WithinTx runs fn in one transaction and commits when it returns nil.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r port.Repositories) error) error {
	return pgpkg.WithTransaction(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(repositories(tx))
	})
}

// Repositories returns repositories that run each statement on the pool.
func (u *UnitOfWork) Repositories() port.Repositories {
	return repositories(u.pool)
}

// Ping reports whether the database answers.
func (u *UnitOfWork) Ping(ctx context.Context) error {
	return pgpkg.HealthCheck(ctx, u.pool)
}

func repositories(q pgpkg.Querier) port.Repositories {
	return port.Repositories{
		Requests:     &RequestRepo{q: q},
		Offers:       &OfferRepo{q: q},
		Payments:     &PaymentRepo{q: q},
		BankAccounts: &BankAccountRepo{q: q},
		Companies:    &CompanyRepo{q: q},
		Invoices:     &InvoiceRepo{q: q},
		Cases:        &CollectionCaseRepo{q: q},
		Actions:      &CollectionActionRepo{q: q},
		Overrides:    &OverrideRepo{q: q},
		Settings:     &SettingsRepo{q: q},
	}
}
