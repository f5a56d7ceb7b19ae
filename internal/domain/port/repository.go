package port

import (
	"context"
	"time"

	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------
//
// Every lookup is scoped by company ID. A missing row is reported as the
// matching apperr NotFound error unless the method returns a found flag.

// FundingRequestRepository persists funding requests.
type FundingRequestRepository interface {
	FindByID(ctx context.Context, companyID, id string) (model.FundingRequest, error)
	// ListByCompany returns the company's requests whose status is one of
	// statuses; an empty filter returns all of them.
	ListByCompany(ctx context.Context, companyID string, statuses []valueobject.RequestStatus) ([]model.FundingRequest, error)
	Insert(ctx context.Context, req model.FundingRequest) error
	// Update stores req only if the persisted version is req.Version()-1.
	// A lost race returns apperr.StaleRequest.
	Update(ctx context.Context, req model.FundingRequest) error
}

// OfferRepository persists offers.
type OfferRepository interface {
	FindByID(ctx context.Context, companyID, id string) (model.Offer, error)
	// ListByRequest returns every offer of the request, newest first.
	ListByRequest(ctx context.Context, companyID, requestID string) ([]model.Offer, error)
	Insert(ctx context.Context, o model.Offer) error
	Update(ctx context.Context, o model.Offer) error
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	FindOutbound(ctx context.Context, companyID, requestID string) (model.Payment, bool, error)
	// Insert returns apperr.DuplicatePayment when the outbound payment of the
	// request already exists.
	Insert(ctx context.Context, p model.Payment) error
	Update(ctx context.Context, p model.Payment) error
}

// BankAccountRepository reads company bank accounts.
type BankAccountRepository interface {
	// ListByCompany orders accounts by created_at, then id.
	ListByCompany(ctx context.Context, companyID string) ([]model.BankAccount, error)
	Insert(ctx context.Context, a model.BankAccount) error
}

// CompanyRepository reads tenants.
type CompanyRepository interface {
	FindByID(ctx context.Context, id string) (model.Company, error)
	Insert(ctx context.Context, c model.Company) error
}

// InvoiceRepository reads invoices.
type InvoiceRepository interface {
	// FindByIDs skips ids that do not exist.
	FindByIDs(ctx context.Context, companyID string, ids []string) ([]model.Invoice, error)
	Insert(ctx context.Context, inv model.Invoice) error
}

// CollectionCaseRepository persists collection cases.
type CollectionCaseRepository interface {
	FindByID(ctx context.Context, companyID, id string) (model.CollectionCase, error)
	FindOpenByRequest(ctx context.Context, companyID, requestID string) (model.CollectionCase, bool, error)
	// Insert returns apperr.DuplicateCollectionCase when the request already
	// has a case that is not closed.
	Insert(ctx context.Context, c model.CollectionCase) error
	Update(ctx context.Context, c model.CollectionCase) error
}

// CollectionActionRepository appends collection actions.
type CollectionActionRepository interface {
	Insert(ctx context.Context, a model.CollectionAction) error
	// ListByCase returns actions oldest first.
	ListByCase(ctx context.Context, companyID, caseID string) ([]model.CollectionAction, error)
}

// ParameterOverrideRepository persists per-company overrides.
type ParameterOverrideRepository interface {
	Find(ctx context.Context, companyID string) (model.ParameterOverride, bool, error)
	Upsert(ctx context.Context, o model.ParameterOverride) error
	// Delete is a no-op when the company has no override.
	Delete(ctx context.Context, companyID string) error
}

// SettingsStore holds the global settings singleton.
type SettingsStore interface {
	// Get returns model.DefaultGlobalSettings when nothing was stored yet.
	Get(ctx context.Context) (model.GlobalSettings, error)
	Put(ctx context.Context, s model.GlobalSettings) error
}

// ---------------------------------------------------------------------------
// Unit of work
// ---------------------------------------------------------------------------

// Repositories bundles the repositories bound to one store session.
type Repositories struct {
	Requests     FundingRequestRepository
	Offers       OfferRepository
	Payments     PaymentRepository
	BankAccounts BankAccountRepository
	Companies    CompanyRepository
	Invoices     InvoiceRepository
	Cases        CollectionCaseRepository
	Actions      CollectionActionRepository
	Overrides    ParameterOverrideRepository
	Settings     SettingsStore
}

// UnitOfWork runs multi-step operations atomically.
type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
	// Repositories returns repositories outside any transaction, for reads.
	Repositories() Repositories
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher hands committed domain events to external consumers. It
// must not block the caller; delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

// Clock supplies the current time to use cases.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
