package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/persistence/memory"
	"github.com/Ban68/LePret-sub001/pkg/money"
)

var (
	t0     = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	staff  = model.Actor{UserID: "staff-1", IsStaff: true}
	client = model.Actor{
		UserID:     "user-1",
		Membership: model.Membership{CompanyID: "company-1", Role: "owner", Status: model.MembershipStatusActive},
	}
	outsider = model.Actor{
		UserID:     "user-9",
		Membership: model.Membership{CompanyID: "company-2", Role: "owner", Status: model.MembershipStatusActive},
	}
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type mockEventPublisher struct {
	mu          sync.Mutex
	publishFunc func(ctx context.Context, events ...event.DomainEvent) error
	published   []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	m.mu.Lock()
	m.published = append(m.published, events...)
	m.mu.Unlock()
	if m.publishFunc != nil {
		return m.publishFunc(ctx, events...)
	}
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.EventType())
	}
	return out
}

func (m *mockEventPublisher) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = nil
}

type mockUnitOfWork struct {
	withinTxFunc func(ctx context.Context, fn func(r port.Repositories) error) error
	repos        port.Repositories
}

func (m *mockUnitOfWork) WithinTx(ctx context.Context, fn func(r port.Repositories) error) error {
	if m.withinTxFunc != nil {
		return m.withinTxFunc(ctx, fn)
	}
	return fn(m.repos)
}

func (m *mockUnitOfWork) Repositories() port.Repositories { return m.repos }

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	store      *memory.Store
	publisher  *mockEventPublisher
	clock      *fixedClock
	resolver   *service.ParameterResolver
	calculator *service.OfferCalculator
	gate       *service.AutoApprovalGate
}

// newFixture seeds company-1 (PYME segment) with one invoice due in 30 days.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		publisher:  &mockEventPublisher{},
		clock:      &fixedClock{now: t0},
		resolver:   service.NewParameterResolver(),
		calculator: service.NewOfferCalculator(service.DefaultOfferPolicy()),
		gate:       service.NewAutoApprovalGate(),
	}
	due := t0.Add(30 * 24 * time.Hour)
	ctx := context.Background()
	require.NoError(t, f.store.WithinTx(ctx, func(r port.Repositories) error {
		if err := r.Companies.Insert(ctx, model.Company{ID: "company-1", Name: "Textiles SAS", Type: "PYME"}); err != nil {
			return err
		}
		if err := r.Companies.Insert(ctx, model.Company{ID: "company-2", Name: "Otra SAS", Type: "startup"}); err != nil {
			return err
		}
		return r.Invoices.Insert(ctx, model.Invoice{
			ID: "inv-1", CompanyID: "company-1", Number: "FE-1001",
			Amount: decimal.NewFromInt(12_000_000), DueDate: &due,
		})
	}))
	return f
}

// seedRequest inserts a review request for company-1 and walks it through
// path.
func (f *fixture) seedRequest(t *testing.T, amount int64, path ...valueobject.RequestStatus) model.FundingRequest {
	t.Helper()
	ctx := context.Background()
	fr, err := model.NewFundingRequest("company-1", money.New(decimal.NewFromInt(amount), money.COP), "inv-1", nil, t0)
	require.NoError(t, err)
	require.NoError(t, f.store.WithinTx(ctx, func(r port.Repositories) error {
		if err := r.Requests.Insert(ctx, fr); err != nil {
			return err
		}
		for _, status := range path {
			next, err := fr.TransitionTo(status, staff, t0)
			if err != nil {
				return err
			}
			if err := r.Requests.Update(ctx, next); err != nil {
				return err
			}
			fr = next
		}
		return nil
	}))
	return fr.ClearEvents()
}

func (f *fixture) seedAccounts(t *testing.T, accounts ...model.BankAccount) {
	t.Helper()
	ctx := context.Background()
	for _, a := range accounts {
		require.NoError(t, f.store.Repositories().BankAccounts.Insert(ctx, a))
	}
}

func (f *fixture) request(t *testing.T, id string) model.FundingRequest {
	t.Helper()
	fr, err := f.store.Repositories().Requests.FindByID(context.Background(), "company-1", id)
	require.NoError(t, err)
	return fr
}

func (f *fixture) offers(t *testing.T, requestID string) []model.Offer {
	t.Helper()
	out, err := f.store.Repositories().Offers.ListByRequest(context.Background(), "company-1", requestID)
	require.NoError(t, err)
	return out
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int { return &v }
