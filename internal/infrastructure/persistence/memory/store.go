// Package memory is an in-process implementation of the store ports. It
// backs tests and the memory storage driver. Transactions are serialized and
// roll back by restoring a snapshot.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
)

var _ port.UnitOfWork = (*Store)(nil)

type data struct {
	requests  map[string]model.FundingRequest
	offers    map[string]model.Offer
	offerSeq  map[string]int
	payments  map[string]model.Payment
	accounts  []model.BankAccount
	companies map[string]model.Company
	invoices  map[string]model.Invoice
	cases     map[string]model.CollectionCase
	actions   []model.CollectionAction
	overrides map[string]model.ParameterOverride
	settings  *model.GlobalSettings
	seq       int
}

func newData() data {
	return data{
		requests:  map[string]model.FundingRequest{},
		offers:    map[string]model.Offer{},
		offerSeq:  map[string]int{},
		payments:  map[string]model.Payment{},
		companies: map[string]model.Company{},
		invoices:  map[string]model.Invoice{},
		cases:     map[string]model.CollectionCase{},
		overrides: map[string]model.ParameterOverride{},
	}
}

func (d data) clone() data {
	out := d
	out.requests = maps.Clone(d.requests)
	out.offers = maps.Clone(d.offers)
	out.offerSeq = maps.Clone(d.offerSeq)
	out.payments = maps.Clone(d.payments)
	out.accounts = slices.Clone(d.accounts)
	out.companies = maps.Clone(d.companies)
	out.invoices = maps.Clone(d.invoices)
	out.cases = maps.Clone(d.cases)
	out.actions = slices.Clone(d.actions)
	out.overrides = maps.Clone(d.overrides)
	if d.settings != nil {
		s := *d.settings
		s.Segments = maps.Clone(d.settings.Segments)
		out.settings = &s
	}
	return out
}

// Store holds all tables behind one mutex.
type Store struct {
	mu sync.Mutex
	d  data
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{d: newData()}
}

// WithinTx runs fn with exclusive access. Any error restores the state from
// before the call.
func (s *Store) WithinTx(ctx context.Context, fn func(r port.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(s.repositories(true)); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// Repositories returns repositories that lock per call.
func (s *Store) Repositories() port.Repositories {
	return s.repositories(false)
}

// Ping lets the store stand in for a database in readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) repositories(inTx bool) port.Repositories {
	t := table{s: s, inTx: inTx}
	return port.Repositories{
		Requests:     requestRepo{t},
		Offers:       offerRepo{t},
		Payments:     paymentRepo{t},
		BankAccounts: bankAccountRepo{t},
		Companies:    companyRepo{t},
		Invoices:     invoiceRepo{t},
		Cases:        caseRepo{t},
		Actions:      actionRepo{t},
		Overrides:    overrideRepo{t},
		Settings:     settingsRepo{t},
	}
}

// table gives repositories access to the data, taking the lock unless the
// caller already holds it through WithinTx.
type table struct {
	s    *Store
	inTx bool
}

func (t table) lock() func() {
	if t.inTx {
		return func() {}
	}
	t.s.mu.Lock()
	return t.s.mu.Unlock
}

func (t table) data() *data { return &t.s.d }
