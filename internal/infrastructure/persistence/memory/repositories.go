package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Funding requests
// ---------------------------------------------------------------------------

type requestRepo struct{ table }

func (r requestRepo) FindByID(_ context.Context, companyID, id string) (model.FundingRequest, error) {
	defer r.lock()()
	fr, ok := r.data().requests[id]
	if !ok || fr.CompanyID() != companyID {
		return model.FundingRequest{}, apperr.RequestNotFound()
	}
	return fr, nil
}

func (r requestRepo) ListByCompany(_ context.Context, companyID string, statuses []valueobject.RequestStatus) ([]model.FundingRequest, error) {
	defer r.lock()()
	var out []model.FundingRequest
	for _, fr := range r.data().requests {
		if fr.CompanyID() != companyID {
			continue
		}
		if len(statuses) > 0 && !slices.ContainsFunc(statuses, fr.Status().Equal) {
			continue
		}
		out = append(out, fr)
	}
	slices.SortFunc(out, func(a, b model.FundingRequest) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
	return out, nil
}

func (r requestRepo) Insert(_ context.Context, fr model.FundingRequest) error {
	defer r.lock()()
	if _, exists := r.data().requests[fr.ID()]; exists {
		return apperr.Internal(fmt.Errorf("funding request %s already exists", fr.ID()))
	}
	r.data().requests[fr.ID()] = fr.ClearEvents()
	return nil
}

func (r requestRepo) Update(_ context.Context, fr model.FundingRequest) error {
	defer r.lock()()
	stored, ok := r.data().requests[fr.ID()]
	if !ok || stored.CompanyID() != fr.CompanyID() {
		return apperr.RequestNotFound()
	}
	if stored.Version() != fr.Version()-1 {
		return apperr.StaleRequest()
	}
	r.data().requests[fr.ID()] = fr.ClearEvents()
	return nil
}

// ---------------------------------------------------------------------------
// Offers
// ---------------------------------------------------------------------------

type offerRepo struct{ table }

func (r offerRepo) FindByID(_ context.Context, companyID, id string) (model.Offer, error) {
	defer r.lock()()
	o, ok := r.data().offers[id]
	if !ok || o.CompanyID() != companyID {
		return model.Offer{}, apperr.OfferNotFound()
	}
	return o, nil
}

func (r offerRepo) ListByRequest(_ context.Context, companyID, requestID string) ([]model.Offer, error) {
	defer r.lock()()
	d := r.data()
	var out []model.Offer
	for _, o := range d.offers {
		if o.CompanyID() == companyID && o.RequestID() == requestID {
			out = append(out, o)
		}
	}
	// Newest first; insertion order breaks ties on equal timestamps.
	slices.SortFunc(out, func(a, b model.Offer) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return d.offerSeq[b.ID()] - d.offerSeq[a.ID()]
	})
	return out, nil
}

func (r offerRepo) Insert(_ context.Context, o model.Offer) error {
	defer r.lock()()
	d := r.data()
	d.seq++
	d.offers[o.ID()] = o.ClearEvents()
	d.offerSeq[o.ID()] = d.seq
	return nil
}

func (r offerRepo) Update(_ context.Context, o model.Offer) error {
	defer r.lock()()
	if _, ok := r.data().offers[o.ID()]; !ok {
		return apperr.OfferNotFound()
	}
	r.data().offers[o.ID()] = o.ClearEvents()
	return nil
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

type paymentRepo struct{ table }

func (r paymentRepo) FindOutbound(_ context.Context, companyID, requestID string) (model.Payment, bool, error) {
	defer r.lock()()
	for _, p := range r.data().payments {
		if p.CompanyID() == companyID && p.RequestID() == requestID &&
			p.Direction().Equal(valueobject.PaymentDirectionOutbound) {
			return p, true, nil
		}
	}
	return model.Payment{}, false, nil
}

func (r paymentRepo) Insert(_ context.Context, p model.Payment) error {
	defer r.lock()()
	for _, existing := range r.data().payments {
		if existing.CompanyID() == p.CompanyID() && existing.RequestID() == p.RequestID() &&
			existing.Direction().Equal(p.Direction()) {
			return apperr.DuplicatePayment(fmt.Errorf("payment %s already covers request %s", existing.ID(), p.RequestID()))
		}
	}
	r.data().payments[p.ID()] = p
	return nil
}

func (r paymentRepo) Update(_ context.Context, p model.Payment) error {
	defer r.lock()()
	if _, ok := r.data().payments[p.ID()]; !ok {
		return apperr.Internal(fmt.Errorf("payment %s not found", p.ID()))
	}
	r.data().payments[p.ID()] = p
	return nil
}

// ---------------------------------------------------------------------------
// Reference data
// ---------------------------------------------------------------------------

type bankAccountRepo struct{ table }

func (r bankAccountRepo) ListByCompany(_ context.Context, companyID string) ([]model.BankAccount, error) {
	defer r.lock()()
	var out []model.BankAccount
	for _, a := range r.data().accounts {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b model.BankAccount) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r bankAccountRepo) Insert(_ context.Context, a model.BankAccount) error {
	defer r.lock()()
	r.data().accounts = append(r.data().accounts, a)
	return nil
}

type companyRepo struct{ table }

func (r companyRepo) FindByID(_ context.Context, id string) (model.Company, error) {
	defer r.lock()()
	c, ok := r.data().companies[id]
	if !ok {
		return model.Company{}, apperr.CompanyNotFound()
	}
	return c, nil
}

func (r companyRepo) Insert(_ context.Context, c model.Company) error {
	defer r.lock()()
	r.data().companies[c.ID] = c
	return nil
}

type invoiceRepo struct{ table }

func (r invoiceRepo) FindByIDs(_ context.Context, companyID string, ids []string) ([]model.Invoice, error) {
	defer r.lock()()
	var out []model.Invoice
	for _, id := range ids {
		if inv, ok := r.data().invoices[id]; ok && inv.CompanyID == companyID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r invoiceRepo) Insert(_ context.Context, inv model.Invoice) error {
	defer r.lock()()
	r.data().invoices[inv.ID] = inv
	return nil
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

type caseRepo struct{ table }

func (r caseRepo) FindByID(_ context.Context, companyID, id string) (model.CollectionCase, error) {
	defer r.lock()()
	c, ok := r.data().cases[id]
	if !ok || c.CompanyID() != companyID {
		return model.CollectionCase{}, apperr.CollectionCaseNotFound()
	}
	return c, nil
}

func (r caseRepo) FindOpenByRequest(_ context.Context, companyID, requestID string) (model.CollectionCase, bool, error) {
	defer r.lock()()
	for _, c := range r.data().cases {
		if c.CompanyID() == companyID && c.RequestID() == requestID && c.IsOpen() {
			return c, true, nil
		}
	}
	return model.CollectionCase{}, false, nil
}

func (r caseRepo) Insert(_ context.Context, c model.CollectionCase) error {
	defer r.lock()()
	for _, existing := range r.data().cases {
		if existing.RequestID() == c.RequestID() && existing.IsOpen() {
			return apperr.DuplicateCollectionCase(fmt.Errorf("case %s is open for request %s", existing.ID(), c.RequestID()))
		}
	}
	r.data().cases[c.ID()] = c.ClearEvents()
	return nil
}

func (r caseRepo) Update(_ context.Context, c model.CollectionCase) error {
	defer r.lock()()
	if _, ok := r.data().cases[c.ID()]; !ok {
		return apperr.CollectionCaseNotFound()
	}
	r.data().cases[c.ID()] = c.ClearEvents()
	return nil
}

type actionRepo struct{ table }

func (r actionRepo) Insert(_ context.Context, a model.CollectionAction) error {
	defer r.lock()()
	r.data().actions = append(r.data().actions, a)
	return nil
}

func (r actionRepo) ListByCase(_ context.Context, companyID, caseID string) ([]model.CollectionAction, error) {
	defer r.lock()()
	var out []model.CollectionAction
	for _, a := range r.data().actions {
		if a.CompanyID() == companyID && a.CaseID() == caseID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

type overrideRepo struct{ table }

func (r overrideRepo) Find(_ context.Context, companyID string) (model.ParameterOverride, bool, error) {
	defer r.lock()()
	o, ok := r.data().overrides[companyID]
	return o, ok, nil
}

func (r overrideRepo) Upsert(_ context.Context, o model.ParameterOverride) error {
	defer r.lock()()
	r.data().overrides[o.CompanyID] = o
	return nil
}

func (r overrideRepo) Delete(_ context.Context, companyID string) error {
	defer r.lock()()
	delete(r.data().overrides, companyID)
	return nil
}

type settingsRepo struct{ table }

func (r settingsRepo) Get(_ context.Context) (model.GlobalSettings, error) {
	defer r.lock()()
	if r.data().settings == nil {
		return model.DefaultGlobalSettings(), nil
	}
	s := *r.data().settings
	s.Segments = cloneSegments(s.Segments)
	return s, nil
}

func (r settingsRepo) Put(_ context.Context, s model.GlobalSettings) error {
	defer r.lock()()
	s.Segments = cloneSegments(s.Segments)
	r.data().settings = &s
	return nil
}

func cloneSegments(in map[valueobject.Segment]model.SegmentSettings) map[valueobject.Segment]model.SegmentSettings {
	out := make(map[valueobject.Segment]model.SegmentSettings, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
