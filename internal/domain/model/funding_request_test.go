package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/money"
)

var (
	t0    = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	staff = model.Actor{UserID: "staff-1", IsStaff: true}
)

func newTestRequest(t *testing.T) model.FundingRequest {
	t.Helper()
	req, err := model.NewFundingRequest(
		"company-1",
		money.New(decimal.NewFromInt(10_000_000), money.COP),
		"inv-1", []string{"inv-2", "inv-1"},
		t0,
	)
	require.NoError(t, err)
	return req
}

func TestFundingRequest_Creation(t *testing.T) {
	req := newTestRequest(t)

	assert.NotEmpty(t, req.ID())
	assert.Equal(t, "company-1", req.CompanyID())
	assert.True(t, req.Status().Equal(valueobject.RequestStatusReview))
	assert.Equal(t, 1, req.Version())
	assert.Equal(t, []string{"inv-1", "inv-2"}, req.InvoiceIDs())
	assert.Nil(t, req.DisbursedAt())
	assert.Empty(t, req.DomainEvents())

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := model.NewFundingRequest("company-1", money.Zero(money.COP), "", nil, t0)
		assert.Error(t, err)
	})

	t.Run("requires a company", func(t *testing.T) {
		_, err := model.NewFundingRequest("", money.New(decimal.NewFromInt(1), money.COP), "", nil, t0)
		assert.Error(t, err)
	})
}

func TestFundingRequest_TransitionTo(t *testing.T) {
	t.Run("legal transition bumps version and records one event", func(t *testing.T) {
		req := newTestRequest(t)

		next, err := req.TransitionTo(valueobject.RequestStatusOffered, staff, t0.Add(time.Minute))
		require.NoError(t, err)

		assert.True(t, next.Status().Equal(valueobject.RequestStatusOffered))
		assert.Equal(t, 2, next.Version())
		require.Len(t, next.DomainEvents(), 1)

		changed, ok := next.DomainEvents()[0].(event.RequestStatusChanged)
		require.True(t, ok)
		assert.Equal(t, "review", changed.From)
		assert.Equal(t, "offered", changed.To)
		assert.Equal(t, "staff-1", changed.ActorID)
		assert.Equal(t, req.ID(), changed.EntityID)
		assert.Equal(t, "company-1", changed.CompanyID)
		assert.Equal(t, 2, changed.Version)

		assert.True(t, req.Status().Equal(valueobject.RequestStatusReview), "original must be unchanged")
	})

	t.Run("illegal transition fails without mutation", func(t *testing.T) {
		req := newTestRequest(t)

		same, err := req.TransitionTo(valueobject.RequestStatusFunded, staff, t0)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		assert.Equal(t, req.Version(), same.Version())
		assert.Empty(t, same.DomainEvents())
	})

	t.Run("happy path history is monotonic", func(t *testing.T) {
		req := newTestRequest(t)
		path := []valueobject.RequestStatus{
			valueobject.RequestStatusOffered,
			valueobject.RequestStatusAccepted,
			valueobject.RequestStatusSigned,
			valueobject.RequestStatusFunded,
			valueobject.RequestStatusArchived,
		}
		var err error
		for _, target := range path {
			req, err = req.TransitionTo(target, staff, t0)
			require.NoError(t, err)
		}
		assert.Len(t, req.DomainEvents(), len(path))
		assert.Equal(t, 1+len(path), req.Version())

		// Nothing leaves archived.
		for _, s := range []valueobject.RequestStatus{valueobject.RequestStatusReview, valueobject.RequestStatusFunded} {
			_, err := req.TransitionTo(s, staff, t0)
			assert.Error(t, err)
		}
	})
}

func TestFundingRequest_MarkFunded(t *testing.T) {
	accepted := func(t *testing.T) model.FundingRequest {
		req, err := newTestRequest(t).TransitionTo(valueobject.RequestStatusAccepted, staff, t0)
		require.NoError(t, err)
		return req.ClearEvents()
	}

	t.Run("funds an accepted request", func(t *testing.T) {
		at := t0.Add(time.Hour)
		funded, err := accepted(t).MarkFunded("acct-1", staff, at)
		require.NoError(t, err)

		assert.True(t, funded.Status().Equal(valueobject.RequestStatusFunded))
		assert.Equal(t, "acct-1", funded.DisbursementAccountID())
		require.NotNil(t, funded.DisbursedAt())
		assert.Equal(t, at, *funded.DisbursedAt())
		assert.Len(t, funded.DomainEvents(), 1)
	})

	t.Run("retry on funded keeps disbursed_at and emits nothing", func(t *testing.T) {
		first := t0.Add(time.Hour)
		funded, err := accepted(t).MarkFunded("acct-1", staff, first)
		require.NoError(t, err)
		funded = funded.ClearEvents()

		again, err := funded.MarkFunded("acct-2", staff, first.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "acct-2", again.DisbursementAccountID())
		assert.Equal(t, first, *again.DisbursedAt())
		assert.Empty(t, again.DomainEvents())
		assert.Equal(t, funded.Version()+1, again.Version())
	})

	t.Run("review request cannot be funded", func(t *testing.T) {
		req := newTestRequest(t)
		assert.False(t, req.ReadyForDisbursement())
		_, err := req.MarkFunded("acct-1", staff, t0)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})
}
