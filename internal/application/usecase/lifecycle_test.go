package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/usecase"
	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/event"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
)

func TestTransitionRequest_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("legal transition bumps the version and publishes one event", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000, valueobject.RequestStatusOffered, valueobject.RequestStatusAccepted)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		resp, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "signed", Actor: staff,
		})

		require.NoError(t, err)
		assert.Equal(t, "signed", resp.Status)
		assert.Equal(t, fr.Version()+1, resp.Version)
		require.Len(t, f.publisher.published, 1)
		changed, ok := f.publisher.published[0].(event.RequestStatusChanged)
		require.True(t, ok)
		assert.Equal(t, "accepted", changed.From)
		assert.Equal(t, "signed", changed.To)
		assert.Equal(t, "staff-1", changed.ActorID)
		assert.Equal(t, resp.Version, changed.Version)
	})

	t.Run("illegal transition writes nothing", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "signed", Actor: staff,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		assert.Equal(t, apperr.CodeInvalidTransition, apperr.CodeOf(err))
		assert.Equal(t, fr.Version(), f.request(t, fr.ID()).Version())
		assert.Empty(t, f.publisher.published)
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "paid", Actor: staff,
		})

		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("missing fields are reported per field", func(t *testing.T) {
		f := newFixture(t)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{CompanyID: "company-1", Actor: staff})

		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Contains(t, e.Fields, "request_id")
		assert.Contains(t, e.Fields, "target_status")
	})

	t.Run("client of another company is forbidden", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "cancelled", Actor: outsider,
		})

		assert.Equal(t, apperr.CodeForbiddenCompany, apperr.CodeOf(err))
	})

	t.Run("unknown request is not found", func(t *testing.T) {
		f := newFixture(t)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: "missing", TargetStatus: "cancelled", Actor: staff,
		})

		assert.Equal(t, apperr.CodeRequestNotFound, apperr.CodeOf(err))
		assert.Contains(t, err.Error(), "find request")
	})

	t.Run("publisher failure does not fail the operation", func(t *testing.T) {
		var logs bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		f.publisher.publishFunc = func(context.Context, ...event.DomainEvent) error {
			return errors.New("broker down")
		}
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		resp, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "cancelled", Actor: client,
		})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "failed to publish domain events")
		assert.Contains(t, logs.String(), apperr.CodeNotificationFailed)
	})

	t.Run("failed transaction publishes nothing", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uow := &mockUnitOfWork{
			withinTxFunc: func(ctx context.Context, fn func(r port.Repositories) error) error {
				if err := fn(f.store.Repositories()); err != nil {
					return err
				}
				return errors.New("commit failed")
			},
		}
		uc := usecase.NewTransitionRequestUseCase(uow, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "cancelled", Actor: staff,
		})

		require.EqualError(t, err, "commit failed")
		assert.Empty(t, f.publisher.published)
	})
}

func TestCreateOffer_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("prices the request and moves it to offered", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock)

		resp, err := uc.Execute(ctx, dto.CreateOfferRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})

		require.NoError(t, err)
		assert.Equal(t, "offered", resp.Offer.Status)
		assert.Equal(t, "offered", resp.Request.Status)
		assert.True(t, resp.Offer.Terms.AnnualRate.Equal(decimal.RequireFromString("0.3")), resp.Offer.Terms.AnnualRate.String())
		assert.True(t, resp.Offer.Terms.NetAmount.Equal(decimal.NewFromInt(8_445_000)), resp.Offer.Terms.NetAmount.String())
		assert.Equal(t, t0.Add(7*24*time.Hour), resp.Offer.Terms.ValidUntil)
		assert.Equal(t, []string{event.TypeOfferCreated, event.TypeRequestStatusChanged}, f.publisher.eventTypes())
	})

	t.Run("custom terms are clamped", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock)
		rate, advance := 250.0, 90.0

		resp, err := uc.Execute(ctx, dto.CreateOfferRequest{
			CompanyID: "company-1", RequestID: fr.ID(), Mode: "custom",
			Custom: &dto.CustomOfferInput{AnnualRatePct: &rate, AdvancePct: &advance},
			Actor:  staff,
		})

		require.NoError(t, err)
		assert.True(t, resp.Offer.Terms.AnnualRate.Equal(decimal.NewFromInt(2)))
		assert.True(t, resp.Offer.Terms.AdvancePct.Equal(decimal.NewFromInt(90)))
	})

	t.Run("only staff create offers", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock)

		_, err := uc.Execute(ctx, dto.CreateOfferRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: client})

		assert.Equal(t, apperr.CodeStaffOnly, apperr.CodeOf(err))
		assert.Empty(t, f.offers(t, fr.ID()))
	})

	t.Run("request must be in review", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000, valueobject.RequestStatusOffered)
		uc := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock)

		_, err := uc.Execute(ctx, dto.CreateOfferRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})

		assert.Equal(t, apperr.CodeNotInReview, apperr.CodeOf(err))
	})
}

func TestOfferDecisions(t *testing.T) {
	ctx := context.Background()

	offered := func(t *testing.T, f *fixture) dto.OfferWithRequestResponse {
		t.Helper()
		fr := f.seedRequest(t, 10_000_000)
		resp, err := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock).
			Execute(ctx, dto.CreateOfferRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})
		require.NoError(t, err)
		f.publisher.reset()
		return resp
	}

	t.Run("client accepts an active offer", func(t *testing.T) {
		f := newFixture(t)
		o := offered(t, f)
		uc := usecase.NewAcceptOfferUseCase(f.store, f.publisher, f.clock)

		resp, err := uc.Execute(ctx, dto.OfferDecisionRequest{
			CompanyID: "company-1", RequestID: o.Request.ID, OfferID: o.Offer.ID, Actor: client,
		})

		require.NoError(t, err)
		assert.Equal(t, "accepted", resp.Offer.Status)
		assert.Equal(t, "user-1", resp.Offer.AcceptedBy)
		assert.Equal(t, "accepted", resp.Request.Status)
		assert.Equal(t, []string{event.TypeOfferAccepted, event.TypeRequestStatusChanged}, f.publisher.eventTypes())
	})

	t.Run("expired offer leaves the request offered", func(t *testing.T) {
		f := newFixture(t)
		o := offered(t, f)
		f.clock.now = t0.Add(8 * 24 * time.Hour)
		uc := usecase.NewAcceptOfferUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.OfferDecisionRequest{
			CompanyID: "company-1", RequestID: o.Request.ID, OfferID: o.Offer.ID, Actor: client,
		})

		assert.Equal(t, apperr.CodeOfferExpired, apperr.CodeOf(err))
		assert.True(t, f.request(t, o.Request.ID).Status().Equal(valueobject.RequestStatusOffered))
		assert.True(t, f.offers(t, o.Request.ID)[0].Status().Equal(valueobject.OfferStatusOffered))
		assert.Empty(t, f.publisher.published)
	})

	t.Run("offer of another request is not found", func(t *testing.T) {
		f := newFixture(t)
		o := offered(t, f)
		other := f.seedRequest(t, 5_000_000, valueobject.RequestStatusOffered)
		uc := usecase.NewAcceptOfferUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.OfferDecisionRequest{
			CompanyID: "company-1", RequestID: other.ID(), OfferID: o.Offer.ID, Actor: client,
		})

		assert.Equal(t, apperr.CodeOfferNotFound, apperr.CodeOf(err))
	})

	t.Run("rejecting returns the request to review", func(t *testing.T) {
		f := newFixture(t)
		o := offered(t, f)
		uc := usecase.NewRejectOfferUseCase(f.store, f.publisher, f.clock)

		resp, err := uc.Execute(ctx, dto.OfferDecisionRequest{
			CompanyID: "company-1", RequestID: o.Request.ID, OfferID: o.Offer.ID, Actor: client,
		})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Offer.Status)
		assert.Equal(t, "review", resp.Request.Status)
		assert.Equal(t, o.Request.Version+1, resp.Request.Version)
		cancelled, ok := f.publisher.published[0].(event.OfferCancelled)
		require.True(t, ok)
		assert.Equal(t, usecase.OfferRejectedReason, cancelled.Reason)
	})

	t.Run("a rejected offer cannot be accepted", func(t *testing.T) {
		f := newFixture(t)
		o := offered(t, f)
		decision := dto.OfferDecisionRequest{
			CompanyID: "company-1", RequestID: o.Request.ID, OfferID: o.Offer.ID, Actor: client,
		}
		_, err := usecase.NewRejectOfferUseCase(f.store, f.publisher, f.clock).Execute(ctx, decision)
		require.NoError(t, err)

		_, err = usecase.NewAcceptOfferUseCase(f.store, f.publisher, f.clock).Execute(ctx, decision)

		assert.Equal(t, apperr.CodeOfferNotActive, apperr.CodeOf(err))
	})
}

func TestCancelRequest_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels the request and its open offers", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		_, err := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock).
			Execute(ctx, dto.CreateOfferRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})
		require.NoError(t, err)
		f.publisher.reset()
		uc := usecase.NewCancelRequestUseCase(f.store, f.publisher, f.clock)

		resp, err := uc.Execute(ctx, dto.CancelRequestRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: client})

		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		offers := f.offers(t, fr.ID())
		require.Len(t, offers, 1)
		assert.True(t, offers[0].Status().Equal(valueobject.OfferStatusCancelled))
		assert.Equal(t, []string{event.TypeOfferCancelled, event.TypeRequestStatusChanged}, f.publisher.eventTypes())
	})

	t.Run("funded request cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000, valueobject.RequestStatusAccepted, valueobject.RequestStatusFunded)
		uc := usecase.NewCancelRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.CancelRequestRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})
}

func TestGetNextSteps_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("signed request without a case waits for disbursement", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000, valueobject.RequestStatusAccepted, valueobject.RequestStatusSigned)
		uc := usecase.NewGetNextStepsUseCase(f.store)

		resp, err := uc.Execute(ctx, dto.GetNextStepsRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: client})

		require.NoError(t, err)
		assert.Equal(t, "signed", resp.Status)
		assert.Equal(t, "Esperar desembolso", resp.Label)
	})

	t.Run("open case with a promise shows the promise date", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000, valueobject.RequestStatusAccepted, valueobject.RequestStatusSigned)
		opened, err := usecase.NewOpenCollectionCaseUseCase(f.store, f.publisher, f.clock).
			Execute(ctx, dto.OpenCollectionCaseRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})
		require.NoError(t, err)
		_, err = usecase.NewUpdateCollectionPromiseUseCase(f.store, f.publisher, f.clock).
			Execute(ctx, dto.UpdateCollectionPromiseRequest{
				CompanyID: "company-1", CaseID: opened.ID,
				PromiseAmount: decimal.NewFromInt(1_000_000),
				PromiseDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				Actor:         staff,
			})
		require.NoError(t, err)
		uc := usecase.NewGetNextStepsUseCase(f.store)

		resp, err := uc.Execute(ctx, dto.GetNextStepsRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: client})

		require.NoError(t, err)
		assert.Equal(t, "Seguimiento de cobranza en curso", resp.Label)
		assert.Equal(t, "Compromiso de pago para el 15/03/2026", resp.Hint)
	})
}

func TestTransitionRequest_OwnedTargets(t *testing.T) {
	ctx := context.Background()

	t.Run("client cannot approve an oversized request past the exposure gate", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 999_000_000_000)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "accepted", Actor: client,
		})

		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
		assert.Equal(t, apperr.CodeTransitionNotAllowed, apperr.CodeOf(err))
		assert.True(t, f.request(t, fr.ID()).Status().Equal(valueobject.RequestStatusReview))
		assert.Empty(t, f.offers(t, fr.ID()))
		assert.Empty(t, f.publisher.published)
	})

	t.Run("funding goes through disbursement only", func(t *testing.T) {
		for _, actor := range []model.Actor{client, staff} {
			f := newFixture(t)
			fr := acceptedRequest(t, f)
			uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

			_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
				CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "funded", Actor: actor,
			})

			assert.Equal(t, apperr.CodeTransitionNotAllowed, apperr.CodeOf(err), actor.UserID)
			_, found, err := f.store.Repositories().Payments.FindOutbound(ctx, "company-1", fr.ID())
			require.NoError(t, err)
			assert.False(t, found, actor.UserID)
			assert.True(t, f.request(t, fr.ID()).Status().Equal(valueobject.RequestStatusAccepted))
		}
	})

	t.Run("leaving offered is left to the offer operations", func(t *testing.T) {
		for _, target := range []string{"accepted", "review", "cancelled"} {
			f := newFixture(t)
			fr := offeredRequest(t, f)
			uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

			_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
				CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: target, Actor: client,
			})

			assert.Equal(t, apperr.CodeTransitionNotAllowed, apperr.CodeOf(err), target)
			assert.True(t, f.request(t, fr.ID()).Status().Equal(valueobject.RequestStatusOffered), target)
			assert.True(t, f.offers(t, fr.ID())[0].Status().Equal(valueobject.OfferStatusOffered), target)
		}
	})

	t.Run("rejecting and archiving are staff only", func(t *testing.T) {
		f := newFixture(t)
		fr := f.seedRequest(t, 10_000_000)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		_, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "rejected", Actor: client,
		})
		assert.Equal(t, apperr.CodeStaffOnly, apperr.CodeOf(err))

		funded := fundedRequest(t, f)
		_, err = uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: funded.ID(), TargetStatus: "archived", Actor: client,
		})
		assert.Equal(t, apperr.CodeStaffOnly, apperr.CodeOf(err))
	})

	t.Run("staff rejection of an offered request cancels its offer", func(t *testing.T) {
		f := newFixture(t)
		fr := offeredRequest(t, f)
		uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

		resp, err := uc.Execute(ctx, dto.TransitionRequestRequest{
			CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "rejected", Actor: staff,
		})

		require.NoError(t, err)
		assert.Equal(t, "rejected", resp.Status)
		offers := f.offers(t, fr.ID())
		require.Len(t, offers, 1)
		assert.True(t, offers[0].Status().Equal(valueobject.OfferStatusCancelled))
		assert.Equal(t, []string{event.TypeOfferCancelled, event.TypeRequestStatusChanged}, f.publisher.eventTypes())
		cancelled, ok := f.publisher.published[0].(event.OfferCancelled)
		require.True(t, ok)
		assert.Equal(t, usecase.RequestRejectedReason, cancelled.Reason)
	})
}

// genericEdges lists what TransitionRequest may do, and whether staff is
// required for it.
var genericEdges = map[[2]string]bool{
	{"review", "cancelled"}:   false,
	{"review", "rejected"}:    true,
	{"offered", "rejected"}:   true,
	{"accepted", "signed"}:    false,
	{"funded", "archived"}:    true,
	{"cancelled", "archived"}: true,
	{"rejected", "archived"}:  true,
}

var allStatuses = []string{"review", "offered", "accepted", "signed", "funded", "cancelled", "rejected", "archived"}

func TestTransitionRequest_EveryCombination(t *testing.T) {
	ctx := context.Background()

	seeds := map[string]func(t *testing.T, f *fixture) model.FundingRequest{
		"review":   func(t *testing.T, f *fixture) model.FundingRequest { return f.seedRequest(t, 10_000_000) },
		"offered":  offeredRequest,
		"accepted": acceptedRequest,
		"signed":   signedRequest,
		"funded":   fundedRequest,
		"cancelled": func(t *testing.T, f *fixture) model.FundingRequest {
			return f.seedRequest(t, 10_000_000, valueobject.RequestStatusCancelled)
		},
		"rejected": func(t *testing.T, f *fixture) model.FundingRequest {
			return f.seedRequest(t, 10_000_000, valueobject.RequestStatusRejected)
		},
		"archived": func(t *testing.T, f *fixture) model.FundingRequest {
			return f.seedRequest(t, 10_000_000, valueobject.RequestStatusRejected, valueobject.RequestStatusArchived)
		},
	}
	actors := map[string]model.Actor{"client": client, "staff": staff}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			for actorName, actor := range actors {
				staffOnly, edge := genericEdges[[2]string{from, to}]
				wantOK := edge && (!staffOnly || actor.IsStaff)

				t.Run(actorName+" "+from+" to "+to, func(t *testing.T) {
					f := newFixture(t)
					fr := seeds[from](t, f)
					before := f.request(t, fr.ID())
					f.publisher.reset()
					uc := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock)

					resp, err := uc.Execute(ctx, dto.TransitionRequestRequest{
						CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: to, Actor: actor,
					})

					if wantOK {
						require.NoError(t, err)
						assert.Equal(t, to, resp.Status)
						assert.Equal(t, before.Version()+1, resp.Version)
					} else {
						require.Error(t, err)
						kind := apperr.KindOf(err)
						assert.True(t, kind == apperr.KindInvalidTransition || apperr.CodeOf(err) == apperr.CodeStaffOnly, err.Error())
						after := f.request(t, fr.ID())
						assert.True(t, before.Status().Equal(after.Status()))
						assert.Equal(t, before.Version(), after.Version())
						assert.Empty(t, f.publisher.published)
					}
					assertLifecycleConsistent(t, f, fr.ID())
				})
			}
		}
	}
}

func TestLifecycle_RandomCallSequences(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(7, 11))

	type step func(f *fixture, id string, actor model.Actor) error
	latestOffer := func(f *fixture, id string) string {
		offers, err := f.store.Repositories().Offers.ListByRequest(ctx, "company-1", id)
		if err != nil || len(offers) == 0 {
			return "none"
		}
		return offers[0].ID()
	}
	steps := []step{
		func(f *fixture, id string, actor model.Actor) error {
			target := allStatuses[rng.IntN(len(allStatuses))]
			_, err := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock).Execute(ctx,
				dto.TransitionRequestRequest{CompanyID: "company-1", RequestID: id, TargetStatus: target, Actor: actor})
			return err
		},
		func(f *fixture, id string, actor model.Actor) error {
			_, err := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock).Execute(ctx,
				dto.CreateOfferRequest{CompanyID: "company-1", RequestID: id, Actor: actor})
			return err
		},
		func(f *fixture, id string, actor model.Actor) error {
			_, err := usecase.NewAcceptOfferUseCase(f.store, f.publisher, f.clock).Execute(ctx,
				dto.OfferDecisionRequest{CompanyID: "company-1", RequestID: id, OfferID: latestOffer(f, id), Actor: actor})
			return err
		},
		func(f *fixture, id string, actor model.Actor) error {
			_, err := usecase.NewRejectOfferUseCase(f.store, f.publisher, f.clock).Execute(ctx,
				dto.OfferDecisionRequest{CompanyID: "company-1", RequestID: id, OfferID: latestOffer(f, id), Actor: actor})
			return err
		},
		func(f *fixture, id string, actor model.Actor) error {
			_, err := usecase.NewCancelRequestUseCase(f.store, f.publisher, f.clock).Execute(ctx,
				dto.CancelRequestRequest{CompanyID: "company-1", RequestID: id, Actor: actor})
			return err
		},
		func(f *fixture, id string, actor model.Actor) error {
			_, err := usecase.NewEvaluateAutoApprovalUseCase(f.store, f.publisher, f.resolver, f.calculator, f.gate, f.clock).
				Execute(ctx, dto.EvaluateAutoApprovalRequest{CompanyID: "company-1", RequestID: id, Actor: actor})
			return err
		},
		func(f *fixture, id string, actor model.Actor) error {
			_, err := usecase.NewDisburseUseCase(f.store, f.publisher, f.clock).Execute(ctx,
				dto.DisburseRequest{CompanyID: "company-1", RequestID: id, Actor: actor})
			return err
		},
	}

	for run := 0; run < 40; run++ {
		f := newFixture(t)
		f.seedAccounts(t, model.BankAccount{ID: "acct-1", CompanyID: "company-1", IsDefault: true, CreatedAt: t0})
		fr := f.seedRequest(t, 10_000_000)
		history := []string{fr.Status().String()}

		for i := 0; i < 15; i++ {
			actor := client
			if rng.IntN(2) == 0 {
				actor = staff
			}
			if err := steps[rng.IntN(len(steps))](f, fr.ID(), actor); err != nil {
				assert.NotEqual(t, apperr.KindInternal, apperr.KindOf(err), err.Error())
			}
			current := f.request(t, fr.ID()).Status().String()
			if current != history[len(history)-1] {
				history = append(history, current)
			}
			assertLifecycleConsistent(t, f, fr.ID())
		}

		for i := 1; i < len(history); i++ {
			assert.True(t, lifecycleStep(history[i-1], history[i]), "run %d: %v", run, history)
		}
	}
}

var happyPathRank = map[string]int{"review": 0, "offered": 1, "accepted": 2, "signed": 3, "funded": 4}

// lifecycleStep accepts forward moves on the happy path, the reopen and
// cancel or reject branches, and archiving of closed requests.
func lifecycleStep(from, to string) bool {
	fromRank, fromHappy := happyPathRank[from]
	toRank, toHappy := happyPathRank[to]
	switch {
	case fromHappy && toHappy && toRank > fromRank:
		return true
	case from == "offered" && to == "review":
		return true
	case (from == "review" || from == "offered") && (to == "cancelled" || to == "rejected"):
		return true
	case to == "archived":
		return from == "funded" || from == "cancelled" || from == "rejected"
	}
	return false
}

// assertLifecycleConsistent checks that offers and payments agree with the
// request status.
func assertLifecycleConsistent(t *testing.T, f *fixture, requestID string) {
	t.Helper()
	fr := f.request(t, requestID)
	counts := map[string]int{}
	for _, o := range f.offers(t, requestID) {
		counts[o.Status().String()]++
	}
	_, paid, err := f.store.Repositories().Payments.FindOutbound(context.Background(), "company-1", requestID)
	require.NoError(t, err)

	switch fr.Status() {
	case valueobject.RequestStatusOffered:
		assert.Equal(t, 1, counts["offered"], "offered request has one open offer")
		assert.Zero(t, counts["accepted"])
	case valueobject.RequestStatusAccepted, valueobject.RequestStatusSigned:
		assert.Equal(t, 1, counts["accepted"], "%s request has its accepted offer", fr.Status())
		assert.Zero(t, counts["offered"])
		assert.False(t, paid)
	case valueobject.RequestStatusFunded:
		assert.Equal(t, 1, counts["accepted"])
		assert.True(t, paid, "funded request has its payment")
		assert.NotEmpty(t, fr.DisbursementAccountID())
		assert.NotNil(t, fr.DisbursedAt())
	case valueobject.RequestStatusReview, valueobject.RequestStatusCancelled, valueobject.RequestStatusRejected:
		assert.Zero(t, counts["offered"], "%s request has no open offer", fr.Status())
		assert.Zero(t, counts["accepted"])
		assert.False(t, paid)
	}
}

func offeredRequest(t *testing.T, f *fixture) model.FundingRequest {
	t.Helper()
	fr := f.seedRequest(t, 10_000_000)
	_, err := usecase.NewCreateOfferUseCase(f.store, f.publisher, f.resolver, f.calculator, f.clock).
		Execute(context.Background(), dto.CreateOfferRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})
	require.NoError(t, err)
	return f.request(t, fr.ID())
}

func acceptedRequest(t *testing.T, f *fixture) model.FundingRequest {
	t.Helper()
	fr := f.seedRequest(t, 10_000_000)
	_, err := usecase.NewEvaluateAutoApprovalUseCase(f.store, f.publisher, f.resolver, f.calculator, f.gate, f.clock).
		Execute(context.Background(), dto.EvaluateAutoApprovalRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})
	require.NoError(t, err)
	return f.request(t, fr.ID())
}

func signedRequest(t *testing.T, f *fixture) model.FundingRequest {
	t.Helper()
	fr := acceptedRequest(t, f)
	_, err := usecase.NewTransitionRequestUseCase(f.store, f.publisher, f.clock).Execute(context.Background(),
		dto.TransitionRequestRequest{CompanyID: "company-1", RequestID: fr.ID(), TargetStatus: "signed", Actor: client})
	require.NoError(t, err)
	return f.request(t, fr.ID())
}

func fundedRequest(t *testing.T, f *fixture) model.FundingRequest {
	t.Helper()
	fr := acceptedRequest(t, f)
	f.seedAccounts(t, model.BankAccount{ID: "acct-" + fr.ID(), CompanyID: "company-1", IsDefault: true, CreatedAt: t0})
	_, err := usecase.NewDisburseUseCase(f.store, f.publisher, f.clock).Execute(context.Background(),
		dto.DisburseRequest{CompanyID: "company-1", RequestID: fr.ID(), Actor: staff})
	require.NoError(t, err)
	return f.request(t, fr.ID())
}
