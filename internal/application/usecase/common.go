package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/internal/domain/port"
	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/domain/valueobject"
	"github.com/Ban68/LePret-sub001/pkg/events"
)

// ensureCompanyAccess lets staff act on any company and clients only on the
// company of their active membership.
func ensureCompanyAccess(actor model.Actor, companyID string) error {
	if !actor.CanActFor(companyID) {
		return apperr.ForbiddenCompany()
	}
	return nil
}

func requireStaff(actor model.Actor) error {
	if !actor.IsStaff {
		return apperr.StaffOnly()
	}
	return nil
}

// notify hands committed events to the publisher. Delivery is best effort:
// a publish error is logged at WARN and the operation still succeeds.
func notify(ctx context.Context, publisher port.EventPublisher, collected *events.EventCollector) {
	if collected.Len() == 0 {
		return
	}
	pending := collected.Drain()
	if err := publisher.Publish(ctx, pending...); err != nil {
		slog.WarnContext(ctx, "failed to publish domain events",
			"count", len(pending),
			"first_event_type", pending[0].EventType(),
			"error", apperr.NotificationFailed(err),
		)
	}
}

// resolveParameters loads the company, the settings singleton and the
// override, then merges them.
func resolveParameters(
	ctx context.Context,
	r port.Repositories,
	resolver *service.ParameterResolver,
	companyID string,
) (service.EffectiveParameters, error) {
	company, err := r.Companies.FindByID(ctx, companyID)
	if err != nil {
		return service.EffectiveParameters{}, fmt.Errorf("find company: %w", err)
	}
	settings, err := r.Settings.Get(ctx)
	if err != nil {
		return service.EffectiveParameters{}, fmt.Errorf("load settings: %w", err)
	}
	override, found, err := r.Overrides.Find(ctx, companyID)
	if err != nil {
		return service.EffectiveParameters{}, fmt.Errorf("load override: %w", err)
	}
	if !found {
		return resolver.Resolve(company, settings, nil), nil
	}
	return resolver.Resolve(company, settings, &override), nil
}

// standardParams feeds resolved parameters to the offer calculator.
func standardParams(p service.EffectiveParameters) service.StandardParams {
	rate := p.AnnualRate()
	advance := p.AdvancePct
	return service.StandardParams{AnnualRate: &rate, AdvancePct: &advance}
}

// cancelOfferedOffers cancels every offer of the request still in offered.
func cancelOfferedOffers(
	ctx context.Context,
	r port.Repositories,
	companyID, requestID, reason string,
	collected *events.EventCollector,
	now time.Time,
) error {
	offers, err := r.Offers.ListByRequest(ctx, companyID, requestID)
	if err != nil {
		return fmt.Errorf("list offers: %w", err)
	}
	for _, o := range offers {
		if !o.Status().Equal(valueobject.OfferStatusOffered) {
			continue
		}
		cancelled, err := o.Cancel(reason, now)
		if err != nil {
			return fmt.Errorf("cancel offer %s: %w", o.ID(), err)
		}
		if err := r.Offers.Update(ctx, cancelled); err != nil {
			return fmt.Errorf("update offer %s: %w", o.ID(), err)
		}
		collected.Record(cancelled.DomainEvents()...)
	}
	return nil
}
