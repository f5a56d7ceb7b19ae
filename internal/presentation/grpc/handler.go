package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
	"github.com/Ban68/LePret-sub001/internal/application/usecase"
	"github.com/Ban68/LePret-sub001/internal/domain/model"
	"github.com/Ban68/LePret-sub001/pkg/auth"
)

// UseCases groups the application operations served over gRPC.
type UseCases struct {
	TransitionRequest       *usecase.TransitionRequestUseCase
	CancelRequest           *usecase.CancelRequestUseCase
	ComputeOffer            *usecase.ComputeOfferUseCase
	CreateOffer             *usecase.CreateOfferUseCase
	AcceptOffer             *usecase.AcceptOfferUseCase
	RejectOffer             *usecase.RejectOfferUseCase
	EvaluateAutoApproval    *usecase.EvaluateAutoApprovalUseCase
	Disburse                *usecase.DisburseUseCase
	GetNextSteps            *usecase.GetNextStepsUseCase
	GetEffectiveParameters  *usecase.GetEffectiveParametersUseCase
	UpsertParameterOverride *usecase.UpsertParameterOverrideUseCase
	ResetParameterOverride  *usecase.ResetParameterOverrideUseCase
	GetGlobalSettings       *usecase.GetGlobalSettingsUseCase
	UpdateGlobalSettings    *usecase.UpdateGlobalSettingsUseCase
	OpenCollectionCase      *usecase.OpenCollectionCaseUseCase
	RecordCollectionAction  *usecase.RecordCollectionActionUseCase
	UpdateCollectionPromise *usecase.UpdateCollectionPromiseUseCase
	CloseCollectionCase     *usecase.CloseCollectionCaseUseCase
	ListCollectionActions   *usecase.ListCollectionActionsUseCase
}

// FactoringHandler implements FactoringServiceServer on top of the use cases.
// The caller's actor is always taken from the verified token claims.
type FactoringHandler struct {
	uc UseCases
}

var _ FactoringServiceServer = (*FactoringHandler)(nil)

// NewFactoringHandler creates a handler over uc.
func NewFactoringHandler(uc UseCases) *FactoringHandler {
	return &FactoringHandler{uc: uc}
}

// actorFromContext maps the token claims stored by the auth interceptor to
// the domain actor.
func actorFromContext(ctx context.Context) (model.Actor, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok || claims == nil {
		return model.Actor{}, status.Error(codes.Unauthenticated, "missing caller identity")
	}
	return model.Actor{
		UserID:  claims.UserID,
		Email:   claims.Email,
		IsStaff: claims.IsStaff,
		Membership: model.Membership{
			CompanyID: claims.Membership.CompanyID,
			Role:      claims.Membership.Role,
			Status:    claims.Membership.Status,
		},
	}, nil
}

// serve resolves the actor, runs exec and converts its error.
func serve[Req, Resp any](ctx context.Context, in *Req, setActor func(*Req, model.Actor), exec func(context.Context, Req) (Resp, error)) (*Resp, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	req := *in
	setActor(&req, actor)

	resp, err := exec(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Request lifecycle
// ---------------------------------------------------------------------------

func (h *FactoringHandler) TransitionRequest(ctx context.Context, in *dto.TransitionRequestRequest) (*dto.FundingRequestResponse, error) {
	return serve(ctx, in, func(r *dto.TransitionRequestRequest, a model.Actor) { r.Actor = a }, h.uc.TransitionRequest.Execute)
}

func (h *FactoringHandler) CancelRequest(ctx context.Context, in *dto.CancelRequestRequest) (*dto.FundingRequestResponse, error) {
	return serve(ctx, in, func(r *dto.CancelRequestRequest, a model.Actor) { r.Actor = a }, h.uc.CancelRequest.Execute)
}

func (h *FactoringHandler) GetNextSteps(ctx context.Context, in *dto.GetNextStepsRequest) (*dto.NextStepResponse, error) {
	return serve(ctx, in, func(r *dto.GetNextStepsRequest, a model.Actor) { r.Actor = a }, h.uc.GetNextSteps.Execute)
}

// ---------------------------------------------------------------------------
// Offers
// ---------------------------------------------------------------------------

func (h *FactoringHandler) ComputeOffer(ctx context.Context, in *dto.ComputeOfferRequest) (*dto.OfferTermsResponse, error) {
	return serve(ctx, in, func(r *dto.ComputeOfferRequest, a model.Actor) { r.Actor = a }, h.uc.ComputeOffer.Execute)
}

func (h *FactoringHandler) CreateOffer(ctx context.Context, in *dto.CreateOfferRequest) (*dto.OfferWithRequestResponse, error) {
	return serve(ctx, in, func(r *dto.CreateOfferRequest, a model.Actor) { r.Actor = a }, h.uc.CreateOffer.Execute)
}

func (h *FactoringHandler) AcceptOffer(ctx context.Context, in *dto.OfferDecisionRequest) (*dto.OfferWithRequestResponse, error) {
	return serve(ctx, in, func(r *dto.OfferDecisionRequest, a model.Actor) { r.Actor = a }, h.uc.AcceptOffer.Execute)
}

func (h *FactoringHandler) RejectOffer(ctx context.Context, in *dto.OfferDecisionRequest) (*dto.OfferWithRequestResponse, error) {
	return serve(ctx, in, func(r *dto.OfferDecisionRequest, a model.Actor) { r.Actor = a }, h.uc.RejectOffer.Execute)
}

// EvaluateAutoApproval returns only the error on rejection; the figures of a
// rejected evaluation are not sent.
func (h *FactoringHandler) EvaluateAutoApproval(ctx context.Context, in *dto.EvaluateAutoApprovalRequest) (*dto.AutoApprovalResponse, error) {
	return serve(ctx, in, func(r *dto.EvaluateAutoApprovalRequest, a model.Actor) { r.Actor = a }, h.uc.EvaluateAutoApproval.Execute)
}

// ---------------------------------------------------------------------------
// Disbursement
// ---------------------------------------------------------------------------

func (h *FactoringHandler) Disburse(ctx context.Context, in *dto.DisburseRequest) (*dto.DisburseResponse, error) {
	return serve(ctx, in, func(r *dto.DisburseRequest, a model.Actor) { r.Actor = a }, h.uc.Disburse.Execute)
}

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

func (h *FactoringHandler) GetEffectiveParameters(ctx context.Context, in *dto.GetParametersRequest) (*dto.EffectiveParametersResponse, error) {
	return serve(ctx, in, func(r *dto.GetParametersRequest, a model.Actor) { r.Actor = a }, h.uc.GetEffectiveParameters.Execute)
}

func (h *FactoringHandler) UpsertParameterOverride(ctx context.Context, in *dto.UpsertParameterOverrideRequest) (*dto.ParameterOverrideResponse, error) {
	return serve(ctx, in, func(r *dto.UpsertParameterOverrideRequest, a model.Actor) { r.Actor = a }, h.uc.UpsertParameterOverride.Execute)
}

func (h *FactoringHandler) ResetParameterOverride(ctx context.Context, in *dto.ResetParameterOverrideRequest) (*dto.ResetParameterOverrideResponse, error) {
	return serve(ctx, in, func(r *dto.ResetParameterOverrideRequest, a model.Actor) { r.Actor = a }, h.uc.ResetParameterOverride.Execute)
}

func (h *FactoringHandler) GetGlobalSettings(ctx context.Context, in *dto.GetGlobalSettingsRequest) (*dto.GlobalSettings, error) {
	return serve(ctx, in, func(r *dto.GetGlobalSettingsRequest, a model.Actor) { r.Actor = a }, h.uc.GetGlobalSettings.Execute)
}

func (h *FactoringHandler) UpdateGlobalSettings(ctx context.Context, in *dto.UpdateGlobalSettingsRequest) (*dto.GlobalSettings, error) {
	return serve(ctx, in, func(r *dto.UpdateGlobalSettingsRequest, a model.Actor) { r.Actor = a }, h.uc.UpdateGlobalSettings.Execute)
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

func (h *FactoringHandler) OpenCollectionCase(ctx context.Context, in *dto.OpenCollectionCaseRequest) (*dto.CollectionCaseResponse, error) {
	return serve(ctx, in, func(r *dto.OpenCollectionCaseRequest, a model.Actor) { r.Actor = a }, h.uc.OpenCollectionCase.Execute)
}

func (h *FactoringHandler) RecordCollectionAction(ctx context.Context, in *dto.RecordCollectionActionRequest) (*dto.RecordCollectionActionResponse, error) {
	return serve(ctx, in, func(r *dto.RecordCollectionActionRequest, a model.Actor) { r.Actor = a }, h.uc.RecordCollectionAction.Execute)
}

func (h *FactoringHandler) UpdateCollectionPromise(ctx context.Context, in *dto.UpdateCollectionPromiseRequest) (*dto.CollectionCaseResponse, error) {
	return serve(ctx, in, func(r *dto.UpdateCollectionPromiseRequest, a model.Actor) { r.Actor = a }, h.uc.UpdateCollectionPromise.Execute)
}

func (h *FactoringHandler) CloseCollectionCase(ctx context.Context, in *dto.CloseCollectionCaseRequest) (*dto.CollectionCaseResponse, error) {
	return serve(ctx, in, func(r *dto.CloseCollectionCaseRequest, a model.Actor) { r.Actor = a }, h.uc.CloseCollectionCase.Execute)
}

func (h *FactoringHandler) ListCollectionActions(ctx context.Context, in *dto.ListCollectionActionsRequest) (*dto.CollectionActionsResponse, error) {
	return serve(ctx, in, func(r *dto.ListCollectionActionsRequest, a model.Actor) { r.Actor = a }, h.uc.ListCollectionActions.Execute)
}
