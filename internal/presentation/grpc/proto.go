package grpc

// proto.go holds the hand-written service descriptor of FactoringService.
// Messages are the application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Ban68/LePret-sub001/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "factoring.v1.FactoringService"

// FactoringServiceServer is the server API for FactoringService.
type FactoringServiceServer interface {
	TransitionRequest(context.Context, *dto.TransitionRequestRequest) (*dto.FundingRequestResponse, error)
	CancelRequest(context.Context, *dto.CancelRequestRequest) (*dto.FundingRequestResponse, error)
	ComputeOffer(context.Context, *dto.ComputeOfferRequest) (*dto.OfferTermsResponse, error)
	CreateOffer(context.Context, *dto.CreateOfferRequest) (*dto.OfferWithRequestResponse, error)
	AcceptOffer(context.Context, *dto.OfferDecisionRequest) (*dto.OfferWithRequestResponse, error)
	RejectOffer(context.Context, *dto.OfferDecisionRequest) (*dto.OfferWithRequestResponse, error)
	EvaluateAutoApproval(context.Context, *dto.EvaluateAutoApprovalRequest) (*dto.AutoApprovalResponse, error)
	Disburse(context.Context, *dto.DisburseRequest) (*dto.DisburseResponse, error)
	GetNextSteps(context.Context, *dto.GetNextStepsRequest) (*dto.NextStepResponse, error)
	GetEffectiveParameters(context.Context, *dto.GetParametersRequest) (*dto.EffectiveParametersResponse, error)
	UpsertParameterOverride(context.Context, *dto.UpsertParameterOverrideRequest) (*dto.ParameterOverrideResponse, error)
	ResetParameterOverride(context.Context, *dto.ResetParameterOverrideRequest) (*dto.ResetParameterOverrideResponse, error)
	GetGlobalSettings(context.Context, *dto.GetGlobalSettingsRequest) (*dto.GlobalSettings, error)
	UpdateGlobalSettings(context.Context, *dto.UpdateGlobalSettingsRequest) (*dto.GlobalSettings, error)
	OpenCollectionCase(context.Context, *dto.OpenCollectionCaseRequest) (*dto.CollectionCaseResponse, error)
	RecordCollectionAction(context.Context, *dto.RecordCollectionActionRequest) (*dto.RecordCollectionActionResponse, error)
	UpdateCollectionPromise(context.Context, *dto.UpdateCollectionPromiseRequest) (*dto.CollectionCaseResponse, error)
	CloseCollectionCase(context.Context, *dto.CloseCollectionCaseRequest) (*dto.CollectionCaseResponse, error)
	ListCollectionActions(context.Context, *dto.ListCollectionActionsRequest) (*dto.CollectionActionsResponse, error)
}

// RegisterFactoringServiceServer registers srv with the gRPC server.
func RegisterFactoringServiceServer(s grpclib.ServiceRegistrar, srv FactoringServiceServer) {
	s.RegisterService(&factoringServiceDesc, srv)
}

// FullMethod returns the full gRPC method name of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var factoringServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FactoringServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("TransitionRequest", FactoringServiceServer.TransitionRequest),
		unary("CancelRequest", FactoringServiceServer.CancelRequest),
		unary("ComputeOffer", FactoringServiceServer.ComputeOffer),
		unary("CreateOffer", FactoringServiceServer.CreateOffer),
		unary("AcceptOffer", FactoringServiceServer.AcceptOffer),
		unary("RejectOffer", FactoringServiceServer.RejectOffer),
		unary("EvaluateAutoApproval", FactoringServiceServer.EvaluateAutoApproval),
		unary("Disburse", FactoringServiceServer.Disburse),
		unary("GetNextSteps", FactoringServiceServer.GetNextSteps),
		unary("GetEffectiveParameters", FactoringServiceServer.GetEffectiveParameters),
		unary("UpsertParameterOverride", FactoringServiceServer.UpsertParameterOverride),
		unary("ResetParameterOverride", FactoringServiceServer.ResetParameterOverride),
		unary("GetGlobalSettings", FactoringServiceServer.GetGlobalSettings),
		unary("UpdateGlobalSettings", FactoringServiceServer.UpdateGlobalSettings),
		unary("OpenCollectionCase", FactoringServiceServer.OpenCollectionCase),
		unary("RecordCollectionAction", FactoringServiceServer.RecordCollectionAction),
		unary("UpdateCollectionPromise", FactoringServiceServer.UpdateCollectionPromise),
		unary("CloseCollectionCase", FactoringServiceServer.CloseCollectionCase),
		unary("ListCollectionActions", FactoringServiceServer.ListCollectionActions),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "factoring/v1/factoring.proto",
}

// unary builds the method descriptor of a unary call. It replaces the
// per-method _Handler functions protoc-gen-go-grpc would emit.
func unary[Req, Resp any](
	method string,
	call func(FactoringServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	fullMethod := FullMethod(method)
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decode %s: %v", method, err)
			}
			server, ok := srv.(FactoringServiceServer)
			if !ok {
				return nil, status.Errorf(codes.Unimplemented, "method %s not implemented", method)
			}
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
