package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Ban68/LePret-sub001/internal/domain/apperr"
)

// ErrorCodeTrailer carries the stable apperr code of a failed call.
const ErrorCodeTrailer = "x-error-code"

var kindCodes = map[apperr.Kind]codes.Code{
	apperr.KindNotFound:          codes.NotFound,
	apperr.KindInvalidTransition: codes.FailedPrecondition,
	apperr.KindPolicyViolation:   codes.FailedPrecondition,
	apperr.KindValidation:        codes.InvalidArgument,
	apperr.KindConflict:          codes.Aborted,
	apperr.KindUpstream:          codes.Unavailable,
	apperr.KindInternal:          codes.Internal,
}

// grpcCode maps an error kind to its transport status code.
func grpcCode(kind apperr.Kind) codes.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return codes.Internal
}

// toStatus converts a use-case error into a gRPC status error and attaches
// the stable code as a trailer. Untyped errors become Internal without
// leaking their text.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		if _, typed := apperr.As(err); !typed {
			return err
		}
	}

	code := apperr.CodeOf(err)
	// SetTrailer fails only outside a server stream, e.g. in direct calls.
	_ = grpclib.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, code))

	return status.Error(grpcCode(apperr.KindOf(err)), apperr.MessageOf(err))
}
