package grpcserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/varsharamanujam/HR-Candidate-Review-Tool/internal/logging"
)

// RequestIDKey is the metadata key carrying the request id.
const RequestIDKey = "x-request-id"

// Observer records a finished call. metrics.Metrics implements it.
type Observer interface {
	ObserveGRPC(method, code string)
}

// UnaryInterceptor tags the context logger with the caller's request id,
// recovers panics, logs each call and reports it to o (which may be nil).
func UnaryInterceptor(base *zap.Logger, o Observer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		l := base.With(zap.String(logging.RequestIDField, requestIDFromCtx(ctx)))
		ctx = logging.WithContext(ctx, l)

		defer func() {
			if rec := recover(); rec != nil {
				l.Error("grpc handler panicked", zap.Any("panic", rec), zap.Stack("stack"))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}

			code := status.Code(err)
			fields := []zap.Field{
				zap.String("method", info.FullMethod),
				zap.String("code", code.String()),
				zap.Duration("duration", time.Since(start)),
			}
			switch code {
			case codes.OK:
				l.Info("grpc request", fields...)
			case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
				l.Error("grpc request", fields...)
			default:
				l.Warn("grpc request", fields...)
			}
			if o != nil {
				o.ObserveGRPC(info.FullMethod, code.String())
			}
		}()

		return handler(ctx, req)
	}
}

func requestIDFromCtx(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(RequestIDKey); len(vals) > 0 && vals[0] != "" && len(vals[0]) <= 128 {
			return vals[0]
		}
	}
	return uuid.NewString()
}
