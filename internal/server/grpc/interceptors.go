package grpcserver

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// UnaryLogger logs one line per call. Successful calls go to debug since
// orchestrator probes hit Check every few seconds.
func UnaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		logCall(ctx, log, "unary", info.FullMethod, start, err)
		return resp, err
	}
}

// StreamLogger logs a stream once it ends.
func StreamLogger(log *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, next grpc.StreamHandler) error {
		start := time.Now()
		err := next(srv, ss)
		logCall(ss.Context(), log, "stream", info.FullMethod, start, err)
		return err
	}
}

// UnaryRecoverer turns a handler panic into codes.Internal.
func UnaryRecoverer(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(log, info.FullMethod, r)
			}
		}()
		return next(ctx, req)
	}
}

// StreamRecoverer is UnaryRecoverer for streaming handlers.
func StreamRecoverer(log *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, next grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(log, info.FullMethod, r)
			}
		}()
		return next(srv, ss)
	}
}

func logCall(ctx context.Context, log *zap.Logger, kind, method string, start time.Time, err error) {
	code := status.Code(err)
	lvl := zapcore.DebugLevel
	if code != codes.OK {
		lvl = zapcore.WarnLevel
	}
	ce := log.Check(lvl, "grpc "+kind)
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("code", code.String()),
		zap.Duration("dur", time.Since(start)),
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		fields = append(fields, zap.String("peer", p.Addr.String()))
	}
	ce.Write(fields...)
}

func recovered(log *zap.Logger, method string, r any) error {
	log.Error("grpc panic",
		zap.String("method", method),
		zap.Any("reason", r),
		zap.ByteString("stack", debug.Stack()),
	)
	return status.Error(codes.Internal, "internal")
}
