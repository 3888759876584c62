// Package grpcserver runs the gRPC health endpoint of the notes service.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported alongside the overall status.
const ServiceName = "notes.v1.Notes"

// DefaultCheckInterval is used by Watch when given a non-positive interval.
const DefaultCheckInterval = 15 * time.Second

// Pinger is a store connection that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health serves grpc.health.v1 and reflects store reachability.
type Health struct {
	srv   *grpc.Server
	hs    *health.Server
	probe Pinger
	log   *zap.Logger
}

// NewHealth builds the server. A nil probe always reports SERVING.
func NewHealth(log *zap.Logger, probe Pinger) *Health {
	if log == nil {
		log = zap.NewNop()
	}
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryRecoverer(log), UnaryLogger(log)),
		grpc.ChainStreamInterceptor(StreamRecoverer(log), StreamLogger(log)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	h := &Health{srv: srv, hs: hs, probe: probe, log: log}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *Health) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.hs.SetServingStatus("", st)
	h.hs.SetServingStatus(ServiceName, st)
}

// Check probes the store once and publishes the result.
func (h *Health) Check(ctx context.Context) bool {
	if h.probe != nil {
		if err := h.probe.Ping(ctx); err != nil {
			h.log.Warn("store unreachable", zap.Error(err))
			h.set(healthpb.HealthCheckResponse_NOT_SERVING)
			return false
		}
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return true
}

// CheckWithin is Check with the ping bounded by timeout. A store that does not
// answer in time is reported NOT_SERVING.
func (h *Health) CheckWithin(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultCheckInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return h.Check(ctx)
}

// Watch re-checks every interval until ctx is done. Each ping may take at most
// one interval.
func (h *Health) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		h.CheckWithin(ctx, interval)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Serve blocks serving on lis.
func (h *Health) Serve(lis net.Listener) error { return h.srv.Serve(lis) }

// Stop marks everything NOT_SERVING and drains connections.
func (h *Health) Stop() {
	h.hs.Shutdown()
	h.srv.GracefulStop()
}
