package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/ports"
)

// HealthReporter mirrors provider availability into the gRPC health service:
// one entry per provider plus the overall "" entry, which is SERVING while at
// least one provider is.
type HealthReporter struct {
	hs        *health.Server
	checker   ports.HealthPort
	providers []string
}

// RegisterHealthReporter registers reflection and returns a reporter bound to hs.
func RegisterHealthReporter(s *grpc.Server, hs *health.Server, checker ports.HealthPort, providers []string) *HealthReporter {
	reflection.Register(s)
	return &HealthReporter{hs: hs, checker: checker, providers: providers}
}

// Refresh checks every provider once and updates the serving statuses.
func (r *HealthReporter) Refresh(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	anyUp := false
	for _, name := range r.providers {
		ok, msg := r.checker.Check(ctx, name)
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if ok {
			status = healthpb.HealthCheckResponse_SERVING
			anyUp = true
		}
		r.hs.SetServingStatus(name, status)
		logger.Debug().Str("provider", name).Bool("healthy", ok).Str("msg", msg).Msg("provider health")
	}

	overall := healthpb.HealthCheckResponse_NOT_SERVING
	if anyUp {
		overall = healthpb.HealthCheckResponse_SERVING
	}
	r.hs.SetServingStatus("", overall)
}

// Run refreshes immediately and then every interval until ctx is done.
func (r *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	r.Refresh(ctx)
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Refresh(ctx)
		}
	}
}
