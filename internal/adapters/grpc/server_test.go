package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeChecker map[string]bool

func (f fakeChecker) Check(ctx context.Context, name string) (bool, string) {
	if f[name] {
		return true, "OK: " + name
	}
	return false, "down"
}

func status(t *testing.T, hs *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.Status
}

func TestRefresh(t *testing.T) {
	hs := health.NewServer()
	checker := fakeChecker{"OpenAI": true, "OpenRouter": false}
	r := RegisterHealthReporter(grpc.NewServer(), hs, checker, []string{"OpenAI", "OpenRouter"})

	r.Refresh(context.Background())

	if got := status(t, hs, "OpenAI"); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("OpenAI: got %v", got)
	}
	if got := status(t, hs, "OpenRouter"); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("OpenRouter: got %v", got)
	}
	if got := status(t, hs, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("overall: got %v", got)
	}
}

func TestRefreshAllDown(t *testing.T) {
	hs := health.NewServer()
	r := RegisterHealthReporter(grpc.NewServer(), hs, fakeChecker{}, []string{"OpenAI"})

	r.Refresh(context.Background())

	if got := status(t, hs, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("overall: got %v", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	hs := health.NewServer()
	r := RegisterHealthReporter(grpc.NewServer(), hs, fakeChecker{"mock": true}, []string{"mock"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10_000_000)
		close(done)
	}()
	cancel()
	<-done

	if got := status(t, hs, "mock"); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("mock: got %v", got)
	}
}
