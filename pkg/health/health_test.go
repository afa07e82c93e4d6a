package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type staticChecker struct {
	name   string
	status Status
}

func (c staticChecker) Name() string { return c.name }

func (c staticChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{Name: c.name, Status: c.status, Timestamp: time.Now()}
}

func TestEmptyRegistryIsHealthy(t *testing.T) {
	registry := NewRegistry()
	result := registry.Check(context.Background())
	if !result.IsHealthy() {
		t.Fatalf("empty registry status = %s, want healthy", result.Status)
	}
	if len(result.Checks) != 0 {
		t.Fatalf("checks = %d, want 0", len(result.Checks))
	}
}

func TestAggregatesAllChecks(t *testing.T) {
	registry := NewRegistry()
	registry.Register(staticChecker{name: "a", status: StatusHealthy})
	registry.Register(staticChecker{name: "b", status: StatusHealthy})

	result := registry.Check(context.Background())
	if !result.IsHealthy() {
		t.Fatalf("status = %s, want healthy", result.Status)
	}
	if len(result.Checks) != 2 {
		t.Fatalf("checks = %d, want 2", len(result.Checks))
	}
}

func TestAnyUnhealthyCheckFailsAggregate(t *testing.T) {
	registry := NewRegistry()
	registry.Register(staticChecker{name: "a", status: StatusHealthy})
	registry.Register(staticChecker{name: "b", status: StatusUnhealthy})

	result := registry.Check(context.Background())
	if result.IsHealthy() {
		t.Fatal("aggregate should be unhealthy when any check fails")
	}
}

func TestRegisterReplacesByName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(staticChecker{name: "a", status: StatusUnhealthy})
	registry.Register(staticChecker{name: "a", status: StatusHealthy})

	result := registry.Check(context.Background())
	if !result.IsHealthy() {
		t.Fatal("replaced checker should win")
	}
	if len(result.Checks) != 1 {
		t.Fatalf("checks = %d, want 1", len(result.Checks))
	}
}

type probe struct {
	err   error
	delay time.Duration
}

func (p probe) HealthCheck(ctx context.Context) error {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func TestAdapterCheckerHealthy(t *testing.T) {
	checker := NewAdapterChecker("mongodb", probe{}, time.Second)
	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("status = %s, want healthy", result.Status)
	}
	if result.Name != "mongodb" {
		t.Fatalf("name = %q", result.Name)
	}
}

func TestAdapterCheckerUnhealthy(t *testing.T) {
	checker := NewAdapterChecker("mongodb", probe{err: errors.New("no reachable servers")}, time.Second)
	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Fatalf("status = %s, want unhealthy", result.Status)
	}
	if result.Error == "" {
		t.Fatal("error detail should be recorded")
	}
}

func TestAdapterCheckerTimeout(t *testing.T) {
	checker := NewAdapterChecker("slow", probe{delay: 500 * time.Millisecond}, 20*time.Millisecond)
	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Fatalf("status = %s, want unhealthy on timeout", result.Status)
	}
}
