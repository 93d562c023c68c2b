package gateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func startService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Start(ctx)
	return svc
}

func TestServiceBroadcastEventReachesSubscribers(t *testing.T) {
	svc := startService(t)
	sessionID := uuid.New()
	conn := fakeConnection(svc.connectionManager, sessionID, 16)

	svc.BroadcastEvent(sessionID, diffEnvelope(t, sessionID, 9))

	if tickOf(t, recvFrame(t, conn)) != 9 {
		t.Fatal("broadcast event did not reach the session subscriber")
	}
}

func TestServiceStatsReportConnections(t *testing.T) {
	svc := startService(t)
	sessionID := uuid.New()
	fakeConnection(svc.connectionManager, sessionID, 16)

	stats := svc.GetStats()
	if stats["total_connections"].(int) != 1 {
		t.Fatalf("unexpected connection count: %v", stats["total_connections"])
	}
	if stats["active_sessions"].(int) != 1 {
		t.Fatalf("unexpected session count: %v", stats["active_sessions"])
	}
}
