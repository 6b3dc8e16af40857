package cask

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/caskauth/cask/store"
)

func auditedEngine(t *testing.T, sink AuditSink) *Engine {
	t.Helper()

	cfg := testConfig(time.Hour)
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	cfg.Audit.DropIfFull = false

	st, err := store.Open(t.TempDir(), store.WithInitialize())
	if err != nil {
		t.Fatalf("store open error: %v", err)
	}
	engine, err := New().WithConfig(cfg).WithStore(st).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("engine build error: %v", err)
	}
	t.Cleanup(engine.Close)

	err = engine.Bootstrap(context.Background(),
		map[string]int{"admin": 100},
		[]SeedUser{{Username: "admin", Password: "admin", Role: "admin"}},
	)
	if err != nil {
		t.Fatalf("bootstrap error: %v", err)
	}
	return engine
}

func TestAuditEventsFlow(t *testing.T) {
	sink := NewChannelSink(64)
	engine := auditedEngine(t, sink)
	ctx := context.Background()

	result, err := engine.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if _, err := engine.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	// Close drains the dispatcher so every emitted event reaches the sink.
	engine.Close()

	seen := map[string]AuditEvent{}
	for {
		select {
		case event := <-sink.Events():
			seen[event.EventType] = event
			continue
		default:
		}
		break
	}

	login, ok := seen[auditEventLoginSuccess]
	if !ok {
		t.Fatalf("missing login success event, saw %v", eventTypes(seen))
	}
	if login.Username != "admin" || login.SessionID == "" || !login.Success {
		t.Fatalf("unexpected login event %+v", login)
	}

	failure, ok := seen[auditEventLoginFailure]
	if !ok {
		t.Fatalf("missing login failure event, saw %v", eventTypes(seen))
	}
	if failure.Success || failure.Error == "" {
		t.Fatalf("unexpected failure event %+v", failure)
	}
	if failure.Metadata["reason"] != "password_mismatch" {
		t.Fatalf("unexpected failure metadata %v", failure.Metadata)
	}

	if _, ok := seen[auditEventLogout]; !ok {
		t.Fatalf("missing logout event, saw %v", eventTypes(seen))
	}
	if _, ok := seen[auditEventBootstrap]; !ok {
		t.Fatalf("missing bootstrap event, saw %v", eventTypes(seen))
	}
}

func eventTypes(seen map[string]AuditEvent) []string {
	types := make([]string, 0, len(seen))
	for eventType := range seen {
		types = append(types, eventType)
	}
	return types
}

func TestAuditEventsNeverCarryCredentials(t *testing.T) {
	var buf bytes.Buffer
	engine := auditedEngine(t, NewJSONWriterSink(&buf))
	ctx := context.Background()

	const password = "hunter2-very-secret"
	if err := engine.RegisterUser(ctx, "carol", password, "admin", "", ""); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if _, err := engine.Login(ctx, "carol", password); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if _, err := engine.Login(ctx, "carol", "wrong-guess"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	engine.Close()

	output := buf.String()
	if output == "" {
		t.Fatal("expected audit output")
	}
	if strings.Contains(output, password) || strings.Contains(output, "wrong-guess") {
		t.Fatal("audit output leaks credential material")
	}

	// Every line is a standalone JSON event.
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		var event AuditEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("malformed audit line %q: %v", line, err)
		}
	}
}

// blockingSink holds the dispatcher's worker until released.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(_ context.Context, _ AuditEvent) {
	<-s.release
}

func TestAuditDispatcherShedsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event occupies the worker, one fills the buffer; the rest must
	// be shed without blocking.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "x"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected shed events to be counted")
	}

	close(sink.release)
	d.Close()
}

func TestAuditDisabledDispatchesNothing(t *testing.T) {
	if d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1)); d != nil {
		t.Fatal("expected disabled audit config to yield no dispatcher")
	}

	// A nil dispatcher is safe to use.
	var d *auditDispatcher
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected zero drops on nil dispatcher")
	}
}
