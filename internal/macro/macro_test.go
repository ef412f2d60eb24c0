package macro_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/macro"
)

// eventLog records log lines and step executions in the order they happen.
type eventLog struct {
	events []string
}

func (l *eventLog) Write(p []byte) (int, error) {
	l.events = append(l.events, "log:"+strings.TrimSpace(string(p)))
	return len(p), nil
}

type mockExecutor struct {
	commands []asadmin.Command
}

func (m *mockExecutor) Execute(ctx context.Context, cmd asadmin.Command) error {
	m.commands = append(m.commands, cmd)
	return nil
}

type mockStep struct {
	name   string
	events *eventLog
	calls  int
	err    error
}

func (m *mockStep) Description() string { return m.name }
func (m *mockStep) Execute(ctx context.Context, e macro.Executor) error {
	m.calls++
	m.events.events = append(m.events.events, "exec:"+m.name)
	if m.err != nil {
		return m.err
	}
	return e.Execute(ctx, asadmin.NewCommand(m.name))
}

func newMacro(t *testing.T, host string, events *eventLog) *macro.Macro {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(events, nil))
	m, err := macro.New(context.Background(), host, logger)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", host, err)
	}
	return m
}

func TestNew_IsLocalDomain(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{host: "localhost", want: true},
		{host: "127.0.0.1", want: true},
		{host: "::1", want: true},
		{host: "[::1]", want: true},
		{host: "[2001:db8::1]", want: false},
		{host: "", want: true},
		{host: "192.0.2.10", want: false},
		{host: "10.1.2.3", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			m := newMacro(t, tc.host, &eventLog{})
			if got := m.IsLocalDomain(); got != tc.want {
				t.Fatalf("IsLocalDomain() = %v, want %v (address %s)", got, tc.want, m.Address())
			}
			if m.IsLocalDomain() != m.IsLocalDomain() {
				t.Fatal("IsLocalDomain is not deterministic")
			}
		})
	}
}

func TestNew_UnresolvableHost(t *testing.T) {
	m, err := macro.New(context.Background(), "no-such-domain-host.invalid", slog.Default())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, macro.ErrInvalidHost) {
		t.Fatalf("expected ErrInvalidHost, got %v", err)
	}
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		t.Fatalf("expected the resolution failure to be wrapped, got %v", err)
	}
	if m != nil {
		t.Fatal("expected no macro on failure")
	}
}

func TestMacro_Execute(t *testing.T) {
	t.Run("runs all steps in order", func(t *testing.T) {
		events := &eventLog{}
		m := newMacro(t, "localhost", events)
		steps := []*mockStep{
			{name: "stop domain", events: events},
			{name: "start domain", events: events},
			{name: "deploy shop", events: events},
		}
		for _, s := range steps {
			m.Register(s)
		}

		exec := &mockExecutor{}
		if err := m.Execute(context.Background(), exec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, s := range steps {
			if s.calls != 1 {
				t.Errorf("step %q ran %d times, want 1", s.name, s.calls)
			}
		}
		if len(exec.commands) != 3 {
			t.Fatalf("expected 3 commands, got %d", len(exec.commands))
		}
		for i, s := range steps {
			if exec.commands[i].Name != s.name {
				t.Errorf("command %d = %q, want %q", i, exec.commands[i].Name, s.name)
			}
		}

		if len(events.events) != 6 {
			t.Fatalf("expected 6 events, got %v", events.events)
		}
		for i, s := range steps {
			logLine := events.events[2*i]
			if !strings.HasPrefix(logLine, "log:") || !strings.Contains(logLine, fmt.Sprintf("*****> %s <*****", s.name)) {
				t.Errorf("event %d = %q, want log line for %q", 2*i, logLine, s.name)
			}
			if events.events[2*i+1] != "exec:"+s.name {
				t.Errorf("event %d = %q, want exec of %q", 2*i+1, events.events[2*i+1], s.name)
			}
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		events := &eventLog{}
		m := newMacro(t, "localhost", events)
		expectedErr := &asadmin.ExitError{Command: "deploy", Err: errors.New("exit status 1")}
		steps := []*mockStep{
			{name: "one", events: events},
			{name: "two", events: events, err: expectedErr},
			{name: "three", events: events},
		}
		for _, s := range steps {
			m.Register(s)
		}

		err := m.Execute(context.Background(), &mockExecutor{})
		if err != expectedErr {
			t.Fatalf("expected the step error unchanged, got %v", err)
		}
		if steps[0].calls != 1 || steps[1].calls != 1 {
			t.Error("expected steps before and including the failure to run")
		}
		if steps[2].calls != 0 {
			t.Error("step after the failure should not have run")
		}
	})

	t.Run("no steps", func(t *testing.T) {
		m := newMacro(t, "localhost", &eventLog{})
		exec := &mockExecutor{}
		if err := m.Execute(context.Background(), exec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(exec.commands) != 0 {
			t.Fatalf("expected no commands, got %d", len(exec.commands))
		}
	})

	t.Run("runs again on second execute", func(t *testing.T) {
		events := &eventLog{}
		m := newMacro(t, "127.0.0.1", events)
		a := &mockStep{name: "a", events: events}
		b := &mockStep{name: "b", events: events}
		m.Register(a)
		m.Register(b)

		exec := &mockExecutor{}
		for i := 0; i < 2; i++ {
			if err := m.Execute(context.Background(), exec); err != nil {
				t.Fatalf("run %d: unexpected error: %v", i+1, err)
			}
		}
		if a.calls != 2 || b.calls != 2 {
			t.Fatalf("expected each step to run twice, got a=%d b=%d", a.calls, b.calls)
		}
		got := make([]string, 0, len(exec.commands))
		for _, c := range exec.commands {
			got = append(got, c.Name)
		}
		if strings.Join(got, ",") != "a,b,a,b" {
			t.Fatalf("unexpected command order: %v", got)
		}
	})
}

func TestMacro_Steps(t *testing.T) {
	events := &eventLog{}
	m := newMacro(t, "localhost", events)
	m.Register(&mockStep{name: "first", events: events})
	m.Register(&mockStep{name: "first", events: events})

	steps := m.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d steps", len(steps))
	}
	steps[0] = nil
	if m.Steps()[0] == nil {
		t.Fatal("Steps should return a copy")
	}
	if m.Host() != "localhost" {
		t.Fatalf("unexpected host %q", m.Host())
	}
	if len(events.events) != 0 {
		t.Fatalf("registration should not log, got %v", events.events)
	}
}

func TestMacro_Execute_LogBuffer(t *testing.T) {
	var buf bytes.Buffer
	m, err := macro.New(context.Background(), "localhost", slog.New(slog.NewTextHandler(&buf, nil)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	m.Register(&mockStep{name: "undeploy shop", events: &eventLog{}})
	if err := m.Execute(context.Background(), &mockExecutor{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "domain=localhost") {
		t.Errorf("expected domain attribute in log, got:\n%s", buf.String())
	}
}
