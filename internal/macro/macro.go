package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/tpodg/domainctl/internal/asadmin"
)

// ErrInvalidHost is returned by New when the domain host cannot be resolved.
var ErrInvalidHost = errors.New("invalid domain host")

// Executor runs a single asadmin command.
type Executor interface {
	Execute(ctx context.Context, cmd asadmin.Command) error
}

// Step is one administrative action of a macro.
type Step interface {
	// Description returns a short human-readable summary of the step.
	Description() string
	// Execute performs the step using the given executor.
	Execute(ctx context.Context, e Executor) error
}

// Macro is an ordered group of steps run against one domain.
type Macro struct {
	host    string
	address net.IP
	logger  *slog.Logger
	steps   []Step
}

// New resolves host once and returns an empty macro bound to it.
func New(ctx context.Context, host string, logger *slog.Logger) (*Macro, error) {
	address, err := resolve(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidHost, host, err)
	}
	return &Macro{
		host:    host,
		address: address,
		logger:  logger,
	}, nil
}

// Register appends a step. Steps run in registration order.
func (m *Macro) Register(step Step) {
	m.steps = append(m.steps, step)
}

// Execute runs every registered step in order and stops at the first error,
// which is returned as is.
func (m *Macro) Execute(ctx context.Context, e Executor) error {
	for _, step := range m.steps {
		m.logger.Info(fmt.Sprintf("*****> %s <*****", step.Description()), "domain", m.host)
		if err := step.Execute(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// IsLocalDomain reports whether the domain host resolved to a loopback address.
func (m *Macro) IsLocalDomain() bool {
	return m.address.IsLoopback()
}

// Steps returns a copy of the registered steps.
func (m *Macro) Steps() []Step {
	out := make([]Step, len(m.steps))
	copy(out, m.steps)
	return out
}

// Host returns the domain host as given to New.
func (m *Macro) Host() string { return m.host }

// Address returns a copy of the address resolved by New.
func (m *Macro) Address() net.IP {
	out := make(net.IP, len(m.address))
	copy(out, m.address)
	return out
}

// resolve returns the first IPv4 address of host, falling back to the first
// address of any family. An empty host is the loopback address and IPv6
// literals may be bracketed.
func resolve(ctx context.Context, host string) (net.IP, error) {
	if host == "" {
		return net.IPv4(127, 0, 0, 1), nil
	}
	literal := host
	if strings.HasPrefix(literal, "[") && strings.HasSuffix(literal, "]") {
		literal = literal[1 : len(literal)-1]
	}
	if ip := net.ParseIP(literal); ip != nil {
		return ip, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for %s", host)
	}
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return addrs[0].IP, nil
}
