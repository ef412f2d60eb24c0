package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tpodg/domainctl/internal/config"
	"github.com/tpodg/domainctl/internal/macro"
	"github.com/tpodg/domainctl/internal/macro/steps"
)

var (
	// ErrUnknownMacro is returned when no macro has the requested name.
	ErrUnknownMacro = errors.New("unknown macro")
	// ErrRemoteDomain is returned when a macro that must run next to the
	// domain targets a remote host.
	ErrRemoteDomain = errors.New("domain is not local")
)

// Env carries what a macro needs to register its steps.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
}

// BuildFunc registers the steps of a macro on m.
type BuildFunc func(env Env, m *macro.Macro) error

// Spec describes a named macro.
type Spec struct {
	Name    string
	Summary string
	Build   BuildFunc
}

// Catalog indexes macros by name and keeps their declaration order.
type Catalog struct {
	specs []Spec
	index map[string]Spec
}

// New creates a catalog of the built-in macros plus the custom macros of cfg.
func New(cfg *config.Config) (*Catalog, error) {
	specs := Builtins()
	custom, err := Custom(cfg)
	if err != nil {
		return nil, err
	}
	specs = append(specs, custom...)

	c := &Catalog{index: make(map[string]Spec, len(specs))}
	for _, spec := range specs {
		if _, exists := c.index[spec.Name]; exists {
			return nil, fmt.Errorf("duplicate macro name: %s", spec.Name)
		}
		c.index[spec.Name] = spec
		c.specs = append(c.specs, spec)
	}
	return c, nil
}

// Specs returns the macros in declaration order.
func (c *Catalog) Specs() []Spec {
	out := make([]Spec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Build resolves the domain host and assembles the named macro.
func (c *Catalog) Build(ctx context.Context, name string, env Env) (*macro.Macro, error) {
	spec, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMacro, name)
	}

	m, err := macro.New(ctx, env.Config.Domain.Host, env.Logger)
	if err != nil {
		return nil, err
	}
	if err := spec.Build(env, m); err != nil {
		return nil, fmt.Errorf("build macro %s: %w", name, err)
	}
	return m, nil
}

// Custom returns a spec for every macro declared in the configuration.
func Custom(cfg *config.Config) ([]Spec, error) {
	builders := steps.Builders(defaults(cfg))

	specs := make([]Spec, 0, len(cfg.Macros))
	for _, mc := range cfg.Macros {
		if mc.Name == "" {
			return nil, errors.New("custom macro name cannot be empty")
		}
		entries := make([]macro.Entry, 0, len(mc.Steps))
		for _, sc := range mc.Steps {
			entries = append(entries, macro.Entry{Command: sc.Command, Options: optionsOf(sc)})
		}
		// Steps are decoded up front so configuration errors show before anything runs.
		built, err := macro.CreateSteps(entries, builders...)
		if err != nil {
			return nil, fmt.Errorf("custom macro %s: %w", mc.Name, err)
		}
		specs = append(specs, Spec{
			Name:    mc.Name,
			Summary: fmt.Sprintf("Custom macro (%d steps)", len(built)),
			Build: func(env Env, m *macro.Macro) error {
				for _, s := range built {
					m.Register(s)
				}
				return nil
			},
		})
	}
	return specs, nil
}

func optionsOf(sc config.StepConfig) any {
	if sc.With == nil {
		return nil
	}
	return sc.With
}

func defaults(cfg *config.Config) steps.Defaults {
	return steps.Defaults{
		Domain:    cfg.Domain.Name,
		DomainDir: cfg.Domain.Directory,
	}
}
