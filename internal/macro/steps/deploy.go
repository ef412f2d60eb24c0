package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/macro"
	"github.com/tpodg/domainctl/internal/strutil"
)

// Deploy deploys an application archive.
type Deploy struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	ContextRoot string `yaml:"context_root"`
	// Force redeploys over an application that is already deployed.
	Force bool `yaml:"force"`
}

func (s *Deploy) Description() string {
	if s.Force {
		return fmt.Sprintf("Redeploy %s from %s", s.displayName(), s.Path)
	}
	return fmt.Sprintf("Deploy %s from %s", s.displayName(), s.Path)
}

func (s *Deploy) Validate() error {
	if s.Path == "" {
		return errors.New("deploy path cannot be empty")
	}
	if s.Name != "" {
		return strutil.ValidateIdentifier("application", s.Name)
	}
	return nil
}

func (s *Deploy) Execute(ctx context.Context, e macro.Executor) error {
	var args []string
	if s.Name != "" {
		args = append(args, "--name", s.Name)
	}
	if s.ContextRoot != "" {
		args = append(args, "--contextroot", s.ContextRoot)
	}
	if s.Force {
		args = append(args, "--force=true")
	}
	args = append(args, s.Path)
	return e.Execute(ctx, asadmin.NewCommand("deploy", args...))
}

func (s *Deploy) displayName() string {
	if s.Name != "" {
		return s.Name
	}
	return "application"
}

// Undeploy removes a deployed application.
type Undeploy struct {
	Name string `yaml:"name"`
}

func (s *Undeploy) Description() string {
	return fmt.Sprintf("Undeploy %s", s.Name)
}

func (s *Undeploy) Validate() error {
	return strutil.ValidateIdentifier("application", s.Name)
}

func (s *Undeploy) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("undeploy", s.Name))
}
