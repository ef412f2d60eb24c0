package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/macro"
)

// Raw runs any asadmin subcommand with the given arguments.
type Raw struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Summary string   `yaml:"description"`
}

func (s *Raw) Description() string {
	if s.Summary != "" {
		return s.Summary
	}
	return "Run asadmin " + asadmin.NewCommand(s.Command, s.Args...).String()
}

func (s *Raw) Validate() error {
	if strings.TrimSpace(s.Command) == "" {
		return fmt.Errorf("asadmin command cannot be empty")
	}
	if strings.HasPrefix(s.Command, "-") {
		return fmt.Errorf("asadmin command %q looks like an option", s.Command)
	}
	return nil
}

func (s *Raw) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand(s.Command, s.Args...))
}
