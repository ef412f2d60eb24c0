package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/macro"
	"github.com/tpodg/domainctl/internal/strutil"
)

// DomainRef names the domain a step acts on.
type DomainRef struct {
	Domain    string `yaml:"domain"`
	DomainDir string `yaml:"domain_dir"`
}

func (r *DomainRef) applyDefaults(d Defaults) {
	if r.Domain == "" {
		r.Domain = d.Domain
	}
	if r.DomainDir == "" {
		r.DomainDir = d.DomainDir
	}
}

func (r *DomainRef) Validate() error {
	return strutil.ValidateIdentifier("domain", r.Domain)
}

func (r *DomainRef) args(extra ...string) []string {
	var args []string
	if r.DomainDir != "" {
		args = append(args, "--domaindir", r.DomainDir)
	}
	args = append(args, extra...)
	return append(args, r.Domain)
}

// StartDomain starts a domain, optionally in debug mode.
type StartDomain struct {
	DomainRef `yaml:",inline"`
	Debug     bool `yaml:"debug"`
}

// NewStartDomain returns a StartDomain step for domain in domainDir.
func NewStartDomain(domain, domainDir string, debug bool) *StartDomain {
	return &StartDomain{DomainRef: DomainRef{Domain: domain, DomainDir: domainDir}, Debug: debug}
}

func (s *StartDomain) Description() string {
	return fmt.Sprintf("Start domain %s", s.Domain)
}

func (s *StartDomain) Execute(ctx context.Context, e macro.Executor) error {
	var extra []string
	if s.Debug {
		extra = append(extra, "--debug=true")
	}
	return e.Execute(ctx, asadmin.NewCommand("start-domain", s.args(extra...)...))
}

// StopDomain stops a running domain.
type StopDomain struct {
	DomainRef `yaml:",inline"`
}

// NewStopDomain returns a StopDomain step for domain in domainDir.
func NewStopDomain(domain, domainDir string) *StopDomain {
	return &StopDomain{DomainRef: DomainRef{Domain: domain, DomainDir: domainDir}}
}

func (s *StopDomain) Description() string {
	return fmt.Sprintf("Stop domain %s", s.Domain)
}

func (s *StopDomain) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("stop-domain", s.args()...))
}

// RestartDomain restarts a running domain through its admin server.
type RestartDomain struct {
	DomainRef `yaml:",inline"`
	Debug     bool `yaml:"debug"`
}

// NewRestartDomain returns a RestartDomain step for domain in domainDir.
func NewRestartDomain(domain, domainDir string, debug bool) *RestartDomain {
	return &RestartDomain{DomainRef: DomainRef{Domain: domain, DomainDir: domainDir}, Debug: debug}
}

func (s *RestartDomain) Description() string {
	return fmt.Sprintf("Restart domain %s", s.Domain)
}

func (s *RestartDomain) Execute(ctx context.Context, e macro.Executor) error {
	var extra []string
	if s.Debug {
		extra = append(extra, "--debug=true")
	}
	return e.Execute(ctx, asadmin.NewCommand("restart-domain", s.args(extra...)...))
}

// CreateDomain creates a domain with its admin and instance ports.
type CreateDomain struct {
	DomainRef    `yaml:",inline"`
	AdminPort    int  `yaml:"admin_port"`
	InstancePort int  `yaml:"instance_port"`
	NoPassword   bool `yaml:"no_password"`
}

func (s *CreateDomain) Description() string {
	return fmt.Sprintf("Create domain %s", s.Domain)
}

func (s *CreateDomain) Validate() error {
	if err := s.DomainRef.Validate(); err != nil {
		return err
	}
	if s.AdminPort < 0 || s.AdminPort > 65535 {
		return fmt.Errorf("invalid admin port %d", s.AdminPort)
	}
	if s.InstancePort < 0 || s.InstancePort > 65535 {
		return fmt.Errorf("invalid instance port %d", s.InstancePort)
	}
	return nil
}

func (s *CreateDomain) Execute(ctx context.Context, e macro.Executor) error {
	var extra []string
	if s.AdminPort > 0 {
		extra = append(extra, "--adminport", strconv.Itoa(s.AdminPort))
	}
	if s.InstancePort > 0 {
		extra = append(extra, "--instanceport", strconv.Itoa(s.InstancePort))
	}
	if s.NoPassword {
		extra = append(extra, "--nopassword=true")
	}
	return e.Execute(ctx, asadmin.NewCommand("create-domain", s.args(extra...)...))
}

// DeleteDomain deletes a stopped domain.
type DeleteDomain struct {
	DomainRef `yaml:",inline"`
}

// NewDeleteDomain returns a DeleteDomain step for domain in domainDir.
func NewDeleteDomain(domain, domainDir string) *DeleteDomain {
	return &DeleteDomain{DomainRef: DomainRef{Domain: domain, DomainDir: domainDir}}
}

func (s *DeleteDomain) Description() string {
	return fmt.Sprintf("Delete domain %s", s.Domain)
}

func (s *DeleteDomain) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("delete-domain", s.args()...))
}
