package asadmin

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/tpodg/domainctl/internal/server"
	"github.com/tpodg/domainctl/internal/strutil"
)

// Options are the asadmin program options passed before every subcommand.
type Options struct {
	// Path is the asadmin binary, or the GlassFish install directory.
	Path         string
	Host         string
	Port         int
	User         string
	PasswordFile string
	Secure       bool
	// SudoUser runs asadmin as this user through non-interactive sudo.
	SudoUser string
}

// Executor runs asadmin commands on a server.
type Executor struct {
	target server.Server
	opts   Options
	logger *slog.Logger
}

// NewExecutor creates an Executor that runs asadmin on target.
func NewExecutor(target server.Server, opts Options, logger *slog.Logger) *Executor {
	return &Executor{
		target: target,
		opts:   opts,
		logger: logger,
	}
}

// Execute runs cmd and returns an *ExitError if asadmin fails.
func (e *Executor) Execute(ctx context.Context, cmd Command) error {
	line, err := e.CommandLine(cmd)
	if err != nil {
		return err
	}

	e.logger.Debug("Running asadmin", "command", cmd.Name, "target", e.target.ID(), "line", line)
	output, err := e.target.Execute(ctx, line)
	if output != "" {
		e.logger.Debug("asadmin output", "command", cmd.Name, "output", strings.TrimSpace(output))
	}
	if err != nil {
		return &ExitError{Command: cmd.Name, Output: output, Err: err}
	}
	return nil
}

// CommandLine renders cmd as the shell command line Execute would run.
func (e *Executor) CommandLine(cmd Command) (string, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return "", fmt.Errorf("%w: empty command name", ErrUsage)
	}
	bin, err := e.binary()
	if err != nil {
		return "", err
	}

	words := []string{bin}
	words = append(words, e.programOptions()...)
	words = append(words, cmd.Name)
	words = append(words, cmd.Args...)
	line := strutil.ShellJoin(words...)
	if e.opts.SudoUser != "" {
		line = "sudo -n -u " + strutil.ShellEscape(e.opts.SudoUser) + " " + line
	}
	return line, nil
}

func (e *Executor) binary() (string, error) {
	p := strings.TrimSpace(e.opts.Path)
	if p == "" {
		return "", fmt.Errorf("%w: asadmin path is not configured", ErrUsage)
	}
	if path.Base(p) == "asadmin" {
		return p, nil
	}
	return path.Join(p, "bin", "asadmin"), nil
}

func (e *Executor) programOptions() []string {
	var opts []string
	if e.opts.Host != "" {
		opts = append(opts, "--host", e.opts.Host)
	}
	if e.opts.Port > 0 {
		opts = append(opts, "--port", strconv.Itoa(e.opts.Port))
	}
	if e.opts.User != "" {
		opts = append(opts, "--user", e.opts.User)
	}
	if e.opts.PasswordFile != "" {
		opts = append(opts, "--passwordfile", e.opts.PasswordFile)
	}
	if e.opts.Secure {
		opts = append(opts, "--secure")
	}
	return append(opts, "--interactive=false")
}
