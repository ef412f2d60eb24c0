package app

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/config"
	"github.com/tpodg/domainctl/internal/macro/catalog"
	"github.com/tpodg/domainctl/internal/server"
)

// App holds the configuration and logger shared by every command.
type App struct {
	Logger *slog.Logger
	Config *config.Config
}

// Options control logging output.
type Options struct {
	Verbose bool
	Output  io.Writer
}

// New creates an App logging through a charm handler at info, or debug when verbose.
func New(cfg *config.Config, opts Options) *App {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := charmlog.InfoLevel
	if opts.Verbose {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(out, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	return &App{
		Logger: slog.New(handler),
		Config: cfg,
	}
}

// Target returns the machine asadmin runs on.
func (a *App) Target() server.Server {
	s := a.Config.SSH
	if s == nil || s.Address == "" {
		return server.NewLocalServer()
	}
	return server.NewSSHServer(s.Address, server.User{
		Name:         s.User,
		SSHKey:       s.SSHKey,
		SudoPassword: s.SudoPassword,
	}, s.KnownHostsPath, server.SSHOptions{
		UseAgent:         s.UseAgent,
		HandshakeTimeout: s.HandshakeTimeout,
	})
}

// Executor returns an asadmin executor bound to the configured domain.
func (a *App) Executor() *asadmin.Executor {
	d := a.Config.Domain
	return asadmin.NewExecutor(a.Target(), asadmin.Options{
		Path:         a.Config.Glassfish.Directory,
		Host:         d.Host,
		Port:         d.AdminPort,
		User:         d.User,
		PasswordFile: d.PasswordFile,
		Secure:       d.Secure,
		SudoUser:     a.Config.Glassfish.SudoUser,
	}, a.Logger)
}

// Catalog returns the built-in and configured macros.
func (a *App) Catalog() (*catalog.Catalog, error) {
	return catalog.New(a.Config)
}

// Env returns what macro builders need from the App.
func (a *App) Env() catalog.Env {
	return catalog.Env{Config: a.Config, Logger: a.Logger}
}
