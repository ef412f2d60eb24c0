package catalog

import (
	"fmt"
	"sort"

	"github.com/tpodg/domainctl/internal/config"
	"github.com/tpodg/domainctl/internal/macro"
	"github.com/tpodg/domainctl/internal/macro/steps"
)

// Builtins returns the built-in macro specifications.
func Builtins() []Spec {
	return []Spec{
		{Name: "start", Summary: "Start the domain", Build: localOnly(buildStart)},
		{Name: "stop", Summary: "Stop the domain", Build: buildStop},
		{Name: "restart", Summary: "Restart the domain", Build: buildRestart},
		{Name: "create", Summary: "Create and start the domain, then create its resources", Build: localOnly(buildCreate)},
		{Name: "delete", Summary: "Stop and delete the domain", Build: localOnly(buildDelete)},
		{Name: "resources", Summary: "Create the configured resources", Build: buildResources},
		{Name: "deploy", Summary: "Deploy the configured applications", Build: buildDeploy},
		{Name: "undeploy", Summary: "Undeploy the configured applications", Build: buildUndeploy},
		{Name: "redeploy", Summary: "Redeploy the configured applications", Build: buildRedeploy},
	}
}

// localOnly rejects domains that asadmin can only manage from the same machine.
func localOnly(build BuildFunc) BuildFunc {
	return func(env Env, m *macro.Macro) error {
		if !m.IsLocalDomain() {
			return fmt.Errorf("%w: %s resolves to %s", ErrRemoteDomain, m.Host(), m.Address())
		}
		return build(env, m)
	}
}

func buildStart(env Env, m *macro.Macro) error {
	d := env.Config.Domain
	return steps.Register(m, steps.NewStartDomain(d.Name, d.Directory, d.Debug))
}

func buildStop(env Env, m *macro.Macro) error {
	d := env.Config.Domain
	return steps.Register(m, steps.NewStopDomain(d.Name, d.Directory))
}

// buildRestart cycles a local domain with stop and start so it also comes up
// when it was not running. A remote domain is restarted by its admin server.
func buildRestart(env Env, m *macro.Macro) error {
	d := env.Config.Domain
	if !m.IsLocalDomain() {
		return steps.Register(m, steps.NewRestartDomain(d.Name, d.Directory, d.Debug))
	}
	if err := steps.Register(m, steps.NewStopDomain(d.Name, d.Directory)); err != nil {
		return err
	}
	return steps.Register(m, steps.NewStartDomain(d.Name, d.Directory, d.Debug))
}

func buildCreate(env Env, m *macro.Macro) error {
	d := env.Config.Domain
	create := &steps.CreateDomain{
		DomainRef:    steps.DomainRef{Domain: d.Name, DomainDir: d.Directory},
		AdminPort:    d.AdminPort,
		InstancePort: d.InstancePort,
		NoPassword:   d.PasswordFile == "",
	}
	if err := steps.Register(m, create); err != nil {
		return err
	}
	if err := steps.Register(m, steps.NewStartDomain(d.Name, d.Directory, d.Debug)); err != nil {
		return err
	}
	return buildResources(env, m)
}

func buildDelete(env Env, m *macro.Macro) error {
	d := env.Config.Domain
	if err := steps.Register(m, steps.NewStopDomain(d.Name, d.Directory)); err != nil {
		return err
	}
	return steps.Register(m, steps.NewDeleteDomain(d.Name, d.Directory))
}

func buildResources(env Env, m *macro.Macro) error {
	cfg := env.Config
	for _, p := range cfg.Resources.JDBCConnectionPools {
		err := steps.Register(m, &steps.CreateJDBCConnectionPool{
			Name:                p.Name,
			DatasourceClassname: p.DatasourceClassname,
			ResType:             p.ResType,
			Properties:          p.Properties,
		})
		if err != nil {
			return err
		}
	}
	for _, r := range cfg.Resources.JDBCResources {
		if err := steps.Register(m, &steps.CreateJDBCResource{JNDIName: r.JNDIName, Pool: r.Pool}); err != nil {
			return err
		}
	}
	if len(cfg.SystemProperties) > 0 {
		if err := steps.Register(m, &steps.CreateSystemProperties{Properties: cfg.SystemProperties}); err != nil {
			return err
		}
	}
	for _, attr := range sortedKeys(cfg.Resources.Settings) {
		if err := steps.Register(m, &steps.Set{Attribute: attr, Value: cfg.Resources.Settings[attr]}); err != nil {
			return err
		}
	}
	return nil
}

func buildDeploy(env Env, m *macro.Macro) error {
	return registerDeploys(env.Config.Applications, m, false)
}

func buildRedeploy(env Env, m *macro.Macro) error {
	return registerDeploys(env.Config.Applications, m, true)
}

func registerDeploys(apps []config.Application, m *macro.Macro, force bool) error {
	if len(apps) == 0 {
		return fmt.Errorf("no applications configured")
	}
	for _, app := range apps {
		err := steps.Register(m, &steps.Deploy{
			Name:        app.Name,
			Path:        app.Path,
			ContextRoot: app.ContextRoot,
			Force:       force,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// buildUndeploy removes applications in reverse deployment order.
func buildUndeploy(env Env, m *macro.Macro) error {
	apps := env.Config.Applications
	if len(apps) == 0 {
		return fmt.Errorf("no applications configured")
	}
	for i := len(apps) - 1; i >= 0; i-- {
		if err := steps.Register(m, &steps.Undeploy{Name: apps[i].Name}); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
