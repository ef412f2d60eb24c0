package steps

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/macro"
)

type recordingExecutor struct {
	commands []asadmin.Command
}

func (r *recordingExecutor) Execute(ctx context.Context, cmd asadmin.Command) error {
	r.commands = append(r.commands, cmd)
	return nil
}

func TestStepCommands(t *testing.T) {
	cases := []struct {
		name string
		step macro.Step
		want asadmin.Command
	}{
		{
			name: "start_domain",
			step: NewStartDomain("domain1", "", false),
			want: asadmin.NewCommand("start-domain", "domain1"),
		},
		{
			name: "start_domain_debug_dir",
			step: NewStartDomain("shop", "/srv/domains", true),
			want: asadmin.NewCommand("start-domain", "--domaindir", "/srv/domains", "--debug=true", "shop"),
		},
		{
			name: "stop_domain",
			step: NewStopDomain("shop", ""),
			want: asadmin.NewCommand("stop-domain", "shop"),
		},
		{
			name: "restart_domain",
			step: NewRestartDomain("shop", "", false),
			want: asadmin.NewCommand("restart-domain", "shop"),
		},
		{
			name: "create_domain",
			step: &CreateDomain{DomainRef: DomainRef{Domain: "shop"}, AdminPort: 4848, InstancePort: 8080, NoPassword: true},
			want: asadmin.NewCommand("create-domain", "--adminport", "4848", "--instanceport", "8080", "--nopassword=true", "shop"),
		},
		{
			name: "delete_domain",
			step: NewDeleteDomain("shop", "/srv/domains"),
			want: asadmin.NewCommand("delete-domain", "--domaindir", "/srv/domains", "shop"),
		},
		{
			name: "deploy",
			step: &Deploy{Name: "shop", Path: "target/shop.war", ContextRoot: "/shop"},
			want: asadmin.NewCommand("deploy", "--name", "shop", "--contextroot", "/shop", "target/shop.war"),
		},
		{
			name: "redeploy",
			step: &Deploy{Path: "shop.ear", Force: true},
			want: asadmin.NewCommand("deploy", "--force=true", "shop.ear"),
		},
		{
			name: "undeploy",
			step: &Undeploy{Name: "shop"},
			want: asadmin.NewCommand("undeploy", "shop"),
		},
		{
			name: "create_pool",
			step: &CreateJDBCConnectionPool{
				Name:                "shopPool",
				DatasourceClassname: "org.postgresql.ds.PGSimpleDataSource",
				ResType:             "javax.sql.DataSource",
				Properties:          map[string]string{"user": "shop", "URL": "jdbc:postgresql://db:5432/shop"},
			},
			want: asadmin.NewCommand("create-jdbc-connection-pool",
				"--datasourceclassname", "org.postgresql.ds.PGSimpleDataSource",
				"--restype", "javax.sql.DataSource",
				"--property", `URL=jdbc\:postgresql\://db\:5432/shop:user=shop`,
				"shopPool"),
		},
		{
			name: "delete_pool_cascade",
			step: &DeleteJDBCConnectionPool{Name: "shopPool", Cascade: true},
			want: asadmin.NewCommand("delete-jdbc-connection-pool", "--cascade=true", "shopPool"),
		},
		{
			name: "create_resource",
			step: &CreateJDBCResource{JNDIName: "jdbc/shop", Pool: "shopPool"},
			want: asadmin.NewCommand("create-jdbc-resource", "--connectionpoolid", "shopPool", "jdbc/shop"),
		},
		{
			name: "delete_resource",
			step: &DeleteJDBCResource{JNDIName: "jdbc/shop"},
			want: asadmin.NewCommand("delete-jdbc-resource", "jdbc/shop"),
		},
		{
			name: "system_properties",
			step: &CreateSystemProperties{Properties: map[string]string{"b": "2", "a": "x=y"}},
			want: asadmin.NewCommand("create-system-properties", `a=x\=y:b=2`),
		},
		{
			name: "set",
			step: &Set{Attribute: "server.monitoring-service.module-monitoring-levels.jvm", Value: "HIGH"},
			want: asadmin.NewCommand("set", "server.monitoring-service.module-monitoring-levels.jvm=HIGH"),
		},
		{
			name: "raw",
			step: &Raw{Command: "list-applications", Args: []string{"--long"}},
			want: asadmin.NewCommand("list-applications", "--long"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &recordingExecutor{}
			require.NoError(t, tc.step.Execute(context.Background(), exec))
			require.Len(t, exec.commands, 1)
			assert.Equal(t, tc.want, exec.commands[0])
			assert.NotEmpty(t, tc.step.Description())
		})
	}
}

func TestValidate(t *testing.T) {
	invalid := map[string]Validator{
		"empty_domain":        NewStartDomain("", "", false),
		"bad_domain":          NewStopDomain("my domain", ""),
		"bad_port":            &CreateDomain{DomainRef: DomainRef{Domain: "d"}, AdminPort: 70000},
		"deploy_without_path": &Deploy{Name: "shop"},
		"undeploy_no_name":    &Undeploy{},
		"pool_no_classname":   &CreateJDBCConnectionPool{Name: "p"},
		"resource_no_pool":    &CreateJDBCResource{JNDIName: "jdbc/x"},
		"no_properties":       &CreateSystemProperties{},
		"set_no_attribute":    &Set{Value: "x"},
		"raw_option":          &Raw{Command: "--help"},
	}
	for name, v := range invalid {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, v.Validate())
		})
	}
}

func TestBuilders(t *testing.T) {
	builders := Builders(Defaults{Domain: "shop", DomainDir: "/srv/domains"})

	entries := []macro.Entry{
		{Command: "stop-domain"},
		{Command: "start-domain", Options: map[string]any{"debug": true}},
		{Command: "deploy", Options: map[string]any{"path": "shop.war", "context_root": "/"}},
		{Command: "asadmin", Options: map[string]any{"command": "list-domains", "args": []any{"--long"}}},
		{Command: "stop-domain", Options: map[string]any{"domain": "other"}},
	}
	built, err := macro.CreateSteps(entries, builders...)
	require.NoError(t, err)
	require.Len(t, built, len(entries))

	exec := &recordingExecutor{}
	for _, s := range built {
		require.NoError(t, s.Execute(context.Background(), exec))
	}

	assert.Equal(t, asadmin.NewCommand("stop-domain", "--domaindir", "/srv/domains", "shop"), exec.commands[0])
	assert.Equal(t, asadmin.NewCommand("start-domain", "--domaindir", "/srv/domains", "--debug=true", "shop"), exec.commands[1])
	assert.Equal(t, asadmin.NewCommand("deploy", "--contextroot", "/", "shop.war"), exec.commands[2])
	assert.Equal(t, asadmin.NewCommand("list-domains", "--long"), exec.commands[3])
	assert.Equal(t, asadmin.NewCommand("stop-domain", "--domaindir", "/srv/domains", "other"), exec.commands[4])

	t.Run("invalid options are rejected", func(t *testing.T) {
		_, err := macro.CreateSteps([]macro.Entry{{Command: "undeploy"}}, builders...)
		assert.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	m, err := macro.New(context.Background(), "localhost", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NoError(t, Register(m, &Undeploy{Name: "shop"}))
	require.Error(t, Register(m, &Undeploy{}))
	assert.Len(t, m.Steps(), 1)
}
