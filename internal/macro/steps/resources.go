package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tpodg/domainctl/internal/asadmin"
	"github.com/tpodg/domainctl/internal/macro"
	"github.com/tpodg/domainctl/internal/strutil"
)

// CreateJDBCConnectionPool creates a JDBC connection pool.
type CreateJDBCConnectionPool struct {
	Name                string            `yaml:"name"`
	DatasourceClassname string            `yaml:"datasource_classname"`
	ResType             string            `yaml:"res_type"`
	Properties          map[string]string `yaml:"properties"`
}

func (s *CreateJDBCConnectionPool) Description() string {
	return fmt.Sprintf("Create JDBC connection pool %s", s.Name)
}

func (s *CreateJDBCConnectionPool) Validate() error {
	if err := strutil.ValidateIdentifier("connection pool", s.Name); err != nil {
		return err
	}
	if s.DatasourceClassname == "" {
		return fmt.Errorf("connection pool %s: datasource classname cannot be empty", s.Name)
	}
	return nil
}

func (s *CreateJDBCConnectionPool) Execute(ctx context.Context, e macro.Executor) error {
	args := []string{"--datasourceclassname", s.DatasourceClassname}
	if s.ResType != "" {
		args = append(args, "--restype", s.ResType)
	}
	if len(s.Properties) > 0 {
		args = append(args, "--property", propertyList(s.Properties))
	}
	args = append(args, s.Name)
	return e.Execute(ctx, asadmin.NewCommand("create-jdbc-connection-pool", args...))
}

// DeleteJDBCConnectionPool deletes a JDBC connection pool.
type DeleteJDBCConnectionPool struct {
	Name string `yaml:"name"`
	// Cascade also deletes the JDBC resources using the pool.
	Cascade bool `yaml:"cascade"`
}

func (s *DeleteJDBCConnectionPool) Description() string {
	return fmt.Sprintf("Delete JDBC connection pool %s", s.Name)
}

func (s *DeleteJDBCConnectionPool) Validate() error {
	return strutil.ValidateIdentifier("connection pool", s.Name)
}

func (s *DeleteJDBCConnectionPool) Execute(ctx context.Context, e macro.Executor) error {
	var args []string
	if s.Cascade {
		args = append(args, "--cascade=true")
	}
	args = append(args, s.Name)
	return e.Execute(ctx, asadmin.NewCommand("delete-jdbc-connection-pool", args...))
}

// CreateJDBCResource binds a JNDI name to a connection pool.
type CreateJDBCResource struct {
	JNDIName string `yaml:"jndi_name"`
	Pool     string `yaml:"pool"`
}

func (s *CreateJDBCResource) Description() string {
	return fmt.Sprintf("Create JDBC resource %s on pool %s", s.JNDIName, s.Pool)
}

func (s *CreateJDBCResource) Validate() error {
	if err := strutil.ValidateIdentifier("jdbc resource", s.JNDIName); err != nil {
		return err
	}
	return strutil.ValidateIdentifier("connection pool", s.Pool)
}

func (s *CreateJDBCResource) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("create-jdbc-resource", "--connectionpoolid", s.Pool, s.JNDIName))
}

// DeleteJDBCResource removes a JDBC resource.
type DeleteJDBCResource struct {
	JNDIName string `yaml:"jndi_name"`
}

func (s *DeleteJDBCResource) Description() string {
	return fmt.Sprintf("Delete JDBC resource %s", s.JNDIName)
}

func (s *DeleteJDBCResource) Validate() error {
	return strutil.ValidateIdentifier("jdbc resource", s.JNDIName)
}

func (s *DeleteJDBCResource) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("delete-jdbc-resource", s.JNDIName))
}

// CreateSystemProperties sets system properties on the domain.
type CreateSystemProperties struct {
	Properties map[string]string `yaml:"properties"`
}

func (s *CreateSystemProperties) Description() string {
	return fmt.Sprintf("Create %d system properties", len(s.Properties))
}

func (s *CreateSystemProperties) Validate() error {
	if len(s.Properties) == 0 {
		return errors.New("no system properties given")
	}
	for k := range s.Properties {
		if strings.TrimSpace(k) == "" {
			return errors.New("system property name cannot be empty")
		}
	}
	return nil
}

func (s *CreateSystemProperties) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("create-system-properties", propertyList(s.Properties)))
}

// Set changes a single dotted-name attribute of the domain configuration.
type Set struct {
	Attribute string `yaml:"attribute"`
	Value     string `yaml:"value"`
}

func (s *Set) Description() string {
	return fmt.Sprintf("Set %s=%s", s.Attribute, s.Value)
}

func (s *Set) Validate() error {
	if strings.TrimSpace(s.Attribute) == "" {
		return errors.New("attribute cannot be empty")
	}
	if strings.ContainsAny(s.Attribute, "= ") {
		return fmt.Errorf("attribute %q contains invalid characters", s.Attribute)
	}
	return nil
}

func (s *Set) Execute(ctx context.Context, e macro.Executor) error {
	return e.Execute(ctx, asadmin.NewCommand("set", s.Attribute+"="+s.Value))
}
