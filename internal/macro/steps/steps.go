// Package steps holds the asadmin commands that macros are assembled from.
package steps

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tpodg/domainctl/internal/macro"
)

// Defaults are applied to domain steps that leave the domain unset.
type Defaults struct {
	Domain    string
	DomainDir string
}

// Validator is implemented by every step in this package.
type Validator interface {
	Validate() error
}

type defaultable interface {
	applyDefaults(d Defaults)
}

// Builders returns a builder for every step so custom macros can use them.
func Builders(d Defaults) []macro.StepBuilder {
	return []macro.StepBuilder{
		builderFor[StartDomain]("start-domain", d),
		builderFor[StopDomain]("stop-domain", d),
		builderFor[RestartDomain]("restart-domain", d),
		builderFor[CreateDomain]("create-domain", d),
		builderFor[DeleteDomain]("delete-domain", d),
		builderFor[Deploy]("deploy", d),
		builderFor[Undeploy]("undeploy", d),
		builderFor[CreateJDBCConnectionPool]("create-jdbc-connection-pool", d),
		builderFor[DeleteJDBCConnectionPool]("delete-jdbc-connection-pool", d),
		builderFor[CreateJDBCResource]("create-jdbc-resource", d),
		builderFor[DeleteJDBCResource]("delete-jdbc-resource", d),
		builderFor[CreateSystemProperties]("create-system-properties", d),
		builderFor[Set]("set", d),
		builderFor[Raw]("asadmin", d),
	}
}

func builderFor[T any, P interface {
	*T
	macro.Step
	Validator
}](key string, d Defaults) macro.StepBuilder {
	return macro.BuilderFor(key, func(opts T) (macro.Step, error) {
		step := P(&opts)
		if da, ok := any(step).(defaultable); ok {
			da.applyDefaults(d)
		}
		if err := step.Validate(); err != nil {
			return nil, err
		}
		return step, nil
	})
}

// Register validates step and appends it to m.
func Register(m *macro.Macro, step macro.Step) error {
	if v, ok := step.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", step.Description(), err)
		}
	}
	m.Register(step)
	return nil
}

// propertyList renders properties as asadmin expects them: sorted key=value
// pairs joined by ':'.
func propertyList(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, escapeProperty(k)+"="+escapeProperty(props[k]))
	}
	return strings.Join(pairs, ":")
}

var propertyEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`, "=", `\=`)

func escapeProperty(value string) string {
	return propertyEscaper.Replace(value)
}
