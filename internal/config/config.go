package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	goconfig "github.com/tpodg/go-config"
)

const (
	DefaultConfigFileName = ".domainctl.yaml"
	EnvPrefix             = "DOMAINCTL"

	DefaultDomainName   = "domain1"
	DefaultHost         = "localhost"
	DefaultAdminPort    = 4848
	DefaultInstancePort = 8080
	DefaultAdminUser    = "admin"
)

type Config struct {
	Glassfish        GlassfishConfig   `yaml:"glassfish"`
	Domain           DomainConfig      `yaml:"domain"`
	SSH              *SSHConfig        `yaml:"ssh"`
	Applications     []Application     `yaml:"applications"`
	Resources        Resources         `yaml:"resources"`
	SystemProperties map[string]string `yaml:"system_properties"`
	Macros           []MacroConfig     `yaml:"macros"`
}

type GlassfishConfig struct {
	// Directory is the GlassFish install directory or the asadmin binary.
	Directory string `yaml:"directory"`
	// SudoUser owns the installation. When set asadmin runs through sudo as this user.
	SudoUser string `yaml:"sudo_user"`
}

type DomainConfig struct {
	Name         string `yaml:"name"`
	Directory    string `yaml:"directory"`
	Host         string `yaml:"host"`
	AdminPort    int    `yaml:"admin_port"`
	InstancePort int    `yaml:"instance_port"`
	User         string `yaml:"user"`
	PasswordFile string `yaml:"password_file"`
	Secure       bool   `yaml:"secure"`
	Debug        bool   `yaml:"debug"`
}

// SSHConfig runs asadmin on another machine instead of the local one.
type SSHConfig struct {
	Address          string        `yaml:"address"`
	User             string        `yaml:"user"`
	SSHKey           string        `yaml:"ssh_key"`
	SudoPassword     string        `yaml:"sudo_password"`
	KnownHostsPath   string        `yaml:"known_hosts"`
	UseAgent         *bool         `yaml:"use_agent"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

type Application struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	ContextRoot string `yaml:"context_root"`
}

type Resources struct {
	JDBCConnectionPools []JDBCConnectionPool `yaml:"jdbc_connection_pools"`
	JDBCResources       []JDBCResource       `yaml:"jdbc_resources"`
	Settings            map[string]string    `yaml:"set"`
}

type JDBCConnectionPool struct {
	Name                string            `yaml:"name"`
	DatasourceClassname string            `yaml:"datasource_classname"`
	ResType             string            `yaml:"res_type"`
	Properties          map[string]string `yaml:"properties"`
}

type JDBCResource struct {
	JNDIName string `yaml:"jndi_name"`
	Pool     string `yaml:"pool"`
}

// MacroConfig declares a custom macro as an ordered list of steps.
type MacroConfig struct {
	Name  string       `yaml:"name"`
	Steps []StepConfig `yaml:"steps"`
}

type StepConfig struct {
	Command string         `yaml:"command"`
	With    map[string]any `yaml:"with"`
}

// Load the configuration from the given file or default locations.
func Load(cfgFile string) (*Config, error) {
	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}

	c := goconfig.New()
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}
		c.WithProviders(&goconfig.Yaml{Path: absPath})
	}

	c.WithProviders(&goconfig.Env{Prefix: EnvPrefix})

	cfg := &Config{}
	if err := c.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset domain settings.
func (c *Config) ApplyDefaults() {
	if c.Domain.Name == "" {
		c.Domain.Name = DefaultDomainName
	}
	if c.Domain.Host == "" {
		c.Domain.Host = DefaultHost
	}
	if c.Domain.AdminPort == 0 {
		c.Domain.AdminPort = DefaultAdminPort
	}
	if c.Domain.InstancePort == 0 {
		c.Domain.InstancePort = DefaultInstancePort
	}
	if c.Domain.User == "" {
		c.Domain.User = DefaultAdminUser
	}
}

func findConfigFile(cfgFile string) (string, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return cfgFile, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if _, err := os.Stat(DefaultConfigFileName); err == nil {
		return DefaultConfigFileName, nil
	}

	return "", nil
}
