package testutils

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	defaultSSHImage          = "linuxserver/openssh-server:version-10.0_p1-r10"
	defaultSSHStartupTimeout = 30 * time.Second
	sshUser                  = "glassfish"

	// GlassfishDir is where the stub asadmin is installed inside the container.
	GlassfishDir = "/opt/glassfish"
	// MissingApplication is the operand the stub asadmin rejects.
	MissingApplication = "missing"
)

// stubAsadmin echoes its arguments and fails when an operand names the
// missing application, like asadmin does for an unknown application.
const stubAsadmin = `#!/bin/sh
echo "asadmin $*"
for arg in "$@"; do
	if [ "$arg" = "` + MissingApplication + `" ]; then
		echo "Application ` + MissingApplication + ` is not registered." >&2
		exit 1
	fi
done
echo "Command executed successfully."
`

// DomainHost is an OpenSSH container standing in for a machine with
// GlassFish installed.
type DomainHost struct {
	Container      testcontainers.Container
	Address        string
	User           string
	KeyPath        string
	KnownHostsPath string
	GlassfishDir   string
}

// SetupDomainHost starts the container, authorizes a fresh key and pins the
// container's host key in a known_hosts file.
func SetupDomainHost(t *testing.T, ctx context.Context) *DomainHost {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	dir := t.TempDir()
	keyPath, authorizedKey, err := writeKeyPair(dir)
	if err != nil {
		t.Fatalf("generate ssh key: %v", err)
	}

	container, err := startContainer(ctx, authorizedKey)
	if err != nil {
		t.Fatalf("start ssh container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	address, err := mappedAddress(ctx, container)
	if err != nil {
		t.Fatalf("resolve ssh address: %v", err)
	}

	knownHostsPath := filepath.Join(dir, "known_hosts")
	if err := pinHostKey(ctx, address, knownHostsPath); err != nil {
		t.Fatalf("pin host key: %v", err)
	}

	return &DomainHost{
		Container:      container,
		Address:        address,
		User:           sshUser,
		KeyPath:        keyPath,
		KnownHostsPath: knownHostsPath,
		GlassfishDir:   GlassfishDir,
	}
}

func writeKeyPair(dir string) (string, string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return "", "", err
	}
	keyPath := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600); err != nil {
		return "", "", err
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", "", err
	}
	return keyPath, string(ssh.MarshalAuthorizedKey(sshPub)), nil
}

func startContainer(ctx context.Context, authorizedKey string) (testcontainers.Container, error) {
	image := os.Getenv("DOMAINCTL_TEST_SSH_IMAGE")
	if image == "" {
		image = defaultSSHImage
	}

	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"2222/tcp"},
			Env: map[string]string{
				"PUBLIC_KEY": authorizedKey,
				"USER_NAME":  sshUser,
			},
			Files: []testcontainers.ContainerFile{
				{
					Reader:            strings.NewReader(stubAsadmin),
					ContainerFilePath: GlassfishDir + "/bin/asadmin",
					FileMode:          0755,
				},
			},
			WaitingFor: wait.ForListeningPort("2222/tcp").WithStartupTimeout(defaultSSHStartupTimeout),
		},
		Started: true,
	})
}

func mappedAddress(ctx context.Context, c testcontainers.Container) (string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.MappedPort(ctx, "2222")
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, port.Port()), nil
}

// pinHostKey captures the host key during a handshake that is expected to
// fail authentication and records it in a known_hosts file.
func pinHostKey(ctx context.Context, address, knownHostsPath string) error {
	var hostKey ssh.PublicKey
	config := &ssh.ClientConfig{
		User: sshUser,
		Auth: []ssh.AuthMethod{ssh.Password("invalid")},
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			hostKey = key
			return nil
		},
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	defer conn.Close()

	_, _, _, handshakeErr := ssh.NewClientConn(conn, address, config)
	if hostKey == nil {
		if handshakeErr != nil {
			return fmt.Errorf("capture host key: %w", handshakeErr)
		}
		return errors.New("capture host key: no key presented")
	}

	line := knownhosts.Line([]string{address}, hostKey)
	return os.WriteFile(knownHostsPath, []byte(line+"\n"), 0600)
}
