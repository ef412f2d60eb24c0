package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHServer runs commands on the host carrying the domain when asadmin is
// not installed on the build machine.
type SSHServer struct {
	address        string
	user           User
	knownHostsPath string
	opts           SSHOptions
}

type SSHOptions struct {
	UseAgent         *bool
	HandshakeTimeout time.Duration
}

const (
	defaultSSHPort             = "22"
	defaultSSHHandshakeTimeout = 15 * time.Second
)

func NewSSHServer(address string, user User, knownHostsPath string, opts SSHOptions) *SSHServer {
	return &SSHServer{
		address:        address,
		user:           user,
		knownHostsPath: knownHostsPath,
		opts:           opts,
	}
}

func (s *SSHServer) ID() string      { return s.user.Name + "@" + s.address }
func (s *SSHServer) Address() string { return s.address }

func (s *SSHServer) Execute(ctx context.Context, command string) (string, error) {
	client, closeAgent, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer closeAgent()
	defer client.Close()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			client.Close()
		case <-done:
		}
	}()
	defer close(done)

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	commandToRun, stdin := sudoCommand(command, s.user.SudoPassword)
	if stdin != nil {
		session.Stdin = stdin
	}

	output, err := session.CombinedOutput(commandToRun)
	if err != nil {
		return string(output), fmt.Errorf("command %q failed on %s: %w", commandToRun, s.address, err)
	}
	return string(output), nil
}

// sudoCommand switches a non-interactive sudo invocation to read the password
// from stdin when one is configured. Other commands pass through unchanged.
func sudoCommand(command, password string) (string, io.Reader) {
	rest, ok := strings.CutPrefix(command, "sudo -n ")
	if password == "" || !ok {
		return command, nil
	}
	return "sudo -S -p '' " + rest, strings.NewReader(password + "\n")
}

func (s *SSHServer) connect(ctx context.Context) (*ssh.Client, func(), error) {
	addr := s.address
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultSSHPort)
	}

	authMethods, closeAgent, err := s.authMethods()
	if err != nil {
		return nil, nil, err
	}

	knownHostsPath, err := resolveKnownHostsPath(s.knownHostsPath)
	if err != nil {
		closeAgent()
		return nil, nil, err
	}
	hostKeyCallback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		closeAgent()
		return nil, nil, fmt.Errorf("failed to load known_hosts file %q: %w", knownHostsPath, err)
	}

	config := &ssh.ClientConfig{
		User:            s.user.Name,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		closeAgent()
		return nil, nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	if err := applyHandshakeDeadline(ctx, conn, s.handshakeTimeout()); err != nil {
		conn.Close()
		closeAgent()
		return nil, nil, err
	}
	handshakeDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-handshakeDone:
		}
	}()

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	close(handshakeDone)
	if err != nil {
		conn.Close()
		closeAgent()
		return nil, nil, fmt.Errorf("failed to establish ssh connection to %s: %w", addr, err)
	}
	if err := clearDeadline(conn); err != nil {
		sshConn.Close()
		closeAgent()
		return nil, nil, err
	}
	return ssh.NewClient(sshConn, chans, reqs), closeAgent, nil
}

// authMethods prefers explicit key material before falling back to the agent.
func (s *SSHServer) authMethods() ([]ssh.AuthMethod, func(), error) {
	var methods []ssh.AuthMethod
	closeAgent := func() {}

	if s.user.SSHKey != "" {
		expandedPath, err := expandPath(s.user.SSHKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to expand ssh key path %q: %w", s.user.SSHKey, err)
		}
		key, err := os.ReadFile(expandedPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read ssh key %q: %w", expandedPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse ssh key %q: %w", expandedPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if s.useAgent() {
		if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
			if agentConn, err := net.Dial("unix", sock); err == nil {
				methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(agentConn).Signers))
				closeAgent = func() { agentConn.Close() }
			}
		}
	}

	if len(methods) == 0 {
		return nil, nil, fmt.Errorf("no ssh authentication methods available")
	}
	return methods, closeAgent, nil
}

func (s *SSHServer) useAgent() bool {
	if s.opts.UseAgent == nil {
		return true
	}
	return *s.opts.UseAgent
}

func (s *SSHServer) handshakeTimeout() time.Duration {
	if s.opts.HandshakeTimeout > 0 {
		return s.opts.HandshakeTimeout
	}
	return defaultSSHHandshakeTimeout
}

func applyHandshakeDeadline(ctx context.Context, conn net.Conn, timeout time.Duration) error {
	deadline, ok := handshakeDeadline(ctx, timeout)
	if !ok {
		return nil
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set ssh handshake deadline: %w", err)
	}
	return nil
}

func clearDeadline(conn net.Conn) error {
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return fmt.Errorf("clear ssh handshake deadline: %w", err)
	}
	return nil
}

func handshakeDeadline(ctx context.Context, timeout time.Duration) (time.Time, bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok {
		if deadline.IsZero() || ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
	}
	if deadline.IsZero() {
		return time.Time{}, false
	}
	return deadline, true
}

func resolveKnownHostsPath(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory for known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	return expandPath(path)
}

// expandPath replaces a leading "~/" with the current user's home directory.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
