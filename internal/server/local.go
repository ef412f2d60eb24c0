package server

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const (
	localID = "local"
	// waitDelay bounds how long output pipes are drained after the shell is killed.
	waitDelay = 5 * time.Second
)

// LocalServer runs commands on the machine running domainctl.
type LocalServer struct {
	shell string
}

func NewLocalServer() *LocalServer {
	return &LocalServer{shell: "/bin/sh"}
}

func (s *LocalServer) ID() string      { return localID }
func (s *LocalServer) Address() string { return "localhost" }

func (s *LocalServer) Execute(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, s.shell, "-c", command)
	cmd.WaitDelay = waitDelay
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("command %q failed: %w", command, err)
	}
	return string(output), nil
}
