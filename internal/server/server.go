package server

import "context"

// Server is a machine on which asadmin commands can be run.
type Server interface {
	// ID returns a unique identifier for the server.
	ID() string
	// Address returns the connection address (IP or hostname).
	Address() string
	// Execute runs a shell command line on the server and returns its combined output.
	Execute(ctx context.Context, command string) (string, error)
}
