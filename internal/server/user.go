package server

// User is the SSH login used to reach a remote domain host.
type User struct {
	Name         string
	SSHKey       string
	SudoPassword string
}
