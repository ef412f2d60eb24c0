package asadmin

import "strings"

// Command is a single asadmin subcommand with its options and operands.
type Command struct {
	Name string
	Args []string
}

// NewCommand builds a Command from a subcommand name and its arguments.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}
