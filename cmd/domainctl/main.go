package main

import "github.com/tpodg/domainctl/internal/cli"

func main() {
	cli.Execute()
}
