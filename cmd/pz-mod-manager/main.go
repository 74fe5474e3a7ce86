package main

import (
	"pz-mod-manager/cmd/pz-mod-manager/cmd"
)

func main() {
	// Execute the root command (defined in cmd/root.go)
	cmd.Execute()
}
