// Command rvinspect is a developer tool for inspecting address translation
// and physical memory attributes against a flat memory image. It is not
// part of the simulated core: the core depends only on the vm.Memory
// interface, never on this tool's image format or configuration.
package main

import "github.com/CircuitSutra/VeeR-ISS/cmd/rvinspect/cmd"

func main() {
	cmd.Execute()
}
