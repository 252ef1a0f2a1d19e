// Command composectl builds composite types from YAML manifests, reports how
// they resolved, and calls their methods.
package main

import "github.com/mesh-intelligence/compose/internal/cli"

func main() {
	cli.Execute()
}
