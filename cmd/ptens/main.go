// SPDX-License-Identifier: MIT

// Command ptens runs permutation-equivariant layers over packs described in
// YAML files, checkpoints packs and benchmarks the execution backends.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
