// Command spreads-inspect examines serialized frames: it decodes header
// bytes, lists the frames of a file, and compresses or decompresses them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newInspect().Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
