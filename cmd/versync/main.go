// Command versync synchronizes a Tauri app's packaging version with its
// package.json before handing over to the packager.
package main

import (
	"os"

	"github.com/jmgilman/versync/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
