// wiiutool decrypts Wii U title containers and extracts their FST file
// tree. See `wiiutool --help` for the command surface.
package main

import (
	"os"

	"wiiutool/internal/cli"
)

const version = "v0.1"

func main() {
	os.Exit(cli.Execute(version))
}
