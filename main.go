// goshell - an interactive POSIX-style command shell.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/morganforge/goshell/internal/session"
)

// Version is the program's reported version.
const Version = "0.1.0"

const usage = `usage: goshell [-h|--help] [-v|--verbose] [-V|--version]

  -h, --help     show this help message and exit
  -v, --verbose  enable debug-level diagnostics on stderr
  -V, --version  print the program name and version and exit
`

func main() {
	verbose := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-h", "--help":
			fmt.Fprint(os.Stdout, usage)
			os.Exit(0)
		case "-V", "--version":
			fmt.Fprintf(os.Stdout, "goshell %s\n", Version)
			os.Exit(0)
		case "-v", "--verbose":
			verbose = true
		default:
			fmt.Fprintf(os.Stderr, "goshell: unknown flag %q\n", arg)
			fmt.Fprint(os.Stderr, usage)
			os.Exit(1)
		}
	}

	sess := session.New(verbose)
	os.Exit(sess.Run(os.Stdin, os.Stdout, os.Stderr))
}
