// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/z5labs/confstack/internal/cli"
	"github.com/z5labs/confstack/paths"
)

func main() {
	err := run(os.Args[1:]...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args ...string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := cli.NewRootCommand(paths.OSEnv())
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
