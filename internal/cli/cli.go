// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package cli implements the confstack command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/z5labs/confstack"
	"github.com/z5labs/confstack/format"
	"github.com/z5labs/confstack/paths"
	"github.com/z5labs/confstack/tree"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// UnsupportedOutputError occurs when the requested output format is neither
// json nor yaml.
type UnsupportedOutputError struct {
	Output string
}

// Error implements the error interface.
func (e UnsupportedOutputError) Error() string {
	return fmt.Sprintf("output must be one of json, yaml: %q", e.Output)
}

type readerFlags struct {
	style   string
	classic bool
	root    string
	base    string
}

func (f *readerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.style, "style", "yaml", "config file format: yaml, toml, json or ini")
	cmd.Flags().BoolVar(&f.classic, "classic", false, "search /etc and home dotfiles instead of XDG directories")
	cmd.Flags().StringVar(&f.root, "root", "", "prefix joined in front of every searched path")
	cmd.Flags().StringVar(&f.base, "base", "", "basename of config files (default is the app id)")
}

func (f *readerFlags) reader(appID string, env paths.Env, opts ...confstack.Option) (*confstack.Reader, error) {
	style, err := format.ParseStyle(f.style)
	if err != nil {
		return nil, confstack.InvalidArgumentError{Cause: err}
	}

	opts = append(
		opts,
		confstack.Style(style),
		confstack.RootPrefix(f.root),
		confstack.WithEnv(env),
	)
	if f.classic {
		opts = append(opts, confstack.Classic())
	}
	return confstack.New(appID, opts...)
}

// NewRootCommand returns the confstack command. Every subcommand resolves
// configuration against env.
func NewRootCommand(env paths.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "confstack",
		Short:         "Resolve layered application configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newReadCommand(env),
		newPathsCommand(env),
	)
	return cmd
}

func newReadCommand(env paths.Env) *cobra.Command {
	var (
		rf      readerFlags
		verbose bool
		audit   bool
		output  string
		mask    []string
	)

	cmd := &cobra.Command{
		Use:   "read APP [flags] [-- OPTIONS...]",
		Short: "Print the merged configuration of APP",
		Long: `Print the merged configuration of APP.

Arguments following -- are parsed as command-line options, e.g.
--printer=dymo --no-duplex, and take priority over every other source.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.reader(
				args[0],
				env,
				confstack.LogHandler(slog.NewTextHandler(cmd.ErrOrStderr(), nil)),
				confstack.MaskKeys(mask...),
			)
			if err != nil {
				return err
			}

			opts := []confstack.ReadOption{
				confstack.BaseName(rf.base),
				confstack.CommandLineString(strings.Join(args[1:], " ")),
			}
			if verbose {
				opts = append(opts, confstack.Verbose())
			}

			res, err := r.Resolve(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			if audit {
				err = res.WriteReport(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			return writeTree(cmd.OutOrStdout(), output, res.Tree)
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log the files found and every merge step")
	cmd.Flags().BoolVar(&audit, "audit", false, "print the merge report to stderr")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().StringSliceVar(&mask, "mask", nil, "keys whose values are hidden in verbose output")
	return cmd
}

func newPathsCommand(env paths.Env) *cobra.Command {
	var rf readerFlags

	cmd := &cobra.Command{
		Use:   "paths APP",
		Short: "List the config files APP would read, lowest priority first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rf.reader(args[0], env)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, src := range r.Paths(rf.base).All() {
				_, err := fmt.Fprintf(out, "%s\t%s\n", src.Tier, src.Path)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	rf.register(cmd)
	return cmd
}

func writeTree(w io.Writer, output string, t tree.Tree) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(output) {
	case "json":
		b, err = json.Marshal(t)
		if err != nil {
			return err
		}
		b = pretty.Pretty(b)
	case "yaml", "yml":
		b, err = yaml.Marshal(map[string]any(t))
		if err != nil {
			return err
		}
	default:
		return UnsupportedOutputError{Output: output}
	}

	_, err = w.Write(b)
	return err
}
