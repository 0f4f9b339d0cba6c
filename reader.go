// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package confstack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/z5labs/confstack/configtmpl"
	"github.com/z5labs/confstack/format"
	"github.com/z5labs/confstack/internal/ioutil"
	"github.com/z5labs/confstack/internal/maskslog"
	"github.com/z5labs/confstack/internal/slogfield"
	"github.com/z5labs/confstack/key"
	"github.com/z5labs/confstack/merge"
	"github.com/z5labs/confstack/optstring"
	"github.com/z5labs/confstack/paths"
	"github.com/z5labs/confstack/tree"
)

// Option configures a Reader.
type Option func(*Reader)

// Style selects the config file format. The default is YAML.
func Style(s format.Style) Option {
	return func(r *Reader) {
		r.style = s
	}
}

// XDG searches XDG base directories for config files. This is the default.
func XDG() Option {
	return func(r *Reader) {
		r.convention = paths.XDG
	}
}

// Classic searches /etc and home directory dotfiles for config files.
func Classic() Option {
	return func(r *Reader) {
		r.convention = paths.Classic
	}
}

// RootPrefix places every searched path under prefix.
func RootPrefix(prefix string) Option {
	return func(r *Reader) {
		r.rootPrefix = prefix
	}
}

// WithEnv replaces the process environment, home directory, working
// directory and filesystem the Reader consults.
func WithEnv(env paths.Env) Option {
	return func(r *Reader) {
		r.env = env
	}
}

// LogHandler sets the handler that verbose diagnostics are written to.
// The default writes text to stderr.
func LogHandler(h slog.Handler) Option {
	return func(r *Reader) {
		r.handler = h
	}
}

// MaskKeys hides the values of matching keys in verbose diagnostics. A
// value is hidden when its own key, or any key above it, equals one of
// names. Mappings and sequences logged whole have their matching keys
// hidden inside them.
func MaskKeys(names ...string) Option {
	return func(r *Reader) {
		r.maskKeys = append(r.maskKeys, names...)
	}
}

// RenderTemplates renders every config file as a text/template before it
// is parsed.
func RenderTemplates(opts ...configtmpl.Option) Option {
	return func(r *Reader) {
		r.renderTemplates = true
		r.tmplOpts = opts
	}
}

// Reader resolves the configuration of one application. It holds no
// mutable state once constructed.
type Reader struct {
	appID      string
	style      format.Style
	convention paths.Convention
	rootPrefix string
	env        paths.Env
	handler    slog.Handler
	maskKeys   []string
	log        *slog.Logger

	renderTemplates bool
	tmplOpts        []configtmpl.Option

	adapter  format.Adapter
	resolver *paths.Resolver
	renderer *configtmpl.Renderer
}

// New returns a Reader for appID, which must be a lowercase letter
// followed by lowercase letters, digits or underscores.
func New(appID string, opts ...Option) (*Reader, error) {
	r := &Reader{
		appID:      appID,
		style:      format.YAML,
		convention: paths.XDG,
		env:        paths.OSEnv(),
		handler:    slog.NewTextHandler(os.Stderr, nil),
	}
	for _, opt := range opts {
		opt(r)
	}

	h := r.handler
	if len(r.maskKeys) > 0 {
		sensitive := matchesAny(r.maskKeys)
		h = maskslog.NewHandler(
			h,
			maskslog.Values("key", sensitive, "old", "new"),
			maskslog.Nested(sensitive, "old", "new"),
		)
	}
	r.log = slog.New(h)

	adapter, err := format.For(r.style)
	if err != nil {
		return nil, InvalidArgumentError{Cause: err}
	}
	r.adapter = adapter

	resolver, err := paths.NewResolver(
		appID,
		paths.WithConvention(r.convention),
		paths.RootPrefix(r.rootPrefix),
		paths.WithEnv(r.env),
	)
	if err != nil {
		return nil, InvalidArgumentError{Cause: err}
	}
	r.resolver = resolver

	if r.renderTemplates {
		r.renderer = configtmpl.New(r.env.Lookup, r.tmplOpts...)
	}
	return r, nil
}

// OptionsVar names the environment variable holding the flag overlay.
func (r *Reader) OptionsVar() string {
	return strings.ToUpper(r.appID) + "_OPTIONS"
}

// Paths returns the config files that a read with baseName would merge.
func (r *Reader) Paths(baseName string) paths.Sources {
	return r.resolver.Resolve(baseName, format.CandidatesFor(r.adapter))
}

type readOptions struct {
	baseName        string
	commandLine     tree.Tree
	commandLineText string
	verbose         bool
}

// ReadOption configures a single read.
type ReadOption func(*readOptions)

// BaseName replaces the app id as the basename of candidate files.
func BaseName(name string) ReadOption {
	return func(ro *readOptions) {
		ro.baseName = name
	}
}

// CommandLine merges t over every other source. An empty t is ignored.
func CommandLine(t tree.Tree) ReadOption {
	return func(ro *readOptions) {
		ro.commandLine = t
	}
}

// CommandLineString parses s as flags, e.g. "--printer=dymo --no-duplex",
// and merges the result over every other source. A blank s is ignored.
// When combined with CommandLine, keys parsed from s take priority.
func CommandLineString(s string) ReadOption {
	return func(ro *readOptions) {
		ro.commandLineText = s
	}
}

// Verbose logs the files found and every merge step.
func Verbose() ReadOption {
	return func(ro *readOptions) {
		ro.verbose = true
	}
}

// OriginKind classifies where a merged tree came from.
type OriginKind int

const (
	FileOrigin OriginKind = iota
	EnvironmentOrigin
	CommandLineOrigin
)

// Origin identifies the source of one merge step.
type Origin struct {
	Kind OriginKind

	// Path and Tier are set for files.
	Path string
	Tier paths.Tier

	// Var is set for the environment.
	Var string
}

// String implements the [fmt.Stringer] interface.
func (o Origin) String() string {
	switch o.Kind {
	case FileOrigin:
		return fmt.Sprintf("%s config from file '%s'", o.Tier, o.Path)
	case EnvironmentOrigin:
		return "environment from " + o.Var
	case CommandLineOrigin:
		return "command-line"
	default:
		return fmt.Sprintf("OriginKind(%d)", int(o.Kind))
	}
}

// Step is one merge of a source over the sources before it.
type Step struct {
	Source  Origin
	Entries []merge.Entry
}

// Result is the outcome of a read along with how it was reached.
type Result struct {
	Tree    tree.Tree
	Sources paths.Sources
	Steps   []Step
}

// WriteReport writes the audit trail of every step to w.
func (res *Result) WriteReport(w io.Writer) error {
	for _, step := range res.Steps {
		if len(step.Entries) == 0 {
			_, err := fmt.Fprintf(w, "Empty config from %s\n", step.Source)
			if err != nil {
				return err
			}
			continue
		}

		_, err := fmt.Fprintf(w, "Merging %s:\n", step.Source)
		if err != nil {
			return err
		}
		err = merge.WriteReport(w, step.Entries)
		if err != nil {
			return err
		}
	}
	return nil
}

// Read returns the merged configuration tree.
func (r *Reader) Read(ctx context.Context, opts ...ReadOption) (tree.Tree, error) {
	res, err := r.Resolve(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return res.Tree, nil
}

// Resolve merges, from lowest to highest priority, the system files, the
// user files, the options environment variable and the command line.
//
// Any config file that is found must parse. A file that fails to is
// reported as a [SourceError] wrapping a [format.ParseError].
func (r *Reader) Resolve(ctx context.Context, opts ...ReadOption) (*Result, error) {
	ro := &readOptions{}
	for _, opt := range opts {
		opt(ro)
	}

	srcs := r.Paths(ro.baseName)
	if ro.verbose {
		r.logSources(ctx, paths.System, srcs.System)
		r.logSources(ctx, paths.User, srcs.User)
	}

	res := &Result{
		Tree:    tree.New(),
		Sources: srcs,
	}
	for _, src := range srcs.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, err := r.load(src.Path)
		if err != nil {
			return nil, err
		}
		r.apply(ctx, res, Origin{Kind: FileOrigin, Path: src.Path, Tier: src.Tier}, t, ro.verbose)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s, ok := r.env.Lookup(r.OptionsVar()); ok {
		origin := Origin{Kind: EnvironmentOrigin, Var: r.OptionsVar()}
		r.apply(ctx, res, origin, optstring.Parse(s), ro.verbose)
	}

	cl := ro.commandLine.Normalize()
	if !optstring.IsBlank(ro.commandLineText) {
		cl, _ = merge.Merge(cl, optstring.Parse(ro.commandLineText))
	}
	if len(cl) > 0 {
		r.apply(ctx, res, Origin{Kind: CommandLineOrigin}, cl, ro.verbose)
	}
	return res, nil
}

func (r *Reader) load(path string) (tree.Tree, error) {
	content, err := ioutil.ReadFile(r.env.Filesystem(), path)
	if err != nil {
		return nil, ReadFileError{Path: path, Cause: err}
	}

	if r.renderer != nil {
		content, err = r.renderer.Render(path, content)
		if err != nil {
			return nil, SourceError{Source: path, Cause: err}
		}
	}

	t, err := r.adapter.Parse(content)
	if err != nil {
		var perr format.ParseError
		if errors.As(err, &perr) {
			perr.Source = path
			err = perr
		}
		return nil, SourceError{Source: path, Cause: err}
	}
	return t, nil
}

func (r *Reader) apply(ctx context.Context, res *Result, origin Origin, t tree.Tree, verbose bool) {
	merged, entries := merge.Merge(res.Tree, t)
	res.Tree = merged

	step := Step{Source: origin}
	if len(t) > 0 {
		step.Entries = entries
	}
	res.Steps = append(res.Steps, step)

	if !verbose {
		return
	}
	log := r.log.With(slogfield.String("source", origin.String()))
	if len(t) == 0 {
		log.InfoContext(ctx, "empty config")
		return
	}
	log.InfoContext(ctx, "merging config")
	for _, e := range entries {
		log.InfoContext(
			ctx,
			"merged config key",
			slogfield.String("action", e.Action.String()),
			slogfield.KeyChain("key", e.Path),
			slogfield.Any("old", e.Old),
			slogfield.Any("new", e.New),
		)
	}
}

func matchesAny(names []string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(key.Normalize(name).Key())] = true
	}
	return func(chain string) bool {
		for _, seg := range strings.Split(chain, ".") {
			if set[strings.ToLower(seg)] {
				return true
			}
		}
		return false
	}
}

func (r *Reader) logSources(ctx context.Context, tier paths.Tier, srcs []paths.Source) {
	if len(srcs) == 0 {
		r.log.InfoContext(ctx, "no config files found", slogfield.String("tier", tier.String()))
		return
	}

	files := make([]string, 0, len(srcs))
	for _, src := range srcs {
		files = append(files, src.Path)
	}
	r.log.InfoContext(
		ctx,
		"config files found",
		slogfield.String("tier", tier.String()),
		slogfield.Strings("files", files),
	)
}
