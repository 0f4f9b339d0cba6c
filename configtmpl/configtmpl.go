// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package configtmpl renders config file content as a text/template
// before it is parsed.
package configtmpl

import (
	"bytes"
	"fmt"
	"reflect"
	"text/template"
)

// Option configures a Renderer.
type Option func(*Renderer)

// Func registers the given function, f, for use in config templates
// via the given name.
func Func(name string, f any) Option {
	return func(r *Renderer) {
		r.funcs[name] = f
	}
}

// Delims sets the action delimiters to the specified strings. An empty
// delimiter stands for the corresponding default: {{ or }}.
func Delims(left, right string) Option {
	return func(r *Renderer) {
		r.leftDelim = left
		r.rightDelim = right
	}
}

// Renderer executes config templates.
//
// Every Renderer provides the env and default functions. env reads
// variables through the lookup func given to New, never from the process.
type Renderer struct {
	leftDelim  string
	rightDelim string
	funcs      template.FuncMap
}

// New configures a Renderer whose env function is backed by lookup.
func New(lookup func(string) (string, bool), opts ...Option) *Renderer {
	r := &Renderer{
		funcs: template.FuncMap{
			"env":     envFunc(lookup),
			"default": Default,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TextTemplateParseError occurs when the config template fails to be parsed.
type TextTemplateParseError struct {
	Cause error
}

// Error implements the error interface.
func (e TextTemplateParseError) Error() string {
	return fmt.Sprintf("failed to parse config template: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TextTemplateParseError) Unwrap() error {
	return e.Cause
}

// TextTemplateExecError occurs when a template fails to execute. Most
// likely cause is using template functions returning an error or panicing.
type TextTemplateExecError struct {
	Cause error
}

// Error implements the error interface.
func (e TextTemplateExecError) Error() string {
	return fmt.Sprintf("failed to exec config template: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TextTemplateExecError) Unwrap() error {
	return e.Cause
}

// Render executes content as a template named name.
func (r *Renderer) Render(name string, content []byte) ([]byte, error) {
	tmpl, err := template.New(name).
		Delims(r.leftDelim, r.rightDelim).
		Funcs(r.funcs).
		Parse(string(content))
	if err != nil {
		return nil, TextTemplateParseError{Cause: err}
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct{}{})
	if err != nil {
		return nil, TextTemplateExecError{Cause: err}
	}
	return buf.Bytes(), nil
}

func envFunc(lookup func(string) (string, bool)) func(string) string {
	return func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return v
	}
}

// Default returns the provided def value if v is either nil or the zero value for its type.
func Default(def, v any) any {
	if v == nil {
		return def
	}
	val := reflect.ValueOf(v)
	if val.IsZero() {
		return def
	}
	return v
}
