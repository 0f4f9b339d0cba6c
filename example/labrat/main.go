// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/z5labs/confstack"
	"github.com/z5labs/confstack/internal/slogfield"
)

// Config is what labrat needs to print labels.
type Config struct {
	Printer    string        `config:"printer"`
	PageWidth  string        `config:"page_width"`
	PageHeight string        `config:"page_height"`
	Copies     int           `config:"copies"`
	Duplex     bool          `config:"duplex"`
	Timeout    time.Duration `config:"timeout"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{AddSource: true})
	log := slog.New(logHandler)

	r, err := confstack.New(
		"labrat",
		confstack.LogHandler(logHandler),
		confstack.MaskKeys("password"),
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to configure reader", slogfield.Error(err))
		return
	}

	var opts []confstack.ReadOption
	if os.Getenv("LABRAT_VERBOSE") != "" {
		opts = append(opts, confstack.Verbose())
	}
	opts = append(opts, confstack.CommandLineString(strings.Join(os.Args[1:], " ")))

	t, err := r.Read(ctx, opts...)
	if err != nil {
		log.ErrorContext(ctx, "failed to read config", slogfield.Error(err))
		return
	}

	var cfg Config
	err = t.Decode(&cfg)
	if err != nil {
		log.ErrorContext(ctx, "failed to decode config", slogfield.Error(err))
		return
	}
	fmt.Printf("%+v\n", cfg)
}
