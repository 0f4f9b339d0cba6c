// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package confstack resolves an application's configuration from layered
// sources into a single tree.
//
// A [Reader] discovers config files for an application, parses them in one
// of several formats and merges them from lowest to highest priority:
//
//   - system files, e.g. $XDG_CONFIG_DIRS/<app>/config.yml or /etc/<app>rc
//   - user files, e.g. ~/.config/<app>/config.yml or ~/.<app>rc
//   - the <APP>_OPTIONS environment variable, parsed as flags
//   - command-line options supplied by the caller
//
// Mappings merge recursively, so a later source that sets one nested key
// leaves its siblings from earlier sources in place.
//
// # Basic Usage
//
//	r, err := confstack.New("labrat")
//	if err != nil {
//	    return err
//	}
//	cfg, err := r.Read(ctx, confstack.CommandLineString("--printer=dymo"))
//	if err != nil {
//	    return err
//	}
//	printer, _ := cfg.String("printer")
//
// The <APP>_SYS_CONFIG and <APP>_CONFIG environment variables name a single
// file that replaces the directory search of the system and user tier
// respectively.
package confstack
