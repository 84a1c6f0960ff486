// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/riannucci/rcharchive/rch"
)

// stdioName stands for stdin or stdout on the command line.
const stdioName = "-"

// errNotRemoved makes detract exit 1 once its report is printed.
var errNotRemoved = errors.New("some files were not found")

// app carries the process' streams and the resolved config through the
// commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFlag string
	verbose    bool
	cfg        *Config
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rch",
		Short:         "Create, inspect and modify RCH archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, required := configPath(a.configFlag)
			cfg := defaultConfig()
			if path != "" {
				var err error
				if cfg, err = LoadConfigFile(path, required); err != nil {
					return err
				}
			}
			a.cfg = cfg
			if !cmd.Flags().Changed("verbose") {
				a.verbose = cfg.Verbose
			}
			cmd.SetContext(a.loggingContext(cmd.Context()))
			logging.Debugf(cmd.Context(), "config from %q: %+v", path, *cfg)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable verbose output for logging.")
	root.PersistentFlags().StringVar(&a.configFlag, "config", "",
		"YAML file with flag defaults (default $"+configEnvVar+", then rch/config.yaml in the user config dir)")

	root.AddCommand(
		a.packCommand(),
		a.unpackCommand(),
		a.checkCommand(),
		a.injectCommand(),
		a.detractCommand(),
	)
	return root
}

func (a *app) loggingContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = (&gologger.LoggerConfig{Out: a.stderr}).Use(ctx)
	if a.verbose {
		return logging.SetLevel(ctx, logging.Debug)
	}
	return logging.SetLevel(ctx, logging.Error)
}

// encodingOptions merges the --encoding and --level flags with the config.
func (a *app) encodingOptions(cmd *cobra.Command, encoding string, level int) ([]rch.Option, error) {
	c := *a.cfg
	if cmd.Flags().Changed("encoding") {
		c.Encoding = encoding
	}
	if cmd.Flags().Changed("level") {
		c.Level = level
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	enc, _ := c.encoding()
	return []rch.Option{rch.WithEncoding(enc, c.Level)}, nil
}

func (a *app) entries(inputs []string, stdinName string) []rch.Entry {
	entries := make([]rch.Entry, len(inputs))
	for i, in := range inputs {
		if in == stdioName {
			entries[i] = rch.StreamEntry(stdinName, a.stdin)
		} else {
			entries[i] = rch.FileEntry(in)
		}
	}
	return entries
}

func (a *app) stdinFilename(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("stdin-filename") {
		return flag
	}
	return a.cfg.StdinFilename
}

func addEncodingFlags(cmd *cobra.Command, encoding *string, level *int, stdinName *string) {
	cmd.Flags().StringVar(encoding, "encoding", "",
		"Encoding algorithm: 2 or BZIP2 (default), 0 or XOR255+LZW, 1 or XOR255")
	cmd.Flags().IntVar(level, "level", 0, "Compression level for BZIP2 (1-9, default 9)")
	cmd.Flags().StringVar(stdinName, "stdin-filename", "", `Filename to use for stdin in the archive (default "stdin")`)
}

func (a *app) packCommand() *cobra.Command {
	var encoding, stdinName string
	var level int
	cmd := &cobra.Command{
		Use:   "pack OUTPUT [INPUT...]",
		Short: "Pack files into an RCH archive",
		Long: `Pack files into a new RCH archive.

OUTPUT may be "-" to write the archive to stdout, and an INPUT of "-" packs
stdin under the --stdin-filename name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.encodingOptions(cmd, encoding, level)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			entries := a.entries(args[1:], a.stdinFilename(cmd, stdinName))

			var results []rch.Result
			if args[0] == stdioName {
				results, err = rch.Pack(ctx, a.stdout, entries, opts...)
			} else {
				results, err = rch.PackFile(ctx, args[0], entries, opts...)
			}
			printResults(a.stderr, results)
			return err
		},
	}
	addEncodingFlags(cmd, &encoding, &level, &stdinName)
	return cmd
}

func (a *app) injectCommand() *cobra.Command {
	var encoding, stdinName string
	var level int
	cmd := &cobra.Command{
		Use:   "inject ARCHIVE INPUT...",
		Short: "Inject additional files into an existing RCH archive",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.encodingOptions(cmd, encoding, level)
			if err != nil {
				return err
			}
			entries := a.entries(args[1:], a.stdinFilename(cmd, stdinName))
			results, err := rch.Inject(cmd.Context(), args[0], entries, opts...)
			printResults(a.stderr, results)
			return err
		},
	}
	addEncodingFlags(cmd, &encoding, &level, &stdinName)
	return cmd
}

func (a *app) unpackCommand() *cobra.Command {
	var files []string
	var force bool
	cmd := &cobra.Command{
		Use:   "unpack ARCHIVE OUTDIR",
		Short: "Unpack files from an RCH archive",
		Long: `Unpack files from an RCH archive.

ARCHIVE may be "-" to read from stdin, and OUTDIR may be "-" to write the
contents of every extracted file to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("force") {
				force = a.cfg.Force
			}
			opts := []rch.Option{rch.WithForce(force)}
			if len(files) > 0 {
				opts = append(opts, rch.WithNames(files...))
			}

			var dest rch.Destination
			if args[1] == stdioName {
				dest = rch.Stream(a.stdout)
			} else {
				dest = rch.Dir(args[1])
			}

			var results []rch.Result
			var err error
			if args[0] == stdioName {
				results, err = rch.Unpack(cmd.Context(), a.stdin, dest, opts...)
			} else {
				results, err = rch.UnpackFile(cmd.Context(), args[0], dest, opts...)
			}
			printResults(a.stderr, results)
			printErrors(a.stderr, results)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&files, "files", nil, "Specific files (or glob patterns) to extract")
	cmd.Flags().BoolVar(&force, "force", false, "Force extraction even if CRC check fails")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check ARCHIVE",
		Short: "Check the integrity of an RCH archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []rch.Result
			var err error
			if args[0] == stdioName {
				results, err = rch.Check(cmd.Context(), a.stdin)
			} else {
				results, err = rch.CheckFile(cmd.Context(), args[0])
			}
			printResults(a.stderr, results)
			printErrors(a.stderr, results)
			return err
		},
	}
}

func (a *app) detractCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "detract ARCHIVE NAME...",
		Short: "Remove one or more files from an RCH archive",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rch.Detract(cmd.Context(), args[0], output, args[1:])
			if err != nil {
				return err
			}
			target := args[0]
			if output != "" {
				target = output
			}
			printDetract(a.stderr, target, res)
			if len(res.NotFound) > 0 {
				return errNotRemoved
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Output RCH file name (defaults to modifying ARCHIVE)")
	return cmd
}
