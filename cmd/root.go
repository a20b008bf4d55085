/*
Copyright © 2025 Ken'ichiro Oyama <k1lowxb@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/k1LoW/errors"
	"github.com/k1LoW/pngfixture"
	"github.com/k1LoW/pngfixture/config"
	"github.com/k1LoW/pngfixture/logger"
	"github.com/k1LoW/pngfixture/version"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
)

var (
	cfg         *config.Config
	l           *slog.Logger
	closeLogger func() error
)

var rootCmd = &cobra.Command{
	Use:   "pngfixture [OUTPUT_PATH]",
	Short: "pngfixture generates a minimal PNG image for use as a test fixture",
	Long: `pngfixture generates a minimal PNG image for use as a test fixture.

The image is a 10x10 solid red truecolor PNG. It is written to OUTPUT_PATH,
or to test-image.jpg in the current directory when no path is given.
The default name keeps its .jpg extension although the content is PNG.`,
	Args:               cobra.MaximumNArgs(1),
	SilenceUsage:       true,
	Version:            fmt.Sprintf("%s (rev:%s)", version.Version, version.Revision),
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := pngfixture.DefaultPath
		if len(args) > 0 {
			out = args[0]
		}
		if err := pngfixture.Generate(out, pngfixture.WithLogger(l)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s created\n", out)
		return nil
	},
}

func Execute() {
	rootCmd.SetOut(colorable.NewColorableStdout())
	rootCmd.SetErr(colorable.NewColorableStderr())
	if err := rootCmd.Execute(); err != nil {
		if l != nil {
			l.Debug("command failed", slog.String("error", err.Error()), slog.Any("stack_traces", errors.StackTraces(err)))
		}
		_ = teardown(rootCmd, nil)
		os.Exit(1)
	}
}

// setup loads the config and builds the logger shared by all subcommands.
func setup(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if cfg.Color != nil {
		color.NoColor = !*cfg.Color
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	l, closeLogger, err = logger.New(cmd.ErrOrStderr(), level, cfg.LogFile)
	if err != nil {
		return err
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if closeLogger == nil {
		return nil
	}
	err := closeLogger()
	closeLogger = nil
	return err
}
