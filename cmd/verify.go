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
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/k1LoW/pngfixture"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE...",
	Short: "verify that files are valid copies of the fixture",
	Long: `verify that files are valid copies of the fixture.

Each file is reported as one of:
  identical   byte-identical to the fixture generated by this build
  equivalent  same header and pixels, compressed differently
  similar     a different PNG layout that renders the same image`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		w := cmd.OutOrStdout()

		results, err := verifyFiles(cmd.Context(), args)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			if r.err != nil {
				failed++
				_, _ = red.Fprint(w, "✗ ")
				_, _ = fmt.Fprintf(w, "%s: %v\n", r.path, r.err)
				continue
			}
			_, _ = green.Fprint(w, "✓ ")
			_, _ = fmt.Fprintf(w, "%s (%s)\n", r.path, r.match)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed verification", failed, len(results))
		}
		return nil
	},
}

type verifyResult struct {
	path  string
	match pngfixture.Match
	err   error
}

// verifyFiles checks files concurrently and returns results in argument order.
// Per-file failures are recorded in the result, not returned.
func verifyFiles(ctx context.Context, paths []string) ([]*verifyResult, error) {
	results := make([]*verifyResult, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r := &verifyResult{path: p}
			b, err := os.ReadFile(p)
			if err != nil {
				r.err = err
			} else {
				r.match, r.err = pngfixture.Verify(b)
			}
			if r.err != nil {
				l.Info("verification failed", slog.String("path", p), slog.String("error", r.err.Error()))
			} else {
				l.Debug("verified", slog.String("path", p), slog.String("match", string(r.match)))
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
