// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/go-highway/fmath/hwy/contrib/fmath"
	"github.com/go-highway/fmath/internal/regalloc"
)

// app holds the state shared by all subcommands.
type app struct {
	quiet   bool
	emulate bool
	regime  string
	unroll  int
	asJSON  bool

	log     *zap.Logger
	printer *message.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{printer: message.NewPrinter(language.English)}
	root := &cobra.Command{
		Use:           "fmathcheck",
		Short:         "Inspect and validate the fmath exp/log kernels",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	a.addFlags(root.PersistentFlags())

	root.AddCommand(
		a.newInfoCmd(),
		a.newPoolCmd(),
		a.newAccuracyCmd(),
		a.newBenchCmd(),
	)
	return root
}

func (a *app) addFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&a.quiet, "quiet", "q", false, "disable logging")
	fs.BoolVar(&a.emulate, "emulate", false, "run the portable kernels if the CPU lacks AVX-512F")
	fs.StringVar(&a.regime, "regime", "", "calling-convention regime for frame planning (sysv or win64); default is the host's")
	fs.IntVar(&a.unroll, "unroll", fmath.DefaultUnroll, "16-lane pipelines per exp loop iteration")
	fs.BoolVar(&a.asJSON, "json", false, "write machine-readable JSON instead of text")
}

func (a *app) setupLogger() error {
	if a.quiet {
		a.log = zap.NewNop()
		return nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.log = log
	return nil
}

// options turns the persistent flags into fmath options.
func (a *app) options() ([]fmath.Option, error) {
	opts := []fmath.Option{fmath.WithUnroll(a.unroll)}
	if a.emulate {
		opts = append(opts, fmath.WithEmulation())
	}
	if a.regime != "" {
		r, err := regalloc.ParseRegime(a.regime)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fmath.WithRegime(r))
	}
	return opts, nil
}

// image builds a fresh image from the flags. The caller closes it.
func (a *app) image() (*fmath.Image, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	im, err := fmath.New(opts...)
	if err != nil {
		return nil, err
	}
	a.log.Debug("image built",
		zap.Bool("native", im.Native()),
		zap.Stringer("regime", im.Regime()),
		zap.Int("unroll", a.unroll))
	return im, nil
}

// closeImage releases im, logging instead of failing the command.
func (a *app) closeImage(im *fmath.Image) {
	if err := im.Close(); err != nil {
		a.log.Warn("closing image", zap.Error(err))
	}
}
