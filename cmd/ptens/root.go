// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/session"
)

// app carries the state built by the root command for its subcommands.
type app struct {
	configPath string
	logLevel   string
	devName    string
	trace      bool

	cfg      *session.Config
	sess     *session.Session
	dev      device.Device
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "ptens",
		Short:        "Permutation-equivariant tensor packs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "session config file (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.devName, "device", "", "override device: host or accel")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "print operator spans to stderr")

	root.AddCommand(
		newReduceCmd(a),
		newTransferCmd(a),
		newBenchCmd(a),
		newStoreCmd(a),
	)

	return root
}

// open loads the config, applies flag overrides and starts the session.
func (a *app) open(cmd *cobra.Command) error {
	cfg := session.DefaultConfig()
	if a.configPath != "" {
		c, err := session.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = c
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.devName != "" {
		cfg.Device = a.devName
	}
	opts, err := cfg.Options(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if a.trace {
		if a.shutdown, err = setupTracing(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	if a.sess, err = session.New(opts...); err != nil {
		return err
	}
	a.cfg = cfg
	a.dev = a.sess.DefaultDevice()
	a.sess.Logger().Debug("session started", "device", a.dev, "workers", a.sess.Workers())

	return nil
}

func (a *app) close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	if a.sess != nil {
		errs = append(errs, a.sess.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}

	return errors.Join(errs...)
}
