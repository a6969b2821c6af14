// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/overlap"
	"github.com/katalvlaran/ptens/ptensors"
)

type benchParams struct {
	items       int
	maxK        int
	ground      int
	channels    int
	iters       int
	seed        uint64
	metricsAddr string
	hold        time.Duration
}

func newBenchCmd(a *app) *cobra.Command {
	p := benchParams{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time linmaps and transfer on random packs on both devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, a, p)
		},
	}
	f := cmd.Flags()
	f.IntVar(&p.items, "items", 2000, "domains per pack")
	f.IntVar(&p.maxK, "max-k", 8, "largest domain size")
	f.IntVar(&p.ground, "ground", 1000, "ground set size")
	f.IntVar(&p.channels, "channels", 16, "channels")
	f.IntVar(&p.iters, "iters", 10, "iterations per operator")
	f.Uint64Var(&p.seed, "seed", 1, "domain generator seed")
	f.StringVar(&p.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9464")
	f.DurationVar(&p.hold, "hold", 0, "keep serving metrics this long after the run")

	return cmd
}

func randomDomains(rng *rand.Rand, n, maxK, ground int) (*atoms.Pack, error) {
	items := make([][]int, n)
	for i := range items {
		items[i] = rng.Perm(ground)[:rng.IntN(maxK+1)]
	}
	return atoms.FromSlices(items)
}

func runBench(cmd *cobra.Command, a *app, p benchParams) error {
	if p.items < 1 || p.maxK < 0 || p.ground < p.maxK || p.channels < 1 || p.iters < 1 {
		return fmt.Errorf("bench: need items, channels, iters >= 1 and 0 <= max-k <= ground")
	}
	ctx := cmd.Context()

	if p.metricsAddr != "" {
		handler, shutdown, err := setupMetrics()
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
		ln, err := net.Listen("tcp", p.metricsAddr)
		if err != nil {
			return err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.sess.Logger().Warn("metrics server stopped", "err", err)
			}
		}()
		defer srv.Close()
		fmt.Fprintf(cmd.ErrOrStderr(), "metrics on http://%s/metrics\n", ln.Addr())
	}

	rng := rand.New(rand.NewPCG(p.seed, p.seed^0x9e3779b97f4a7c15))
	src, err := randomDomains(rng, p.items, p.maxK, p.ground)
	if err != nil {
		return err
	}
	dst, err := randomDomains(rng, p.items, p.maxK, p.ground)
	if err != nil {
		return err
	}
	m, err := overlap.Match(src, dst)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "op\tdevice\tper-iter")
	for _, dev := range []device.Device{device.Host, device.Accel} {
		x, err := ptensors.Gaussian(a.sess, src, p.channels, 1, dev)
		if err != nil {
			return err
		}
		ops := []struct {
			name string
			run  func() error
		}{
			{"linmaps1", func() error { _, err := ptensors.Linmaps1(ctx, x, true); return err }},
			{"transfer1", func() error { _, err := ptensors.Transfer1(ctx, x, dst, m, true); return err }},
		}
		for _, op := range ops {
			start := time.Now()
			for i := 0; i < p.iters; i++ {
				if err := op.run(); err != nil {
					return err
				}
			}
			if err := a.sess.Sync(); err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", op.name, dev, time.Since(start)/time.Duration(p.iters))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if p.metricsAddr != "" && p.hold > 0 {
		select {
		case <-time.After(p.hold):
		case <-ctx.Done():
		}
	}

	return nil
}
