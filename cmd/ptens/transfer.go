// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ptens/matrix"
	"github.com/katalvlaran/ptens/overlap"
	"github.com/katalvlaran/ptens/ptensors"
)

func newTransferCmd(a *app) *cobra.Command {
	var (
		order      int
		normalized bool
		minOverlap int
	)
	cmd := &cobra.Command{
		Use:   "transfer SRC.yaml DST.yaml",
		Short: "Send a pack to the domains of another file through shared atoms",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := loadPack(a.sess, args[0], a.dev)
			if err != nil {
				return err
			}
			pf, err := readPackFile(args[1])
			if err != nil {
				return err
			}
			dst, err := pf.domains()
			if err != nil {
				return err
			}
			if minOverlap < 1 {
				return fmt.Errorf("min-overlap %d: want >= 1", minOverlap)
			}
			m, err := overlap.Match(x.Atoms(), dst, overlap.WithMinOverlap(minOverlap))
			if err != nil {
				return err
			}
			a.sess.Logger().Debug("matched", "pairs", m.Size())

			var out *matrix.Dense
			switch order {
			case 0:
				r, err := ptensors.Transfer0(cmd.Context(), x, dst, m, normalized)
				if err != nil {
					return err
				}
				out, err = r.ToMatrix()
				if err != nil {
					return err
				}
			case 1:
				r, err := ptensors.Transfer1(cmd.Context(), x, dst, m, normalized)
				if err != nil {
					return err
				}
				out, err = r.ToMatrix()
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("order %d: want 0 or 1", order)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVar(&order, "order", 1, "output order: 0 or 1")
	cmd.Flags().BoolVarP(&normalized, "normalized", "n", false, "average over shared atoms")
	cmd.Flags().IntVar(&minOverlap, "min-overlap", overlap.DefaultMinOverlap, "minimum shared atoms per pair")

	return cmd
}
