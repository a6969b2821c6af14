// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ptens/matrix"
	"github.com/katalvlaran/ptens/ptensors"
)

func newReduceCmd(a *app) *cobra.Command {
	var (
		order      int
		normalized bool
	)
	cmd := &cobra.Command{
		Use:   "reduce PACK.yaml",
		Short: "Apply the order-0 or order-1 linmaps to a pack and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := loadPack(a.sess, args[0], a.dev)
			if err != nil {
				return err
			}
			var m *matrix.Dense
			switch order {
			case 0:
				r, err := ptensors.Linmaps0(cmd.Context(), x, normalized)
				if err != nil {
					return err
				}
				m, err = r.ToMatrix()
				if err != nil {
					return err
				}
			case 1:
				r, err := ptensors.Linmaps1(cmd.Context(), x, normalized)
				if err != nil {
					return err
				}
				m, err = r.ToMatrix()
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("order %d: want 0 or 1", order)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), m)
			return err
		},
	}
	cmd.Flags().IntVar(&order, "order", 0, "output order: 0 or 1")
	cmd.Flags().BoolVarP(&normalized, "normalized", "n", false, "average instead of sum")

	return cmd
}
