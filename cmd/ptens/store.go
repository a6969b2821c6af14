// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ptens/store"
)

func newStoreCmd(a *app) *cobra.Command {
	var dir string
	open := func() (*store.Store, error) {
		return store.Open(dir, store.WithLogger(a.sess.Logger()))
	}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Checkpoint packs in a local database",
	}
	cmd.PersistentFlags().StringVar(&dir, "db", "ptens.db", "database directory")

	put := &cobra.Command{
		Use:   "put NAME PACK.yaml",
		Short: "Build a pack from a file and store it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := loadPack(a.sess, args[1], a.dev)
			if err != nil {
				return err
			}
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Put(cmd.Context(), args[0], x)
		},
	}
	get := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			x, err := st.Get(cmd.Context(), a.sess, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), x)
			return err
		},
	}
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List stored packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			names, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a stored pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(cmd.Context(), args[0])
		},
	}
	cmd.AddCommand(put, get, ls, rm)

	return cmd
}
