package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <widget-id>",
		Short: "Delete a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctrl.DeleteWidget(cmd.Context(), args[0]); err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), ctrl.Instances())
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <widget-id> <position>",
		Short: "Move a widget to a zero-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 0 {
				return fmt.Errorf("invalid position %q", args[1])
			}
			ctrl, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			if err := ctrl.MoveWidget(cmd.Context(), args[0], position); err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), ctrl.Instances())
			return nil
		},
	}
}
