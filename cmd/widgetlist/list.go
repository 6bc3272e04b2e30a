package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the widgets of a list in position order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), ctrl.Instances())
			return nil
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var editMode bool
	var output string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a list through the default slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.loaded(cmd.Context())
			if err != nil {
				return err
			}
			if editMode {
				ctrl.ToggleEditMode()
			}
			html, err := ctrl.Render(cmd.Context())
			if err != nil {
				return err
			}
			if output != "" {
				if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "List written to %s\n", output)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(html))
			return nil
		},
	}
	cmd.Flags().BoolVar(&editMode, "edit-mode", false, "render the edit controls")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
