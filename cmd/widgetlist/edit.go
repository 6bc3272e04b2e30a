package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-widgetlist/pkg/controller"
	"github.com/goliatone/go-widgetlist/pkg/form"
)

// formFlags drive a form session without prompts when --set is given.
type formFlags struct {
	class string
	set   []string
	yes   bool
}

func (f *formFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.set, "set", nil, "set a field as key=value; repeat a key for multi selects")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "save without asking for confirmation")
}

func (f *formFlags) interactive() bool { return len(f.set) == 0 }

func newAddCmd(a *app) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a widget at the end of the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := a.loaded(ctx)
			if err != nil {
				return err
			}
			if err := ctrl.OpenNewForm(ctx); err != nil {
				return err
			}
			session := ctrl.Session()
			if flags.class != "" {
				if err := session.SelectClass(flags.class); err != nil {
					return err
				}
			}
			return a.complete(ctx, cmd, ctrl, session, flags)
		},
	}
	cmd.Flags().StringVar(&flags.class, "class", "", "widget class to create")
	flags.bind(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "edit <widget-id>",
		Short: "Edit the configuration of a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := a.loaded(ctx)
			if err != nil {
				return err
			}
			if err := ctrl.OpenEditForm(ctx, args[0]); err != nil {
				return err
			}
			return a.complete(ctx, cmd, ctrl, ctrl.Session(), flags)
		},
	}
	flags.bind(cmd)
	return cmd
}

// complete fills the session from flags or prompts, confirms and submits.
func (a *app) complete(ctx context.Context, cmd *cobra.Command, ctrl *controller.Controller, session *form.Session, flags formFlags) error {
	if session == nil {
		return controller.ErrSchemaPending
	}
	prompts := a.prompts(cmd.OutOrStdout())

	if flags.interactive() {
		if err := prompts.Fill(ctx, session); err != nil {
			ctrl.CloseForm()
			return err
		}
	} else if err := applySets(session, flags.set); err != nil {
		ctrl.CloseForm()
		return err
	}

	if !flags.yes {
		ok, err := prompts.Confirm(ctx, "Save widget?", true)
		if err != nil {
			ctrl.CloseForm()
			return err
		}
		if !ok {
			ctrl.CloseForm()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Discarded")
			return nil
		}
	}
	if err := ctrl.Submit(ctx); err != nil {
		return err
	}
	printList(cmd.OutOrStdout(), ctrl.Instances())
	return nil
}

// applySets writes key=value pairs into session. Repeated keys accumulate
// for multi selects.
func applySets(session *form.Session, sets []string) error {
	selects := make(map[string][]any)
	var order []string
	for _, raw := range sets {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q; expected key=value", raw)
		}
		input, found := session.Input(key)
		if !found {
			return fmt.Errorf("%w: %q", form.ErrUnknownField, key)
		}
		switch input.(type) {
		case *form.SelectField:
			if _, seen := selects[key]; !seen {
				order = append(order, key)
			}
			if value != "" {
				selects[key] = append(selects[key], value)
			} else if selects[key] == nil {
				selects[key] = []any{}
			}
		default:
			if err := session.SetText(key, value); err != nil {
				return err
			}
		}
	}
	for _, key := range order {
		if err := session.Select(key, selects[key]...); err != nil {
			return err
		}
	}
	return nil
}
