package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

func newReconcileCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "raises the shared activity totals to the highest per-user counters",
		Long: "Profiles written before the shared totals existed carry their own news, event and\n" +
			"change counters. reconcile lifts each shared total to the highest of those so that\n" +
			"nothing counted earlier is lost. Totals are never lowered.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configFile, func(ctx context.Context, a *app) error {
				raised, err := a.activity.Reconcile(ctx)
				if err != nil {
					return err
				}
				if len(raised) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "totals already up to date")
					return nil
				}
				fields := make([]string, 0, len(raised))
				for f := range raised {
					fields = append(fields, f)
				}
				sort.Strings(fields)
				for _, f := range fields {
					fmt.Fprintf(cmd.OutOrStdout(), "%s -> %d\n", f, raised[f])
				}
				return nil
			})
		},
	}
}

func newSetRoleCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <uid> <role>",
		Short: "sets a user's role (admin, moderator or worker)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *configFile, func(ctx context.Context, a *app) error {
				if err := a.team.UpdateRole(ctx, args[0], models.Role(args[1])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func withApp(ctx context.Context, configFile string, fn func(ctx context.Context, a *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
