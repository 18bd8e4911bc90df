package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"cardscan/internal/api"
	"cardscan/internal/schema"

	"github.com/spf13/cobra"
)

// columnsCmd: то же, что экран настроек, из терминала.
var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Inspect and change the column configuration",
}

var columnsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the configured fields in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			printColumns(app.Settings.Current())
			return nil
		})
	},
}

var columnsAddCmd = &cobra.Command{
	Use:   "add <header>",
	Short: "Add a visible field; the key is derived from the header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateColumns(cmd, func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			next, f, err := cur.Add(args[0])
			if err == nil {
				fmt.Printf("added %q (key %s)\n", f.Header, f.Key)
			}
			return next, err
		})
	},
}

var columnsRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a field (stored values are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateColumns(cmd, func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			return cur.Remove(args[0])
		})
	},
}

var columnsRelabelCmd = &cobra.Command{
	Use:   "relabel <key> <header>",
	Short: "Change the display header of a field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateColumns(cmd, func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			return cur.Relabel(args[0], args[1])
		})
	},
}

var columnsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Make a field visible in the table, print and export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateColumns(cmd, func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			return cur.SetVisible(args[0], true)
		})
	},
}

var columnsHideCmd = &cobra.Command{
	Use:   "hide <key>",
	Short: "Hide a field from the table, print and export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateColumns(cmd, func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			return cur.SetVisible(args[0], false)
		})
	},
}

var columnsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			cfg, err := app.ApplyColumns(ctx, func(schema.ColumnConfig) (schema.ColumnConfig, error) {
				return app.Settings.Defaults(), nil
			})
			if err != nil {
				return err
			}
			printColumns(cfg)
			return nil
		})
	},
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *api.App) error) error {
	ctx := cmd.Context()
	app, closeApp, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeApp()
	return fn(ctx, app)
}

func mutateColumns(cmd *cobra.Command, mutate func(schema.ColumnConfig) (schema.ColumnConfig, error)) error {
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		cfg, err := app.ApplyColumns(ctx, mutate)
		if err != nil {
			return err
		}
		printColumns(cfg)
		return nil
	})
}

func printColumns(cfg schema.ColumnConfig) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tHEADER\tVISIBLE\tRESERVED")
	for _, f := range cfg {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", f.Key, f.Header, f.Visible, schema.IsReserved(f.Key))
	}
	_ = tw.Flush()
}
