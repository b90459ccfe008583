package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ziggurat-io/ziggurat/pkg/history"
)

// historyCommand creates the history management command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past renders",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyExportCommand())
	cmd.AddCommand(c.historyClearCommand())
	cmd.AddCommand(c.historyBrowseCommand())

	return cmd
}

// openHistory opens the file-backed history store used by the CLI.
func openHistory() (history.Store, error) {
	return history.NewFileStore("")
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved renders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			summaries, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("History is empty")
				printNextStep("Save a render", "ziggurat generate --save")
				return nil
			}

			fmt.Println(summaryTable(summaries, -1))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum entries to show (0 = all)")
	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the parameters of a saved render",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			printKeyValue("ID", rec.ID)
			printKeyValue("Created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("Levels", strconv.Itoa(rec.Params.Levels))
			printKeyValue("Base size", strconv.Itoa(rec.Params.BaseSize))
			printKeyValue("Color", rec.Params.TileColor)
			printKeyValue("Pattern", string(rec.Params.Pattern))
			printKeyValue("Base type", string(rec.Params.BaseType))
			printKeyValue("Theme", themeName(rec.Dark))
			if rec.Seed != 0 {
				printKeyValue("Seed", strconv.FormatInt(rec.Seed, 10))
			}
			printKeyValue("Size", fmt.Sprintf("%.1f KiB", float64(rec.PNGSize)/1024))
			printNewline()
			printNextStep("Export the image", "ziggurat history export "+rec.ID)
			return nil
		},
	}
}

// historyExportCommand creates the "history export" subcommand.
func (c *CLI) historyExportCommand() *cobra.Command {
	var output string
	var thumb bool

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved render back to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			data := rec.PNG
			if thumb {
				data = rec.Thumb
			}
			if len(data) == 0 {
				printWarning("Record %s has no such artifact", rec.ID)
				return nil
			}

			path := output
			if path == "" {
				path = rec.ID + ".png"
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			printSuccess("Exported %s", rec.ID)
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default <id>.png)")
	cmd.Flags().BoolVar(&thumb, "thumb", false, "export the thumbnail instead of the full image")
	return cmd
}

// historyClearCommand creates the "history clear" subcommand.
func (c *CLI) historyClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			summaries, err := store.List(ctx, 0)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("History is already empty")
				return nil
			}
			if !yes {
				printWarning("This deletes %d saved renders. Re-run with --yes to confirm.", len(summaries))
				return nil
			}

			if err := store.Clear(ctx); err != nil {
				return err
			}
			printSuccess("Deleted %d saved renders", len(summaries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

// historyBrowseCommand creates the interactive "history browse" subcommand.
func (c *CLI) historyBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse saved renders interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			summaries, err := store.List(ctx, 0)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("History is empty")
				printNextStep("Save a render", "ziggurat generate --save")
				return nil
			}

			model := NewHistoryListModel(summaries)
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}

			selected := final.(HistoryListModel).Selected
			if selected == nil {
				return nil
			}
			return c.exportSelected(ctx, store, selected.ID)
		},
	}
}

// exportSelected writes the chosen record to <id>.png.
func (c *CLI) exportSelected(ctx context.Context, store history.Store, id string) error {
	rec, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	path := rec.ID + ".png"
	if err := os.WriteFile(path, rec.PNG, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Exported %s", rec.ID)
	printFile(path)
	return nil
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
