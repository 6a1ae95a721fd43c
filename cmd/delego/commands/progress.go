package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/edusys/delego/internal/app/progress"
	"github.com/edusys/delego/internal/printer"
	"github.com/edusys/delego/internal/storage/sqlite"
)

type ProgressCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	parent string
	format string
}

// NewProgressCommand returns the progress command.
func NewProgressCommand(rootCmd *RootCommand, app *kingpin.Application) *ProgressCommand {
	c := &ProgressCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("progress", "Recompute and show the aggregated progress of an assignment.")
	c.Cmd.Flag("parent", "Parent assignment ID.").Short('p').Required().StringVar(&c.parent)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c ProgressCommand) Name() string { return c.Cmd.FullCommand() }

func (c ProgressCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Create service.
	svc, err := progress.NewService(progress.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Recompute and reload the assignment's view.
	if _, err := svc.CalculateParentProgress(ctx, c.parent); err != nil {
		return fmt.Errorf("could not compute progress: %w", err)
	}

	parent, err := repo.GetAssignment(ctx, c.parent)
	if err != nil {
		return fmt.Errorf("could not get assignment: %w", err)
	}

	// Print output.
	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(c.rootCmd.Stdout)
	}

	if err := p.PrintAssignment(*parent); err != nil {
		return fmt.Errorf("could not print progress: %w", err)
	}

	return nil
}
