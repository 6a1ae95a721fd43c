package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/printer"
	"github.com/edusys/delego/internal/storage/sqlite"
)

type AssignmentCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id    string
	task  string
	title string
	owner string
}

// NewAssignmentCreateCommand returns the assignment create command.
func NewAssignmentCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AssignmentCreateCommand {
	c := &AssignmentCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Register a parent assignment so it can receive delegations.")
	c.Cmd.Flag("id", "Assignment ID (generated when omitted).").StringVar(&c.id)
	c.Cmd.Flag("task", "Task ID the assignment belongs to.").Required().StringVar(&c.task)
	c.Cmd.Flag("title", "Task title shown in notifications.").StringVar(&c.title)
	c.Cmd.Flag("owner", "User that owns the assignment.").Required().StringVar(&c.owner)

	return c
}

func (c AssignmentCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c AssignmentCreateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	id := c.id
	if id == "" {
		id = ulid.Make().String()
	}

	a := model.Assignment{
		ID:          id,
		TaskID:      c.task,
		TaskTitle:   c.title,
		OwnerUserID: c.owner,
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}

	if err := repo.CreateAssignment(ctx, a); err != nil {
		return fmt.Errorf("could not create assignment: %w", err)
	}

	// Output success message.
	fmt.Fprintf(c.rootCmd.Stdout, "Assignment created successfully!\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  ID:    %s\n", a.ID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Task:  %s\n", a.TaskID)
	fmt.Fprintf(c.rootCmd.Stdout, "  Owner: %s\n", a.OwnerUserID)

	return nil
}

type AssignmentStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewAssignmentStatusCommand returns the assignment status command.
func NewAssignmentStatusCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AssignmentStatusCommand {
	c := &AssignmentStatusCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("status", "Show the aggregated view of a parent assignment.")
	c.Cmd.Arg("assignment-id", "ID of the assignment.").Required().StringVar(&c.id)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c AssignmentStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c AssignmentStatusCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	a, err := repo.GetAssignment(ctx, c.id)
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

	if err := p.PrintAssignment(*a); err != nil {
		return fmt.Errorf("could not print assignment: %w", err)
	}

	return nil
}
