package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/edusys/delego/internal/app/remove"
	"github.com/edusys/delego/internal/storage/sqlite"
)

type RemoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	delegationID string
	actor        string
}

// NewRemoveCommand returns the remove command.
func NewRemoveCommand(rootCmd *RootCommand, app *kingpin.Application) *RemoveCommand {
	c := &RemoveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("rm", "Remove a delegation (soft delete, kept for audit).")
	c.Cmd.Arg("delegation-id", "ID of the delegation.").Required().StringVar(&c.delegationID)
	c.Cmd.Flag("actor", "User removing the delegation.").Required().StringVar(&c.actor)

	return c
}

func (c RemoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c RemoveCommand) Run(ctx context.Context) error {
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
	svc, err := remove.NewService(remove.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute remove.
	err = svc.Remove(ctx, remove.RemoveOptions{
		DelegationID: c.delegationID,
		ActorID:      c.actor,
	})
	if err != nil {
		return fmt.Errorf("could not remove delegation: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Delegation %s removed\n", c.delegationID)

	return nil
}
