package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/edusys/delego/internal/app/status"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/notify"
	"github.com/edusys/delego/internal/storage/sqlite"
)

type CancelCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	delegationID string
	actor        string
}

// NewCancelCommand returns the cancel command.
func NewCancelCommand(rootCmd *RootCommand, app *kingpin.Application) *CancelCommand {
	c := &CancelCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("cancel", "Cancel a delegation.")
	c.Cmd.Arg("delegation-id", "ID of the delegation.").Required().StringVar(&c.delegationID)
	c.Cmd.Flag("actor", "User cancelling the delegation.").Required().StringVar(&c.actor)

	return c
}

func (c CancelCommand) Name() string { return c.Cmd.FullCommand() }

func (c CancelCommand) Run(ctx context.Context) error {
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
	svc, err := status.NewService(status.ServiceConfig{
		Repository: repo,
		Notifier:   notify.NewLoggerNotifier(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute transition.
	d, err := svc.Update(ctx, status.UpdateOptions{
		DelegationID: c.delegationID,
		Target:       model.DelegationStatusCancelled,
		ActorID:      c.actor,
	})
	if err != nil {
		return fmt.Errorf("could not cancel delegation: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Delegation %s cancelled (progress kept at %d%%)\n", d.ID, d.Progress)

	return nil
}
