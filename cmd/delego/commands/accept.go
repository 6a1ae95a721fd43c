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

type AcceptCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	delegationID string
	actor        string
}

// NewAcceptCommand returns the accept command.
func NewAcceptCommand(rootCmd *RootCommand, app *kingpin.Application) *AcceptCommand {
	c := &AcceptCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("accept", "Accept a delegation.")
	c.Cmd.Arg("delegation-id", "ID of the delegation.").Required().StringVar(&c.delegationID)
	c.Cmd.Flag("actor", "User accepting the delegation.").Required().StringVar(&c.actor)

	return c
}

func (c AcceptCommand) Name() string { return c.Cmd.FullCommand() }

func (c AcceptCommand) Run(ctx context.Context) error {
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
		Target:       model.DelegationStatusAccepted,
		ActorID:      c.actor,
	})
	if err != nil {
		return fmt.Errorf("could not accept delegation: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Delegation %s accepted\n", d.ID)

	return nil
}
