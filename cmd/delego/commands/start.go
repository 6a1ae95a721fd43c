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

type StartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	delegationID string
	actor        string
	progress     int
}

// NewStartCommand returns the start command.
func NewStartCommand(rootCmd *RootCommand, app *kingpin.Application) *StartCommand {
	c := &StartCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("start", "Start working on a delegation, optionally reporting progress.")
	c.Cmd.Arg("delegation-id", "ID of the delegation.").Required().StringVar(&c.delegationID)
	c.Cmd.Flag("actor", "User working on the delegation.").Required().StringVar(&c.actor)
	c.Cmd.Flag("progress", "Progress percentage (0-100).").Default("-1").IntVar(&c.progress)

	return c
}

func (c StartCommand) Name() string { return c.Cmd.FullCommand() }

func (c StartCommand) Run(ctx context.Context) error {
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

	payload := model.TransitionPayload{}
	if c.progress >= 0 {
		payload.Progress = &c.progress
	}

	// Execute transition.
	d, err := svc.Update(ctx, status.UpdateOptions{
		DelegationID: c.delegationID,
		Target:       model.DelegationStatusInProgress,
		Payload:      payload,
		ActorID:      c.actor,
	})
	if err != nil {
		return fmt.Errorf("could not start delegation: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Delegation %s in progress (%d%%)\n", d.ID, d.Progress)

	return nil
}
