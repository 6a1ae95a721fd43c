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

type CompleteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	delegationID string
	actor        string
	notes        string
	data         string
}

// NewCompleteCommand returns the complete command.
func NewCompleteCommand(rootCmd *RootCommand, app *kingpin.Application) *CompleteCommand {
	c := &CompleteCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("complete", "Complete a delegation.")
	c.Cmd.Arg("delegation-id", "ID of the delegation.").Required().StringVar(&c.delegationID)
	c.Cmd.Flag("actor", "User completing the delegation.").Required().StringVar(&c.actor)
	c.Cmd.Flag("notes", "Completion notes.").StringVar(&c.notes)
	c.Cmd.Flag("data", "Completion data as a JSON object.").StringVar(&c.data)

	return c
}

func (c CompleteCommand) Name() string { return c.Cmd.FullCommand() }

func (c CompleteCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	data, err := parseDataFlag(c.data)
	if err != nil {
		return fmt.Errorf("invalid completion data: %w", err)
	}

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
		Target:       model.DelegationStatusCompleted,
		Payload: model.TransitionPayload{
			CompletionNotes: c.notes,
			CompletionData:  data,
		},
		ActorID: c.actor,
	})
	if err != nil {
		return fmt.Errorf("could not complete delegation: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Delegation %s completed\n", d.ID)

	return nil
}
