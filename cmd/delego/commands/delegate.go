package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/edusys/delego/internal/app/delegate"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/notify"
	storageio "github.com/edusys/delego/internal/storage/io"
	"github.com/edusys/delego/internal/storage/sqlite"
)

type DelegateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	// Required flags.
	parent string
	actor  string

	// Inline batch flags.
	users    []string
	deadline string
	notes    string

	// File batch flag.
	file string
}

// NewDelegateCommand returns the delegate command.
func NewDelegateCommand(rootCmd *RootCommand, app *kingpin.Application) *DelegateCommand {
	c := &DelegateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("delegate", "Delegate parts of an assignment to other users.")

	// Required flags.
	c.Cmd.Flag("parent", "Parent assignment ID.").Short('p').Required().StringVar(&c.parent)
	c.Cmd.Flag("actor", "User performing the delegation.").Required().StringVar(&c.actor)

	// Inline batch flags.
	c.Cmd.Flag("user", "User to delegate to (repeatable).").Short('u').StringsVar(&c.users)
	c.Cmd.Flag("deadline", "Deadline for the delegations (RFC3339).").StringVar(&c.deadline)
	c.Cmd.Flag("notes", "Notes attached to each delegation.").StringVar(&c.notes)

	// File batch flag.
	c.Cmd.Flag("file", "YAML file with the delegation batch (instead of --user flags).").Short('f').StringVar(&c.file)

	return c
}

func (c DelegateCommand) Name() string { return c.Cmd.FullCommand() }

func (c DelegateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	specs, err := c.specs(ctx)
	if err != nil {
		return err
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
	svc, err := delegate.NewService(delegate.ServiceConfig{
		Repository: repo,
		Notifier:   notify.NewLoggerNotifier(logger),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Execute delegate.
	created, err := svc.Delegate(ctx, delegate.DelegateOptions{
		ParentID: c.parent,
		Specs:    specs,
		ActorID:  c.actor,
	})
	if err != nil {
		return fmt.Errorf("could not delegate: %w", err)
	}

	// Output success message.
	fmt.Fprintf(c.rootCmd.Stdout, "Created %d delegations on assignment %s\n", len(created), c.parent)
	for _, d := range created {
		fmt.Fprintf(c.rootCmd.Stdout, "  %s -> %s\n", d.ID, d.DelegatedToUserID)
	}

	return nil
}

// specs resolves the delegation batch from either a YAML file or the inline
// flags. Mixing both in the same invocation is rejected.
func (c DelegateCommand) specs(ctx context.Context) ([]model.DelegationSpec, error) {
	if c.file != "" {
		if len(c.users) > 0 || c.deadline != "" || c.notes != "" {
			return nil, fmt.Errorf("--file cannot be combined with --user, --deadline or --notes")
		}

		abs, err := filepath.Abs(c.file)
		if err != nil {
			return nil, fmt.Errorf("could not resolve batch file path: %w", err)
		}

		loader := storageio.NewBatchYAMLRepository(os.DirFS(filepath.Dir(abs)))
		specs, err := loader.GetBatch(ctx, filepath.Base(abs))
		if err != nil {
			return nil, fmt.Errorf("could not load batch file: %w", err)
		}
		return specs, nil
	}

	if len(c.users) == 0 {
		return nil, fmt.Errorf("at least one --user or a --file batch is required")
	}

	deadline, err := parseTimeFlag(c.deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline: %w", err)
	}

	specs := make([]model.DelegationSpec, 0, len(c.users))
	for _, u := range c.users {
		specs = append(specs, model.DelegationSpec{
			UserID:   u,
			Deadline: deadline,
			Notes:    c.notes,
		})
	}
	return specs, nil
}
