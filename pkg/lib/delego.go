package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/notify"
	"github.com/edusys/delego/internal/notify/bus"
	"github.com/edusys/delego/internal/storage"
	"github.com/edusys/delego/internal/storage/sqlite"
)

const (
	defaultDataDir = ".delego"
	defaultDBFile  = "delego.db"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.delego/delego.db for storage.
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.delego/delego.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = filepath.Join(home, defaultDataDir, defaultDBFile)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for managing delegations programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo    storage.Repository
	logger  log.Logger
	events  *bus.Bus
	closeFn func() error
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		repo:    repo,
		logger:  cfg.Logger,
		events:  bus.New(),
		closeFn: repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// Event is a notification event emitted by the engine. See the notify
// vocabulary for the event types and their payloads.
type Event = notify.Event

// Events subscribes to the engine's notification events and returns the
// subscriber channel with its unsubscribe function.
//
// Events are delivered only after their storage transaction committed. A
// subscriber whose buffer is full misses events instead of blocking the
// engine, size the buffer for your consumer.
func (c *Client) Events(bufSize int) (<-chan Event, func()) {
	id, ch := c.events.Subscribe(bufSize)
	return ch, func() { c.events.Unsubscribe(id) }
}
