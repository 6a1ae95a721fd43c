package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/edusys/delego/internal/log"
	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/storage"
	"github.com/edusys/delego/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	// _txlock=immediate makes every write transaction take the write lock up
	// front, serializing concurrent parent updates instead of failing halfway.
	dsn := fmt.Sprintf("%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// CreateAssignment registers a parent assignment.
func (r *Repository) CreateAssignment(ctx context.Context, a model.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}

	query := `
		INSERT INTO assignments (
			id, task_id, task_title, owner_user_id,
			progress, has_sub_delegations, sub_delegation_count, completed_sub_delegations
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.TaskID, a.TaskTitle, a.OwnerUserID,
		a.Progress, a.HasSubDelegations, a.SubDelegationCount, a.CompletedSubDelegations,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("assignment %s: %w", a.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert assignment: %w", mapSQLiteErr(err))
	}

	r.logger.Debugf("Created assignment in repository: %s", a.ID)
	return nil
}

// GetAssignment retrieves an assignment by ID.
func (r *Repository) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	return getAssignment(ctx, r.db, id)
}

// GetDelegation retrieves a delegation by ID, soft-deleted ones included.
func (r *Repository) GetDelegation(ctx context.Context, id string) (*model.Delegation, error) {
	row := r.db.QueryRowContext(ctx, delegationSelect+` WHERE id = ?`, id)
	d, err := scanDelegation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delegation %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query delegation: %w", mapSQLiteErr(err))
	}
	return d, nil
}

// ListDelegationsByParent returns the delegations of a parent assignment.
func (r *Repository) ListDelegationsByParent(ctx context.Context, parentID string, includeDeleted bool) ([]model.Delegation, error) {
	return listDelegations(ctx, r.db, parentID, includeDeleted)
}

// UpdateParent runs fn inside a write transaction. SQLite's immediate
// transactions hold the database write lock, which covers the per-parent
// serialization the engine needs.
func (r *Repository) UpdateParent(ctx context.Context, parentID string, fn storage.UpdateFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", mapSQLiteErr(err))
	}
	defer tx.Rollback()

	parent, err := getAssignment(ctx, tx, parentID)
	if err != nil {
		return err
	}

	if err := fn(ctx, &txn{tx: tx, parent: parent}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", mapSQLiteErr(err))
	}

	return nil
}

// querier lets the same queries run on *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txn implements storage.Tx over a SQLite transaction.
type txn struct {
	tx     *sql.Tx
	parent *model.Assignment
}

func (t *txn) Assignment() *model.Assignment {
	aCopy := *t.parent
	return &aCopy
}

func (t *txn) SaveAssignment(ctx context.Context, a model.Assignment) error {
	if a.ID != t.parent.ID {
		return fmt.Errorf("assignment %s is not the locked parent: %w", a.ID, model.ErrNotValid)
	}

	query := `
		UPDATE assignments SET
			task_id = ?, task_title = ?, owner_user_id = ?,
			progress = ?, has_sub_delegations = ?, sub_delegation_count = ?, completed_sub_delegations = ?
		WHERE id = ?
	`
	_, err := t.tx.ExecContext(ctx, query,
		a.TaskID, a.TaskTitle, a.OwnerUserID,
		a.Progress, a.HasSubDelegations, a.SubDelegationCount, a.CompletedSubDelegations,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update assignment: %w", mapSQLiteErr(err))
	}

	t.parent = &a
	return nil
}

func (t *txn) CreateDelegation(ctx context.Context, d model.Delegation) error {
	if d.ParentAssignmentID != t.parent.ID {
		return fmt.Errorf("delegation parent %s is not the locked parent: %w", d.ParentAssignmentID, model.ErrNotValid)
	}

	completionData, err := marshalCompletionData(d.CompletionData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO delegations (
			id, task_id, parent_assignment_id, delegated_to_user_id, delegated_by_user_id,
			status, progress, notes, deadline, completion_notes, completion_data,
			accepted_at, started_at, completed_at, cancelled_at, created_at, deleted_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = t.tx.ExecContext(ctx, query,
		d.ID, d.TaskID, d.ParentAssignmentID, d.DelegatedToUserID, d.DelegatedByUserID,
		d.Status, d.Progress, d.Notes, unixPtr(d.Deadline), d.CompletionNotes, completionData,
		unixPtr(d.AcceptedAt), unixPtr(d.StartedAt), unixPtr(d.CompletedAt), unixPtr(d.CancelledAt),
		d.CreatedAt.Unix(), unixPtr(d.DeletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("delegation %s: %w", d.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert delegation: %w", mapSQLiteErr(err))
	}

	return nil
}

func (t *txn) GetDelegation(ctx context.Context, id string) (*model.Delegation, error) {
	row := t.tx.QueryRowContext(ctx, delegationSelect+` WHERE id = ? AND parent_assignment_id = ?`, id, t.parent.ID)
	d, err := scanDelegation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delegation %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query delegation: %w", mapSQLiteErr(err))
	}
	return d, nil
}

func (t *txn) ListDelegations(ctx context.Context, includeDeleted bool) ([]model.Delegation, error) {
	return listDelegations(ctx, t.tx, t.parent.ID, includeDeleted)
}

func (t *txn) SaveDelegation(ctx context.Context, d model.Delegation) error {
	completionData, err := marshalCompletionData(d.CompletionData)
	if err != nil {
		return err
	}

	query := `
		UPDATE delegations SET
			status = ?, progress = ?, notes = ?, deadline = ?,
			completion_notes = ?, completion_data = ?,
			accepted_at = ?, started_at = ?, completed_at = ?, cancelled_at = ?, deleted_at = ?
		WHERE id = ? AND parent_assignment_id = ?
	`
	result, err := t.tx.ExecContext(ctx, query,
		d.Status, d.Progress, d.Notes, unixPtr(d.Deadline),
		d.CompletionNotes, completionData,
		unixPtr(d.AcceptedAt), unixPtr(d.StartedAt), unixPtr(d.CompletedAt), unixPtr(d.CancelledAt), unixPtr(d.DeletedAt),
		d.ID, t.parent.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update delegation: %w", mapSQLiteErr(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delegation %s: %w", d.ID, model.ErrNotFound)
	}

	return nil
}

func (t *txn) SoftDeleteDelegation(ctx context.Context, id string) error {
	// Already deleted delegations stay as they are, repeated deletes are a
	// no-op.
	if _, err := t.GetDelegation(ctx, id); err != nil {
		return err
	}

	query := `UPDATE delegations SET deleted_at = ? WHERE id = ? AND parent_assignment_id = ? AND deleted_at IS NULL`
	_, err := t.tx.ExecContext(ctx, query, time.Now().UTC().Unix(), id, t.parent.ID)
	if err != nil {
		return fmt.Errorf("could not soft delete delegation: %w", mapSQLiteErr(err))
	}

	return nil
}

func getAssignment(ctx context.Context, q querier, id string) (*model.Assignment, error) {
	query := `
		SELECT id, task_id, task_title, owner_user_id,
			progress, has_sub_delegations, sub_delegation_count, completed_sub_delegations
		FROM assignments
		WHERE id = ?
	`

	var a model.Assignment
	err := q.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.TaskID, &a.TaskTitle, &a.OwnerUserID,
		&a.Progress, &a.HasSubDelegations, &a.SubDelegationCount, &a.CompletedSubDelegations,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query assignment: %w", mapSQLiteErr(err))
	}

	return &a, nil
}

const delegationSelect = `
	SELECT id, task_id, parent_assignment_id, delegated_to_user_id, delegated_by_user_id,
		status, progress, notes, deadline, completion_notes, completion_data,
		accepted_at, started_at, completed_at, cancelled_at, created_at, deleted_at
	FROM delegations
`

func listDelegations(ctx context.Context, q querier, parentID string, includeDeleted bool) ([]model.Delegation, error) {
	query := delegationSelect + ` WHERE parent_assignment_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("could not query delegations: %w", mapSQLiteErr(err))
	}
	defer rows.Close()

	ds := []model.Delegation{}
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan delegation: %w", err)
		}
		ds = append(ds, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate delegations: %w", mapSQLiteErr(err))
	}

	return ds, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDelegation(row rowScanner) (*model.Delegation, error) {
	var d model.Delegation
	var createdAt int64
	var deadline, acceptedAt, startedAt, completedAt, cancelledAt, deletedAt sql.NullInt64
	var completionData sql.NullString

	err := row.Scan(
		&d.ID, &d.TaskID, &d.ParentAssignmentID, &d.DelegatedToUserID, &d.DelegatedByUserID,
		&d.Status, &d.Progress, &d.Notes, &deadline, &d.CompletionNotes, &completionData,
		&acceptedAt, &startedAt, &completedAt, &cancelledAt, &createdAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	d.CreatedAt = time.Unix(createdAt, 0).UTC()
	d.Deadline = timePtr(deadline)
	d.AcceptedAt = timePtr(acceptedAt)
	d.StartedAt = timePtr(startedAt)
	d.CompletedAt = timePtr(completedAt)
	d.CancelledAt = timePtr(cancelledAt)
	d.DeletedAt = timePtr(deletedAt)

	if completionData.Valid && completionData.String != "" {
		if err := json.Unmarshal([]byte(completionData.String), &d.CompletionData); err != nil {
			return nil, fmt.Errorf("could not unmarshal completion data: %w", err)
		}
	}

	return &d, nil
}

func marshalCompletionData(data map[string]interface{}) (*string, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("could not marshal completion data: %w", err)
	}
	s := string(raw)
	return &s, nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

// mapSQLiteErr translates lock contention errors into the model conflict
// error so callers can retry.
func mapSQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") {
		return fmt.Errorf("%s: %w", msg, model.ErrConflict)
	}
	return err
}
