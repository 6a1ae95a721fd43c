package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/edusys/delego/internal/model"
)

// JSONPrinter prints delegation information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// listItem represents a delegation in the list output (subset of fields).
type listItem struct {
	ID                string    `json:"id"`
	DelegatedToUserID string    `json:"delegated_to_user_id"`
	Status            string    `json:"status"`
	Progress          int       `json:"progress"`
	CreatedAt         time.Time `json:"created_at"`
	Deleted           bool      `json:"deleted,omitempty"`
}

// delegationOutput represents the full delegation output.
type delegationOutput struct {
	ID                 string                 `json:"id"`
	TaskID             string                 `json:"task_id"`
	ParentAssignmentID string                 `json:"parent_assignment_id"`
	DelegatedToUserID  string                 `json:"delegated_to_user_id"`
	DelegatedByUserID  string                 `json:"delegated_by_user_id"`
	Status             string                 `json:"status"`
	Progress           int                    `json:"progress"`
	Notes              string                 `json:"notes,omitempty"`
	Deadline           *time.Time             `json:"deadline,omitempty"`
	CompletionNotes    string                 `json:"completion_notes,omitempty"`
	CompletionData     map[string]interface{} `json:"completion_data,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	AcceptedAt         *time.Time             `json:"accepted_at,omitempty"`
	StartedAt          *time.Time             `json:"started_at,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	DeletedAt          *time.Time             `json:"deleted_at,omitempty"`
}

// assignmentOutput represents the parent assignment's aggregated view.
type assignmentOutput struct {
	ID                      string `json:"id"`
	TaskID                  string `json:"task_id"`
	TaskTitle               string `json:"task_title,omitempty"`
	OwnerUserID             string `json:"owner_user_id"`
	Progress                int    `json:"progress"`
	HasSubDelegations       bool   `json:"has_sub_delegations"`
	SubDelegationCount      int    `json:"sub_delegation_count"`
	CompletedSubDelegations int    `json:"completed_sub_delegations"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// PrintDelegationList prints delegations in JSON format with a subset of fields.
func (j *JSONPrinter) PrintDelegationList(ds []model.Delegation) error {
	items := make([]listItem, len(ds))
	for i, d := range ds {
		items[i] = listItem{
			ID:                d.ID,
			DelegatedToUserID: d.DelegatedToUserID,
			Status:            string(d.Status),
			Progress:          d.Progress,
			CreatedAt:         d.CreatedAt.UTC(),
			Deleted:           d.Deleted(),
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintDelegation prints a full delegation in JSON format.
func (j *JSONPrinter) PrintDelegation(d model.Delegation) error {
	output := delegationOutput{
		ID:                 d.ID,
		TaskID:             d.TaskID,
		ParentAssignmentID: d.ParentAssignmentID,
		DelegatedToUserID:  d.DelegatedToUserID,
		DelegatedByUserID:  d.DelegatedByUserID,
		Status:             string(d.Status),
		Progress:           d.Progress,
		Notes:              d.Notes,
		Deadline:           utcPtr(d.Deadline),
		CompletionNotes:    d.CompletionNotes,
		CompletionData:     d.CompletionData,
		CreatedAt:          d.CreatedAt.UTC(),
		AcceptedAt:         utcPtr(d.AcceptedAt),
		StartedAt:          utcPtr(d.StartedAt),
		CompletedAt:        utcPtr(d.CompletedAt),
		CancelledAt:        utcPtr(d.CancelledAt),
		DeletedAt:          utcPtr(d.DeletedAt),
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintAssignment prints the parent assignment's aggregated view in JSON format.
func (j *JSONPrinter) PrintAssignment(a model.Assignment) error {
	output := assignmentOutput{
		ID:                      a.ID,
		TaskID:                  a.TaskID,
		TaskTitle:               a.TaskTitle,
		OwnerUserID:             a.OwnerUserID,
		Progress:                a.Progress,
		HasSubDelegations:       a.HasSubDelegations,
		SubDelegationCount:      a.SubDelegationCount,
		CompletedSubDelegations: a.CompletedSubDelegations,
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
