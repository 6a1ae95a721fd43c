package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/edusys/delego/internal/model"
)

// TablePrinter prints delegation information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintDelegationList prints delegations in a table format.
func (t *TablePrinter) PrintDelegationList(ds []model.Delegation) error {
	if len(ds) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tTO\tSTATUS\tPROGRESS\tCREATED")

	// Print rows
	for _, d := range ds {
		status := string(d.Status)
		if d.Deleted() {
			status += " (deleted)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\n", d.ID, d.DelegatedToUserID, status, d.Progress, TimeAgo(d.CreatedAt))
	}

	return nil
}

// PrintDelegation prints detailed delegation status.
func (t *TablePrinter) PrintDelegation(d model.Delegation) error {
	fmt.Fprintf(t.writer, "ID:            %s\n", d.ID)
	fmt.Fprintf(t.writer, "Task:          %s\n", d.TaskID)
	fmt.Fprintf(t.writer, "Assignment:    %s\n", d.ParentAssignmentID)
	fmt.Fprintf(t.writer, "Delegated to:  %s\n", d.DelegatedToUserID)
	fmt.Fprintf(t.writer, "Delegated by:  %s\n", d.DelegatedByUserID)
	fmt.Fprintf(t.writer, "Status:        %s\n", d.Status)
	fmt.Fprintf(t.writer, "Progress:      %d%%\n", d.Progress)

	if d.Notes != "" {
		fmt.Fprintf(t.writer, "Notes:         %s\n", d.Notes)
	}

	if d.Deadline != nil {
		fmt.Fprintf(t.writer, "Deadline:      %s\n", FormatTimestamp(*d.Deadline))
	}

	fmt.Fprintf(t.writer, "Created:       %s\n", FormatTimestamp(d.CreatedAt))

	if d.AcceptedAt != nil {
		fmt.Fprintf(t.writer, "Accepted:      %s\n", FormatTimestamp(*d.AcceptedAt))
	}

	if d.StartedAt != nil {
		fmt.Fprintf(t.writer, "Started:       %s\n", FormatTimestamp(*d.StartedAt))
	}

	if d.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:     %s\n", FormatTimestamp(*d.CompletedAt))
	}

	if d.CancelledAt != nil {
		fmt.Fprintf(t.writer, "Cancelled:     %s\n", FormatTimestamp(*d.CancelledAt))
	}

	if d.CompletionNotes != "" {
		fmt.Fprintf(t.writer, "Final notes:   %s\n", d.CompletionNotes)
	}

	if d.DeletedAt != nil {
		fmt.Fprintf(t.writer, "Deleted:       %s\n", FormatTimestamp(*d.DeletedAt))
	}

	return nil
}

// PrintAssignment prints the parent assignment's aggregated view.
func (t *TablePrinter) PrintAssignment(a model.Assignment) error {
	fmt.Fprintf(t.writer, "ID:            %s\n", a.ID)
	fmt.Fprintf(t.writer, "Task:          %s\n", a.TaskID)

	if a.TaskTitle != "" {
		fmt.Fprintf(t.writer, "Title:         %s\n", a.TaskTitle)
	}

	fmt.Fprintf(t.writer, "Owner:         %s\n", a.OwnerUserID)
	fmt.Fprintf(t.writer, "Progress:      %d%%\n", a.Progress)

	if a.HasSubDelegations {
		fmt.Fprintf(t.writer, "Delegations:   %d/%d completed\n", a.CompletedSubDelegations, a.SubDelegationCount)
	} else {
		fmt.Fprintf(t.writer, "Delegations:   none\n")
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
