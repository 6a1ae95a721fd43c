package printer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusys/delego/internal/model"
	"github.com/edusys/delego/internal/printer"
)

func delegationFixture() model.Delegation {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	completedAt := time.Date(2026, 2, 2, 16, 30, 0, 0, time.UTC)
	return model.Delegation{
		ID:                 "01234567890ABCDEFGHIJKLMNOP",
		TaskID:             "task-1",
		ParentAssignmentID: "a-1",
		DelegatedToUserID:  "user-1",
		DelegatedByUserID:  "user-owner",
		Status:             model.DelegationStatusCompleted,
		Progress:           100,
		Notes:              "sections 1-3",
		CompletionNotes:    "all reviewed",
		CreatedAt:          createdAt,
		CompletedAt:        &completedAt,
	}
}

func TestTablePrinterPrintDelegation(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintDelegation(delegationFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Delegated to:  user-1")
	assert.Contains(t, out, "Status:        completed")
	assert.Contains(t, out, "Progress:      100%")
	assert.Contains(t, out, "Completed:     2026-02-02 16:30:00 UTC")
	assert.Contains(t, out, "Final notes:   all reviewed")
}

func TestTablePrinterPrintAssignment(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintAssignment(model.Assignment{
		ID:                      "a-1",
		TaskID:                  "task-1",
		TaskTitle:               "Quarterly report",
		OwnerUserID:             "user-owner",
		Progress:                70,
		HasSubDelegations:       true,
		SubDelegationCount:      2,
		CompletedSubDelegations: 1,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Progress:      70%")
	assert.Contains(t, out, "Delegations:   1/2 completed")
}

func TestJSONPrinterPrintDelegation(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintDelegation(delegationFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"status": "completed"`)
	assert.Contains(t, out, `"delegated_to_user_id": "user-1"`)
	assert.Contains(t, out, `"completion_notes": "all reviewed"`)
	assert.NotContains(t, out, `"cancelled_at"`)
}

func TestJSONPrinterPrintDelegationList(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintDelegationList([]model.Delegation{delegationFixture()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"id": "01234567890ABCDEFGHIJKLMNOP"`)
	assert.Contains(t, out, `"progress": 100`)
}

func TestTimeAgo(t *testing.T) {
	now := time.Now().UTC()

	tests := map[string]struct {
		t   time.Time
		exp string
	}{
		"A timestamp seconds back should render in seconds.": {
			t:   now.Add(-30 * time.Second),
			exp: "30 seconds ago (UTC)",
		},

		"A single unit should not be pluralized.": {
			t:   now.Add(-1 * time.Minute),
			exp: "1 minute ago (UTC)",
		},

		"A timestamp hours back should render in hours.": {
			t:   now.Add(-3 * time.Hour),
			exp: "3 hours ago (UTC)",
		},

		"A timestamp days back should render in days.": {
			t:   now.Add(-48 * time.Hour),
			exp: "2 days ago (UTC)",
		},

		"A future timestamp should be flagged as such.": {
			t:   now.Add(time.Hour),
			exp: "in the future (UTC)",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, printer.TimeAgo(test.t))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 2, 2, 18, 30, 0, 0, time.FixedZone("CET", 2*3600))
	assert.Equal(t, "2026-02-02 16:30:00 UTC", printer.FormatTimestamp(ts))
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}
