package bot

import (
	"fmt"
	"strings"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
)

// taskCard renders a task for display in chat.
func taskCard(t *models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Task:* %s\n", t.Description)
	fmt.Fprintf(&b, "*ID:* %d\n", t.ID)
	fmt.Fprintf(&b, "*Urgency:* %s\n", t.Urgency)
	fmt.Fprintf(&b, "*Due:* %s\n", formatDue(t.DueDate))
	fmt.Fprintf(&b, "*Status:* %s", titleCase(t.Status))
	return b.String()
}

// reviewPreview renders the assignment draft for the review step.
func reviewPreview(s Session) string {
	var b strings.Builder
	b.WriteString("*Task Preview*\n")
	fmt.Fprintf(&b, "Doer: %s\n", s.DoerName)
	fmt.Fprintf(&b, "Department: %s\n", s.Department)
	fmt.Fprintf(&b, "Task: %s\n", s.Description)
	fmt.Fprintf(&b, "Urgency: %s\n", s.Urgency)
	fmt.Fprintf(&b, "Due: %s", formatDue(s.DueDate))
	return b.String()
}

// taskList renders up to a page of tasks as a compact list.
func taskList(header string, tasks []models.Task) string {
	var b strings.Builder
	b.WriteString(header)
	for _, t := range tasks {
		fmt.Fprintf(&b, "\n\n#%d %s\nDoer: %s | Due: %s", t.ID, t.Description, t.Doer, formatDue(t.DueDate))
	}
	return b.String()
}

// titleCase uppercases the first letter of a status word for display.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
