package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/store"
)

// SendDueReminders pings each doer whose scheduled open tasks are due today
// or overdue. Doers without a bound channel are skipped. Returns the number
// of reminders sent.
func (e *Engine) SendDueReminders(ctx context.Context) (int, error) {
	now := timeNow().UTC()
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)

	tasks, err := e.tasks.List(store.TaskFilters{
		Statuses:      []string{models.TaskPending, models.TaskRevised},
		DueOnOrBefore: &endOfToday,
		OrderBy:       "due_date ASC",
	})
	if err != nil {
		return 0, fmt.Errorf("bot: due reminders: %w", err)
	}

	sent := 0
	for i := range tasks {
		t := &tasks[i]
		if t.DueDate == nil {
			continue
		}
		doer, err := e.doers.FindByName(t.Doer)
		if err != nil || doer.ChannelID == "" {
			continue
		}

		label := "due today"
		if t.DueDate.Before(now.Truncate(24 * time.Hour)) {
			label = "overdue since " + t.DueDate.Format(dueDateLayout)
		}
		e.notifier.Notify(ctx, notifyReminder, doer.ChannelID,
			fmt.Sprintf("*Reminder*\n\nTask #%d is %s:\n%s", t.ID, label, t.Description),
			&t.ID,
			chat.Action{Label: "Mark as Completed", Tag: tagWithID(tagTaskDonePrefix, t.ID)},
		)
		sent++
	}
	return sent, nil
}
