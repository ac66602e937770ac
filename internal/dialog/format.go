package dialog

import (
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/locale"
)

const bullet = "   • "

// FormatTasks renders a task list for speech: plain tasks first, numbered
// in insertion order, then one entry per shopping group.
func FormatTasks(r locale.Replies, tasks []domain.Task) string {
	if len(tasks) == 0 {
		return r.TaskListEmpty
	}

	var (
		plain  []domain.Task
		order  []string
		groups = map[string][]domain.Task{}
	)
	for _, t := range tasks {
		if !t.IsShopping {
			plain = append(plain, t)
			continue
		}
		key := t.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	lines := []string{r.TaskListHeader}
	n := 0
	for _, t := range plain {
		n++
		lines = append(lines, taskLine(r, n, t))
	}
	for _, key := range order {
		group := groups[key]
		n++
		lines = append(lines, locale.Fill(r.ShoppingGroup, "n", strconv.Itoa(n), "date", group[0].Date))
		for _, t := range group {
			if len(t.ShoppingList) == 0 {
				lines = append(lines, bullet+t.Text)
				continue
			}
			for _, item := range t.ShoppingList {
				lines = append(lines, bullet+item.ShortName)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// FormatForDeletion numbers every task in insertion order, the order the
// deletion step resolves positions against.
func FormatForDeletion(r locale.Replies, tasks []domain.Task) string {
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, r.TaskListHeader)
	for i, t := range tasks {
		lines = append(lines, taskLine(r, i+1, t))
	}
	return strings.Join(lines, "\n")
}

func taskLine(r locale.Replies, n int, t domain.Task) string {
	return locale.Fill(r.TaskLine, "n", strconv.Itoa(n), "text", t.Text, "date", t.Date)
}
