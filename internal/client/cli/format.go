package cli

import (
	"github.com/dibarradev/to-do/internal/client/iocli"
	pkgapi "github.com/dibarradev/to-do/pkg/api"
)

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// printTask печатает задачу с комментарием и подзадачами
func printTask(out iocli.IO, t pkgapi.Task) {
	out.Printf("%s %s  %s\n", checkbox(t.Completed), t.ID, t.Text)
	if t.Comment != nil && *t.Comment != "" {
		out.Printf("      # %s\n", *t.Comment)
	}
	for _, s := range t.Subtasks {
		out.Printf("      %s %s  %s\n", checkbox(s.Completed), s.ID, s.Text)
	}
}
