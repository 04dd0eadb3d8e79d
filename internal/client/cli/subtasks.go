package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	pkgapi "github.com/dibarradev/to-do/pkg/api"
)

func (c *Cli) newSubtasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtasks",
		Aliases: []string{"subtask"},
		Short:   "Manage subtasks of a task",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <task> <text...>",
			Short: "Add a subtask",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				req := pkgapi.CreateSubtaskRequest{Text: strings.Join(args[1:], " ")}
				return c.changeSubtasks(cmd, args[0], func(ctx context.Context, d *Deps, access string, task *pkgapi.Task) (*pkgapi.Task, error) {
					return d.Tasks.AddSubtask(ctx, access, task.ID, req)
				})
			},
		},
		c.newSubtasksCompleteCmd("done", "Mark a subtask as completed", true),
		c.newSubtasksCompleteCmd("undo", "Mark a subtask as not completed", false),
		&cobra.Command{
			Use:     "rm <task> <subtask>",
			Aliases: []string{"delete"},
			Short:   "Delete a subtask",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.changeSubtasks(cmd, args[0], func(ctx context.Context, d *Deps, access string, task *pkgapi.Task) (*pkgapi.Task, error) {
					subtaskID, err := findSubtask(task, args[1])
					if err != nil {
						return nil, err
					}
					return d.Tasks.DeleteSubtask(ctx, access, task.ID, subtaskID)
				})
			},
		},
	)
	return cmd
}

func (c *Cli) newSubtasksCompleteCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task> <subtask>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.changeSubtasks(cmd, args[0], func(ctx context.Context, d *Deps, access string, task *pkgapi.Task) (*pkgapi.Task, error) {
				subtaskID, err := findSubtask(task, args[1])
				if err != nil {
					return nil, err
				}
				return d.Tasks.UpdateSubtask(ctx, access, task.ID, subtaskID, pkgapi.UpdateSubtaskRequest{Completed: &completed})
			})
		},
	}
}

type subtaskChange func(ctx context.Context, d *Deps, access string, task *pkgapi.Task) (*pkgapi.Task, error)

// changeSubtasks находит задачу, применяет изменение и печатает задачу целиком
func (c *Cli) changeSubtasks(cmd *cobra.Command, taskRef string, change subtaskChange) error {
	return c.run(cmd, func(ctx context.Context, d *Deps) error {
		var updated *pkgapi.Task
		err := d.Auth.WithAccess(ctx, func(ctx context.Context, access string) error {
			task, err := findTask(ctx, d.Tasks, access, taskRef)
			if err != nil {
				return err
			}
			updated, err = change(ctx, d, access, task)
			return err
		})
		if err != nil {
			return err
		}
		printTask(c.io, *updated)
		return nil
	})
}

func findSubtask(task *pkgapi.Task, ref string) (string, error) {
	ids := make([]string, len(task.Subtasks))
	for i, s := range task.Subtasks {
		ids[i] = s.ID
	}
	i, err := matchID(ids, ref, "subtask")
	if err != nil {
		return "", err
	}
	return ids[i], nil
}
