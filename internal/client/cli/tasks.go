package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pkgapi "github.com/dibarradev/to-do/pkg/api"
)

func (c *Cli) newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		c.newTasksListCmd(),
		c.newTasksAddCmd(),
		c.newTasksCompleteCmd("done", "Mark a task as completed", true),
		c.newTasksCompleteCmd("undo", "Mark a task as not completed", false),
		c.newTasksEditCmd(),
		c.newTasksCommentCmd(),
		c.newTasksRemoveCmd(),
	)
	return cmd
}

func (c *Cli) newTasksListCmd() *cobra.Command {
	var pending, done bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				var tasks []pkgapi.Task
				err := d.Auth.WithAccess(ctx, func(ctx context.Context, access string) error {
					var err error
					tasks, err = d.Tasks.ListTasks(ctx, access)
					return err
				})
				if err != nil {
					return err
				}

				shown := 0
				for _, t := range tasks {
					if (pending && t.Completed) || (done && !t.Completed) {
						continue
					}
					printTask(c.io, t)
					shown++
				}
				if shown == 0 {
					c.io.Println("No tasks")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&pending, "pending", false, "show only pending tasks")
	cmd.Flags().BoolVar(&done, "done", false, "show only completed tasks")
	cmd.MarkFlagsMutuallyExclusive("pending", "done")
	return cmd
}

func (c *Cli) newTasksAddCmd() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "add <text...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pkgapi.CreateTaskRequest{Text: strings.Join(args, " ")}
			if cmd.Flags().Changed("comment") {
				req.Comment = &comment
			}

			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				var task *pkgapi.Task
				err := d.Auth.WithAccess(ctx, func(ctx context.Context, access string) error {
					var err error
					task, err = d.Tasks.CreateTask(ctx, access, req)
					return err
				})
				if err != nil {
					return err
				}
				c.io.Printf("Created task %s\n", task.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "c", "", "task comment")
	return cmd
}

func (c *Cli) newTasksCompleteCmd(use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.updateTask(cmd, args[0], pkgapi.UpdateTaskRequest{Completed: &completed})
		},
	}
}

func (c *Cli) newTasksEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task> <text...>",
		Short: "Change task text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return c.updateTask(cmd, args[0], pkgapi.UpdateTaskRequest{Text: &text})
		},
	}
}

func (c *Cli) newTasksCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <task> [text...]",
		Short: "Set the task comment, without text the comment is removed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Пустой комментарий сервер трактует как удаление
			comment := strings.Join(args[1:], " ")
			return c.updateTask(cmd, args[0], pkgapi.UpdateTaskRequest{Comment: &comment})
		},
	}
}

func (c *Cli) newTasksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, d *Deps) error {
				var taskID string
				err := d.Auth.WithAccess(ctx, func(ctx context.Context, access string) error {
					task, err := findTask(ctx, d.Tasks, access, args[0])
					if err != nil {
						return err
					}
					taskID = task.ID
					return d.Tasks.DeleteTask(ctx, access, task.ID)
				})
				if err != nil {
					return err
				}
				c.io.Printf("Deleted task %s\n", taskID)
				return nil
			})
		},
	}
}

// updateTask применяет частичное обновление и печатает результат
func (c *Cli) updateTask(cmd *cobra.Command, ref string, req pkgapi.UpdateTaskRequest) error {
	return c.run(cmd, func(ctx context.Context, d *Deps) error {
		var updated *pkgapi.Task
		err := d.Auth.WithAccess(ctx, func(ctx context.Context, access string) error {
			task, err := findTask(ctx, d.Tasks, access, ref)
			if err != nil {
				return err
			}
			updated, err = d.Tasks.UpdateTask(ctx, access, task.ID, req)
			return err
		})
		if err != nil {
			return err
		}
		printTask(c.io, *updated)
		return nil
	})
}

// findTask ищет задачу по полному ID или однозначному префиксу
func findTask(ctx context.Context, tasks TaskAPI, access, ref string) (*pkgapi.Task, error) {
	list, err := tasks.ListTasks(ctx, access)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(list))
	for i, t := range list {
		ids[i] = t.ID
	}
	i, err := matchID(ids, ref, "task")
	if err != nil {
		return nil, err
	}
	return &list[i], nil
}

// matchID возвращает индекс точного совпадения или единственного ID с префиксом ref
func matchID(ids []string, ref, kind string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, fmt.Errorf("%s id is required", kind)
	}

	// ULID регистронезависим
	want := strings.ToUpper(ref)
	found := -1
	for i, id := range ids {
		upper := strings.ToUpper(id)
		if upper == want {
			return i, nil
		}
		if strings.HasPrefix(upper, want) {
			if found >= 0 {
				return -1, fmt.Errorf("%s id %q is ambiguous", kind, ref)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%s %q not found", kind, ref)
	}
	return found, nil
}
