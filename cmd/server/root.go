package main

import (
	"github.com/spf13/cobra"

	"github.com/dibarradev/to-do/internal/config"
)

// rootFlags флаги, общие для всех подкоманд
type rootFlags struct {
	envFiles []string
	addr     string
	driver   string
	dsn      string
}

// NewRootCmd создает корневую команду; без подкоманды запускает serve
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "todo-server",
		Short:         "to-do API server",
		Long:          `HTTP API for the to-do application: authentication, tasks and subtasks.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringSliceVar(&flags.envFiles, "env-file", []string{".env"}, ".env files to load, missing files are skipped")
	pf.StringVar(&flags.addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	pf.StringVar(&flags.driver, "db-driver", "", "storage driver: sqlite or postgres (overrides DB_DRIVER)")
	pf.StringVar(&flags.dsn, "db-dsn", "", "sqlite path or postgres URL (overrides DB_DSN)")

	cmd.AddCommand(NewServeCmd(flags))
	cmd.AddCommand(NewMigrateCmd(flags))

	return cmd
}

// loadConfig читает конфигурацию с учетом явно заданных флагов
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	changed := cmd.Flags().Changed
	return config.Load(flags.envFiles, func(c *config.Config) {
		if changed("addr") {
			c.HTTPAddr = flags.addr
		}
		if changed("db-driver") {
			c.DB.Driver = flags.driver
		}
		if changed("db-dsn") {
			c.DB.DSN = flags.dsn
		}
	})
}
