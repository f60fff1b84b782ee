/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package main provides the CLI commands for managing database migrations.
*/

package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/stagetrack"
)

func migrationSource() migrate.EmbedFileSystemMigrationSource {
	return migrate.EmbedFileSystemMigrationSource{
		FileSystem: stagetrack.SQLFiles,
		Root:       "sql",
	}
}

func migrateCommands(app *trackerInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back database migrations",
	}

	cmd.AddCommand(migrateUpCommands(app))
	cmd.AddCommand(migrateDownCommands(app))

	return cmd
}

func migrateUpCommands(app *trackerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := migrate.Exec(app.db.Conn, "postgres", migrationSource(), migrate.Up)
			if err != nil {
				return fmt.Errorf("error migrating up: %w", err)
			}
			fmt.Printf("Applied %d migrations!\n", n)
			return nil
		},
	}
}

func migrateDownCommands(app *trackerInstance) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := migrate.ExecMax(app.db.Conn, "postgres", migrationSource(), migrate.Down, steps)
			if err != nil {
				return fmt.Errorf("error migrating down: %w", err)
			}
			fmt.Printf("Rolled back %d migrations!\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back (0 rolls back all)")
	return cmd
}
