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

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/stagetrack"
	"github.com/blnkfinance/stagetrack/config"
	"github.com/blnkfinance/stagetrack/database"
)

// Stagetrack is the CLI application wrapping the root Cobra command.
type Stagetrack struct {
	cmd *cobra.Command
}

// trackerInstance carries the runtime tracker and configuration into subcommands.
type trackerInstance struct {
	tracker *stagetrack.Tracker
	db      *database.Datasource
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and connects the tracker before any subcommand runs.
func preRun(app *trackerInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		db, tracker, err := setupTracker(cnf)
		if err != nil {
			return err
		}

		app.tracker = tracker
		app.db = db
		app.cnf = cnf
		return nil
	}
}

func setupTracker(cfg *config.Configuration) (*database.Datasource, *stagetrack.Tracker, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting datasource: %w", err)
	}

	tracker, err := stagetrack.NewTracker(db, cfg)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("error creating tracker: %w", err)
	}
	return db, tracker, nil
}

// postRun releases the connections opened by preRun.
func postRun(app *trackerInstance) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if app.tracker != nil {
			if err := app.tracker.Close(); err != nil {
				logrus.Errorf("error closing redis: %v", err)
			}
		}
		if app.db != nil {
			if err := app.db.Close(); err != nil {
				logrus.Errorf("error closing database: %v", err)
			}
		}
	}
}

func NewCLI() *Stagetrack {
	var configFile string
	app := &trackerInstance{}

	var rootCmd = &cobra.Command{
		Use:          "stagetrack",
		Short:        "Barcode stage progression tracker",
		SilenceUsage: true,
		Run:          func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./stagetrack.json", "Configuration file for stagetrack")
	rootCmd.PersistentPreRunE = preRun(app, &configFile)
	rootCmd.PersistentPostRun = postRun(app)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(stagesCommands(app))
	rootCmd.AddCommand(configCommands(app))

	return &Stagetrack{cmd: rootCmd}
}

func (s Stagetrack) executeCLI() {
	if err := s.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
