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
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blnkfinance/stagetrack/model"
)

// readCatalog parses a YAML catalog of the form
//
//	stages:
//	  - stage_name: Receiving
//	    position: 0
func readCatalog(path string) ([]model.Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var catalog model.StageCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("invalid stage catalog %s: %w", path, err)
	}
	return catalog.Stages, nil
}

func stagesCommands(app *trackerInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "inspect or provision the stage catalog",
	}

	cmd.AddCommand(stagesListCommand(app))
	cmd.AddCommand(stagesLoadCommand(app))
	return cmd
}

func stagesListCommand(app *trackerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stages by position",
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := app.tracker.GetAllStages(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POSITION\tSTAGE")
			for _, stage := range stages {
				fmt.Fprintf(w, "%d\t%s\n", stage.Position, stage.StageName)
			}
			return w.Flush()
		},
	}
}

func stagesLoadCommand(app *trackerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "load <catalog.yaml>",
		Short: "create or reposition stages from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := readCatalog(args[0])
			if err != nil {
				return err
			}

			if err := app.tracker.LoadStages(cmd.Context(), stages); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d stages!\n", len(stages))
			return nil
		},
	}
}
