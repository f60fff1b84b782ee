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

package model

// Stage is a named step of the pipeline. Position defines the pipeline order and is unique per stage.
type Stage struct {
	StageName string `json:"stage_name" yaml:"stage_name"`
	Position  int    `json:"position" yaml:"position"`
}

// StageCatalog is the on-disk representation of the stage catalog used by the stages load command.
type StageCatalog struct {
	Stages []Stage `yaml:"stages"`
}
