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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int {
	return &i
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		existing *int
		target   int
		want     Classification
	}{
		{name: "never seen at first stage", existing: nil, target: 0, want: ClassificationNew},
		{name: "never seen at later stage", existing: nil, target: 7, want: ClassificationNew},
		{name: "moves forward by one", existing: intPtr(1), target: 2, want: ClassificationAdvance},
		{name: "skips stages", existing: intPtr(0), target: 5, want: ClassificationAdvance},
		{name: "same stage again", existing: intPtr(2), target: 2, want: ClassificationNoop},
		{name: "stale report behind current stage", existing: intPtr(2), target: 1, want: ClassificationNoop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.existing, tt.target))
		})
	}
}

func TestClassify_Laws(t *testing.T) {
	for target := 0; target < 10; target++ {
		assert.Equal(t, ClassificationNew, Classify(nil, target))
		for existing := 0; existing < 10; existing++ {
			got := Classify(intPtr(existing), target)
			if existing < target {
				assert.Equal(t, ClassificationAdvance, got, "existing=%d target=%d", existing, target)
			} else {
				assert.Equal(t, ClassificationNoop, got, "existing=%d target=%d", existing, target)
			}
		}
	}
}

func TestNormalizeBarcodes(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "trims whitespace", input: []string{" B1 ", "\tB2\n"}, want: []string{"B1", "B2"}},
		{name: "drops empty entries", input: []string{"", "  ", "B1"}, want: []string{"B1"}},
		{name: "keeps duplicates and order", input: []string{"B2", "B1", "B2"}, want: []string{"B2", "B1", "B2"}},
		{name: "case sensitive", input: []string{"b1", "B1"}, want: []string{"b1", "B1"}},
		{name: "nothing left", input: []string{" ", ""}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBarcodes(tt.input))
		})
	}
}

func TestIngestCounts_Add(t *testing.T) {
	var counts IngestCounts
	counts.Add(ClassificationNew)
	counts.Add(ClassificationNew)
	counts.Add(ClassificationAdvance)
	counts.Add(ClassificationNoop)

	assert.Equal(t, IngestCounts{New: 2, Old: 1, Same: 1}, counts)
	assert.Equal(t, 4, counts.Total())
}

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("loc")
	assert.True(t, strings.HasPrefix(id, "loc_"))
	assert.Len(t, id, len("loc_")+36)
}
