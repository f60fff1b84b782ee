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
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix generates a UUID prefixed with the given module name, e.g. "loc_<uuid>".
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// NormalizeBarcodes trims every barcode and drops the ones that are empty after trimming.
// Order and duplicates are preserved; each occurrence is processed independently.
func NormalizeBarcodes(barcodes []string) []string {
	cleaned := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		cleaned = append(cleaned, b)
	}
	return cleaned
}
