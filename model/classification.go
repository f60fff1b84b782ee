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

// Classification is the outcome of comparing a barcode's stored stage with a reported stage.
type Classification string

const (
	// ClassificationNew means the barcode has never been seen.
	ClassificationNew Classification = "new"
	// ClassificationAdvance means the barcode moves forward to the reported stage.
	ClassificationAdvance Classification = "old"
	// ClassificationNoop means the barcode already reached or passed the reported stage.
	ClassificationNoop Classification = "same"
)

// Classify decides how a sighting at targetPosition affects a barcode whose stored
// position is existing (nil when the barcode has no state yet).
// Progression is forward-only: a report at or behind the stored position never rewrites state.
func Classify(existing *int, targetPosition int) Classification {
	if existing == nil {
		return ClassificationNew
	}
	if *existing < targetPosition {
		return ClassificationAdvance
	}
	return ClassificationNoop
}
