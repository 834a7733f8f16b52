// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/astro-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the conversation in its persisted shape, pretty
// printed, suitable for re-import or tooling.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// Export marshals the conversation. Unresolved placeholders are dropped
// first so exports never contain loading state.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	out := conv.Clone()
	kept := out.Messages[:0]
	for _, m := range out.Messages {
		if !m.IsLoading {
			kept = append(kept, m)
		}
	}
	out.Messages = kept

	return json.MarshalIndent(out, "", "  ")
}
