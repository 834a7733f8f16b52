// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/astro-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a conversation as a Markdown document with a
// metadata header and one section per message.
type MarkdownExporter struct {
	opts *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{opts: opts}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// Export renders the conversation. Unresolved placeholders are skipped;
// errored messages are kept and labelled so exports are honest about
// failed exchanges.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", conv.GetTitle())
	fmt.Fprintf(&b, "- Created: %s\n", formatTimestamp(conv.CreatedAt))
	fmt.Fprintf(&b, "- Updated: %s\n", formatTimestamp(conv.UpdatedAt))
	fmt.Fprintf(&b, "- Messages: %d\n\n", conv.MessageCount())
	b.WriteString("---\n\n")

	for _, m := range conv.Messages {
		if m.IsLoading {
			continue
		}

		label := m.Role.DisplayName()
		if m.IsError {
			label += " (error)"
		}
		if e.opts.IncludeTimestamps {
			fmt.Fprintf(&b, "## %s (%s)\n\n", label, formatTimestamp(m.Timestamp))
		} else {
			fmt.Fprintf(&b, "## %s\n\n", label)
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return []byte(b.String()), nil
}
