// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package postproc

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// =============================================================================
// HTML SANITIZATION
// =============================================================================

// strictPolicy strips every HTML element and attribute: model output is
// never trusted to carry markup, only markdown.
var strictPolicy = bluemonday.StrictPolicy()

// inlineCode matches a single-backtick code span on one line.
var inlineCode = regexp.MustCompile("`[^`\n]*`")

// SanitizeMarkdown strips raw HTML from the prose parts of a markdown
// document. Code fences and inline code spans keep their content byte
// for byte: the renderer displays code literally, so a < or a script
// tag inside code is inert text, while the same token in prose would be
// markup. Every display path runs through this; it is not skippable.
func SanitizeMarkdown(s string) string {
	segs := segmentFences(s)
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg.code {
			out = append(out, seg.text)
			continue
		}
		out = append(out, sanitizeProse(seg.text))
	}
	return strings.Join(out, "\n")
}

// sanitizeProse sanitizes text around inline code spans. Entity escapes
// the policy introduces in prose are resolved back to characters by the
// markdown renderer.
func sanitizeProse(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range inlineCode.FindAllStringIndex(s, -1) {
		b.WriteString(strictPolicy.Sanitize(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strictPolicy.Sanitize(s[last:]))
	return b.String()
}
