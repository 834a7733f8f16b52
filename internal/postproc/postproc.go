// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package postproc cleans raw model output before storage and display.
package postproc

import (
	"regexp"
	"strings"
)

// =============================================================================
// TRANSFORM PIPELINE
// =============================================================================

// Transform is one pure text transform. Every transform must be idempotent
// on its own output so the pipeline as a whole is idempotent: cleaning an
// already-clean string is a no-op.
type Transform func(string) string

var (
	// 3+ consecutive newlines collapse to a paragraph break
	multiNewline = regexp.MustCompile(`\n{3,}`)
	// runs of spaces and tabs inside a line
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)
	// trailing whitespace per line
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)

	multiExclaim  = regexp.MustCompile(`!{2,}`)
	multiQuestion = regexp.MustCompile(`\?{2,}`)
	multiDot      = regexp.MustCompile(`\.{4,}`)
	multiComma    = regexp.MustCompile(`,{2,}`)

	// leading AI self-reference boilerplate
	boilerplate = regexp.MustCompile(`(?i)^(as an ai( language model| assistant)?|as a language model)[,:]?\s*`)

	// bare source lines become markdown links
	bareSource = regexp.MustCompile(`(?m)^Source: (https?://\S+)$`)
)

// NormalizeWhitespace trims the string, strips trailing space from each
// line, collapses space runs, and bounds blank runs to one empty line.
func NormalizeWhitespace(s string) string {
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// DedupPunctuation collapses repeated terminal punctuation. An ellipsis
// of exactly three dots is left alone.
func DedupPunctuation(s string) string {
	s = multiExclaim.ReplaceAllString(s, "!")
	s = multiQuestion.ReplaceAllString(s, "?")
	s = multiDot.ReplaceAllString(s, "...")
	s = multiComma.ReplaceAllString(s, ",")
	return s
}

// StripBoilerplate removes a leading AI self-reference phrase and
// re-capitalizes the sentence it prefixed.
func StripBoilerplate(s string) string {
	stripped := boilerplate.ReplaceAllString(s, "")
	if stripped == s {
		return s
	}
	r := []rune(stripped)
	if len(r) > 0 {
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	}
	return string(r)
}

// FormatCitations rewrites bare "Source: <url>" lines as markdown links
// so rendered output shows clickable citations.
func FormatCitations(s string) string {
	return bareSource.ReplaceAllString(s, "[Source]($1)")
}

// =============================================================================
// FENCE SEGMENTATION
// =============================================================================

// segment is a run of lines that is either prose or a whole code fence.
type segment struct {
	text string
	code bool
}

// segmentFences splits markdown at code fence boundaries so transforms
// and sanitization only ever touch prose. An unterminated fence is
// treated as code to the end of the input.
func segmentFences(s string) []segment {
	lines := strings.Split(s, "\n")

	var segs []segment
	var cur []string
	inFence := false

	flush := func(code bool) {
		if len(cur) > 0 {
			segs = append(segs, segment{text: strings.Join(cur, "\n"), code: code})
			cur = nil
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			if !inFence {
				flush(false)
				inFence = true
				cur = append(cur, line)
			} else {
				cur = append(cur, line)
				flush(true)
				inFence = false
			}
			continue
		}
		cur = append(cur, line)
	}
	flush(inFence)
	return segs
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor applies the pure text cleaning pipeline. Code fences pass
// through verbatim: model-written code is content, not prose, and must
// persist byte for byte. HTML sanitization is a display-time concern
// handled by SanitizeMarkdown on the render path. Safe for concurrent
// use.
type Processor struct {
	transforms []Transform
}

// New creates a processor with the standard pipeline.
func New() *Processor {
	return &Processor{
		transforms: []Transform{
			NormalizeWhitespace,
			StripBoilerplate,
			DedupPunctuation,
			FormatCitations,
		},
	}
}

// Clean runs the transform pipeline over the prose parts of raw model
// output. The result is what gets persisted and what goes back to the
// API as history.
func (p *Processor) Clean(raw string) string {
	segs := segmentFences(raw)
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg.code {
			out = append(out, seg.text)
			continue
		}
		s := seg.text
		for _, t := range p.transforms {
			s = t(s)
		}
		out = append(out, s)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
