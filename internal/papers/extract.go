// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package papers extracts structured paper references from assistant text.
package papers

import (
	"regexp"

	"github.com/jeranaias/scholar-tui/internal/model"
)

// arxivPattern matches arXiv abstract-page links (http or https), with an
// optional version suffix. The capture group is the bare identifier.
var arxivPattern = regexp.MustCompile(`https?://arxiv\.org/abs/([0-9.]+)(?:v[0-9]+)?`)

// placeholderAbstract is attached to every extracted reference; the real
// abstract lives behind the link.
const placeholderAbstract = "Click to view paper details"

// Extract scans finished assistant text for arXiv links and derives a
// reference per match, in scan order.
//
// The function is pure and total: the same input always yields the same
// ordered output, and text without matches yields an empty list. Repeated
// identifiers are NOT deduplicated; every occurrence yields its own entry.
func Extract(content string) []model.PaperReference {
	matches := arxivPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]model.PaperReference, 0, len(matches))
	for _, match := range matches {
		arxivID := match[1]
		refs = append(refs, model.PaperReference{
			Title:    "arXiv:" + arxivID,
			URL:      match[0],
			PDFURL:   "https://arxiv.org/pdf/" + arxivID + ".pdf",
			Abstract: placeholderAbstract,
		})
	}
	return refs
}
