// Package merge combines undersized raw chunks with their neighbours.
//
// Splitters cut at natural boundaries and often leave fragments that are
// too small to embed well: a one-line import block, a short heading, a
// two-key config stanza. Merge folds those fragments into adjacent chunks
// until every chunk reaches the file's threshold, without losing text.
package merge

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// Merge returns the merged chunks of one file.
//
// threshold is the minimum trimmed length in characters, content is the
// file's full decoded text and base is the file metadata. Every result
// carries base overlaid with the metadata of its contributing chunks.
//
// A file shorter than threshold is returned whole as a single chunk, or
// not at all when it is blank. Otherwise each undersized chunk absorbs
// the following chunks until it is large enough. A group still short at
// the end of the file is appended to the previous result instead.
func Merge(raw []domain.RawChunk, threshold int, content string, base domain.Metadata) []domain.Chunk {
	if len(raw) == 0 {
		return nil
	}

	if utf8.RuneCountInString(content) < threshold {
		if domain.IsBlank(content) {
			return nil
		}
		return []domain.Chunk{{Text: content, Metadata: base.Clone()}}
	}

	var merged []domain.Chunk
	i := 0
	for i < len(raw) {
		node := raw[i]
		if node.IsBlank() {
			i++
			continue
		}

		if domain.TrimmedLen(node.Text) >= threshold {
			merged = append(merged, domain.Chunk{Text: node.Text, Metadata: node.Metadata.Clone()})
			i++
			continue
		}

		var text strings.Builder
		text.WriteString(node.Text)
		md := node.Metadata.Clone()
		j := i + 1
		for j < len(raw) && domain.TrimmedLen(text.String()) < threshold {
			next := raw[j]
			if !next.IsBlank() {
				text.WriteString("\n")
				text.WriteString(next.Text)
				for k, v := range next.Metadata {
					md[k] = v
				}
			}
			j++
		}

		if domain.TrimmedLen(text.String()) < threshold && len(merged) > 0 {
			last := &merged[len(merged)-1]
			last.Text = last.Text + "\n" + text.String()
			last.Metadata = last.Metadata.Merge(md)
		} else {
			merged = append(merged, domain.Chunk{Text: text.String(), Metadata: md})
		}
		i = j
	}

	out := make([]domain.Chunk, 0, len(merged))
	for _, c := range merged {
		if c.IsBlank() {
			continue
		}
		c.Metadata = base.Merge(c.Metadata)
		out = append(out, c)
	}
	return out
}
