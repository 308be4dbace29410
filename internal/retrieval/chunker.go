// Package retrieval picks the parts of an attached document that matter most
// for a problem statement, so prompts stay inside a token budget.
package retrieval

import (
	"strings"

	"github.com/KaramelBytes/agentops-cli/internal/utils"
)

// DefaultChunkTokens is the chunk size used when callers pass zero.
const DefaultChunkTokens = 400

// ChunkByTokens groups paragraphs into chunks of at most maxTokens. The last
// overlap tokens worth of paragraphs are repeated at the start of the next
// chunk. A single paragraph larger than maxTokens becomes its own chunk.
func ChunkByTokens(text string, maxTokens, overlap int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultChunkTokens
	}
	overlap = max(overlap, 0)

	var chunks []string
	var window []string
	size := 0
	flush := func() {
		chunks = append(chunks, strings.Join(window, "\n\n"))
		if overlap == 0 {
			window, size = window[:0], 0
			return
		}
		window, size = tail(window, overlap)
	}
	for _, p := range paragraphs(text) {
		n := utils.CountTokens(p)
		if size+n > maxTokens && len(window) > 0 {
			flush()
		}
		window = append(window, p)
		size += n
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, "\n\n"))
	}
	return chunks
}

func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// tail returns the trailing paragraphs that fit in budget tokens, always
// keeping at least one.
func tail(paras []string, budget int) ([]string, int) {
	start, size := len(paras), 0
	for start > 0 {
		n := utils.CountTokens(paras[start-1])
		if size+n > budget && start < len(paras) {
			break
		}
		start--
		size += n
	}
	return append([]string(nil), paras[start:]...), size
}
