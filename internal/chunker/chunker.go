// Package chunker splits long source texts into overlapping,
// bounded-size passages suitable for embedding and retrieval. Chunks
// never break mid-sentence; consecutive chunks share a trailing
// overlap so retrieval keeps context across chunk boundaries.
package chunker

import (
	"regexp"
	"strings"
)

// Position marks where a chunk sits within its source document.
const (
	PositionBeginning = "beginning"
	PositionMiddle    = "middle"
	PositionEnd       = "end"
)

// Chunk is one bounded passage of source text.
type Chunk struct {
	Text        string `json:"text"`
	Index       int    `json:"chunk_index"`
	Position    string `json:"position"`
	TotalChunks int    `json:"total_chunks"`
}

// Config controls chunk sizing in characters.
type Config struct {
	// MaxChunkSize is the upper bound a chunk may reach before it is
	// emitted and a new one is started.
	MaxChunkSize int

	// MinChunkSize is the lower bound for the final trailing chunk.
	// A trailing remainder below this size is dropped, which makes
	// very short tails unretrievable; that loss is accepted.
	MinChunkSize int

	// Overlap is the approximate number of characters copied from the
	// end of an emitted chunk into the next one.
	Overlap int
}

// DefaultConfig returns the chunk sizing used for tale ingestion.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize: 600,
		MinChunkSize: 250,
		Overlap:      100,
	}
}

var (
	crlfRe        = regexp.MustCompile(`\r\n`)
	blankRunRe    = regexp.MustCompile(`\n{2,}`)
	spaceRunRe    = regexp.MustCompile(` {2,}`)
	sentenceEndRe = regexp.MustCompile(`([.!?…]["'“”’«»)]*)(\s+|$)`)
)

// Split divides text into chunks on sentence boundaries. Sentences are
// accumulated greedily until the next sentence would push the chunk
// past MaxChunkSize; the chunk is then emitted and the next one is
// seeded with trailing sentences whose combined length stays within
// Overlap. The final chunk is kept only if it reaches MinChunkSize.
func Split(text string, cfg Config) []Chunk {
	sentences := splitSentences(normalizeWhitespace(text))
	if len(sentences) == 0 {
		return nil
	}

	var texts []string
	var current []string
	currentSize := 0

	for _, sentence := range sentences {
		sentenceSize := len(sentence) + 1

		if currentSize+sentenceSize > cfg.MaxChunkSize && len(current) > 0 {
			texts = append(texts, strings.Join(current, " "))

			// Seed the next chunk with a trailing overlap, copied
			// backward from the emitted chunk in original order.
			overlapSize := 0
			var overlap []string
			for i := len(current) - 1; i >= 0; i-- {
				s := current[i]
				if overlapSize+len(s)+1 > cfg.Overlap {
					break
				}
				overlap = append([]string{s}, overlap...)
				overlapSize += len(s) + 1
			}
			current = overlap
			currentSize = overlapSize
		}

		current = append(current, sentence)
		currentSize += sentenceSize
	}

	if len(current) > 0 && currentSize >= cfg.MinChunkSize {
		texts = append(texts, strings.Join(current, " "))
	}

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		position := PositionMiddle
		if i == 0 {
			position = PositionBeginning
		} else if i == len(texts)-1 {
			position = PositionEnd
		}
		chunks[i] = Chunk{
			Text:        t,
			Index:       i,
			Position:    position,
			TotalChunks: len(texts),
		}
	}
	return chunks
}

// normalizeWhitespace collapses runs of blank lines and spaces so the
// sentence splitter does not see spurious boundaries.
func normalizeWhitespace(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// splitSentences breaks text at sentence-final markers (. ! ? …),
// keeping any closing quotes or brackets attached to the sentence.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceEndRe.FindAllStringSubmatchIndex(text, -1) {
		// loc[3] is the end of the terminal-punctuation group.
		end := loc[3]
		sentence := strings.TrimSpace(text[last:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		last = loc[1]
	}

	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
