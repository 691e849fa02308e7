package chunker

import (
	"strings"
	"testing"
)

// buildText produces n numbered sentences of roughly equal length.
func buildText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("Der Wolf lief immer tiefer in den dunklen Wald hinein und suchte dort nach dem kleinen Haus. ")
	}
	return b.String()
}

func TestSplit_ChunkSizeBounds(t *testing.T) {
	cfg := DefaultConfig()
	chunks := Split(buildText(40), cfg)

	if len(chunks) == 0 {
		t.Fatal("expected chunks for long input")
	}

	for i, c := range chunks {
		if len(c.Text) > cfg.MaxChunkSize {
			t.Errorf("chunk %d exceeds max size: %d > %d", i, len(c.Text), cfg.MaxChunkSize)
		}
		// Sizes are accumulated as sentence length + 1 separator, so the
		// joined text may come in one character under the accumulator.
		if len(c.Text) < cfg.MinChunkSize-1 {
			t.Errorf("chunk %d below min size: %d < %d", i, len(c.Text), cfg.MinChunkSize)
		}
	}
}

func TestSplit_ShortInputYieldsNothing(t *testing.T) {
	chunks := Split("Ein kurzer Satz.", DefaultConfig())
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for input below min size, got %d", len(chunks))
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", DefaultConfig()); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := Split("   \n\n  ", DefaultConfig()); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestSplit_PositionMarkers(t *testing.T) {
	chunks := Split(buildText(60), DefaultConfig())
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	if chunks[0].Position != PositionBeginning {
		t.Errorf("first chunk position = %q, want %q", chunks[0].Position, PositionBeginning)
	}
	if chunks[len(chunks)-1].Position != PositionEnd {
		t.Errorf("last chunk position = %q, want %q", chunks[len(chunks)-1].Position, PositionEnd)
	}
	for _, c := range chunks[1 : len(chunks)-1] {
		if c.Position != PositionMiddle {
			t.Errorf("chunk %d position = %q, want %q", c.Index, c.Position, PositionMiddle)
		}
	}
}

func TestSplit_IndexAndTotal(t *testing.T) {
	chunks := Split(buildText(40), DefaultConfig())
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk at offset %d has index %d", i, c.Index)
		}
		if c.TotalChunks != len(chunks) {
			t.Errorf("chunk %d total = %d, want %d", i, c.TotalChunks, len(chunks))
		}
	}
}

func TestSplit_OverlapPreservesSentenceOrder(t *testing.T) {
	// Distinct sentences so overlap duplication is detectable.
	sentences := []string{
		"Es war einmal ein kleines Mädchen, das von allen geliebt wurde, die es nur ansahen.",
		"Die Großmutter wohnte draußen im Wald, eine halbe Stunde vom Dorf entfernt.",
		"Als das Mädchen in den Wald kam, begegnete ihm der Wolf auf dem moosigen Pfad.",
		"Der Wolf dachte bei sich, das junge zarte Ding wäre ein gar fetter Bissen für ihn.",
		"Da ging er ein Weilchen neben dem Kinde her und zeigte auf die schönen Blumen.",
		"Das Mädchen schlug die Augen auf und sah die Sonnenstrahlen durch die Bäume tanzen.",
		"Es lief vom Wege ab in den Wald hinein und suchte nach immer schöneren Blumen.",
		"Der Wolf aber ging geradewegs zum Haus der Großmutter und klopfte an die Türe.",
	}
	text := strings.Join(sentences, " ")

	chunks := Split(text, DefaultConfig())
	if len(chunks) < 2 {
		t.Fatalf("expected overlap to require at least 2 chunks, got %d", len(chunks))
	}

	// Every chunk must be a sequence of whole input sentences, and the
	// concatenation must cover the input in order (with duplication only
	// from overlap).
	nextExpected := 0
	for _, c := range chunks {
		first := -1
		for i, s := range sentences {
			if strings.HasPrefix(c.Text, s) {
				first = i
				break
			}
		}
		if first == -1 {
			t.Fatalf("chunk %d does not start on a sentence boundary: %q", c.Index, c.Text[:40])
		}
		if first > nextExpected {
			t.Errorf("chunk %d skips sentences: starts at %d, expected <= %d", c.Index, first, nextExpected)
		}

		pos := first
		rest := c.Text
		for len(rest) > 0 && pos < len(sentences) {
			if !strings.HasPrefix(rest, sentences[pos]) {
				t.Fatalf("chunk %d breaks sentence order at input sentence %d", c.Index, pos)
			}
			rest = strings.TrimPrefix(rest, sentences[pos])
			rest = strings.TrimPrefix(rest, " ")
			pos++
		}
		if pos > nextExpected {
			nextExpected = pos
		}
	}

	if nextExpected != len(sentences) {
		t.Errorf("chunks cover %d of %d sentences", nextExpected, len(sentences))
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "Erster  Satz.\r\n\r\n\r\nZweiter   Satz."
	got := normalizeWhitespace(in)
	if strings.Contains(got, "\r") {
		t.Error("carriage returns not normalized")
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank-line runs not collapsed")
	}
	if strings.Contains(got, "  ") {
		t.Error("space runs not collapsed")
	}
}

func TestSplitSentences_GermanQuotes(t *testing.T) {
	text := "„Guten Tag, Rotkäppchen“, sprach er. „Schönen Dank, Wolf!“ Dann ging er weiter."
	got := splitSentences(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %q", len(got), got)
	}
	if !strings.HasSuffix(got[1], "“") {
		t.Errorf("closing quote detached from sentence: %q", got[1])
	}
}
