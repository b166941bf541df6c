package course

import (
	"regexp"
	"strings"
)

// boundary matches a run of sentence-ending punctuation followed by
// whitespace. Candidate boundaries are then vetted against the
// abbreviation list so "Dr. Smith" or "e.g. this" never split a sentence.
var boundary = regexp.MustCompile(`[.!?]+\s+`)

// whitespace collapses runs of spaces, tabs, and newlines before splitting.
var whitespace = regexp.MustCompile(`\s+`)

// abbreviations lists lowercase tokens that end with a period mid-sentence.
// The trailing period is stripped before lookup. Multi-dot forms like
// "e.g." reduce to "e.g" after stripping the final dot.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "cf": true, "al": true, "inc": true,
	"ltd": true, "dept": true, "est": true, "fig": true, "no": true,
	"approx": true,
}

// SplitSentences splits text into sentences using a boundary heuristic
// tolerant of common abbreviations. Whitespace is normalized first, so the
// output joined by single spaces reconstructs the normalized input. Text
// with no terminal punctuation comes back as a single sentence.
func SplitSentences(text string) []string {
	normalized := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if normalized == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range boundary.FindAllStringIndex(normalized, -1) {
		// loc[0] is the first punctuation rune, loc[1] the char after the
		// trailing whitespace run.
		candidate := normalized[start:loc[1]]
		if endsWithAbbreviation(strings.TrimRight(candidate, " ")) {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(candidate))
		start = loc[1]
	}
	if rest := strings.TrimSpace(normalized[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// endsWithAbbreviation reports whether the sentence candidate ends in a
// token from the abbreviation list (or a single capital initial like "J.").
func endsWithAbbreviation(candidate string) bool {
	if !strings.HasSuffix(candidate, ".") {
		return false
	}
	trimmed := strings.TrimSuffix(candidate, ".")
	i := strings.LastIndexByte(trimmed, ' ')
	last := trimmed[i+1:]
	if len(last) == 1 && last[0] >= 'A' && last[0] <= 'Z' {
		return true
	}
	return abbreviations[strings.ToLower(last)]
}

// ChunkText splits text into chunks of at most size characters, packing
// whole sentences greedily and re-including a trailing overlap window of up
// to overlap characters from the previous chunk. A single sentence longer
// than size becomes its own oversized chunk; sentences are never split.
// Empty or whitespace-only text yields no chunks.
func ChunkText(text string, size, overlap int) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		// Greedy pack: always take at least one sentence, then add while
		// the joined length stays within budget.
		j := i + 1
		length := len(sentences[i])
		for j < len(sentences) && length+1+len(sentences[j]) <= size {
			length += 1 + len(sentences[j])
			j++
		}
		chunks = append(chunks, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Walk backwards from the chunk end to find how many trailing
		// sentences fit in the overlap budget.
		k := j
		used := 0
		for k > i {
			add := len(sentences[k-1])
			if used > 0 {
				add++
			}
			if used+add > overlap {
				break
			}
			used += add
			k--
		}
		// The overlap window may never swallow the whole chunk: the next
		// chunk must start at least one sentence further in.
		if k <= i {
			k = i + 1
		}
		i = k
	}
	return chunks
}
