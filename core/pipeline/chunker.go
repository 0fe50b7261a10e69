package pipeline

import (
	"regexp"
	"strings"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
)

// sentenceMask temporarily replaces sentence terminators inside protected
// spans so the splitter cannot cut through them.
const sentenceMask = '\uE000'

var (
	newlineRegexp    = regexp.MustCompile(`\n+`)
	whitespaceRegexp = regexp.MustCompile(`\s+`)
)

// sentenceTerminators end a sentence in both English and CJK text.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true, ';': true,
	'。': true, '！': true, '？': true, '；': true,
}

// DomainChunker creates a chunker that keeps clinically atomic statements
// intact. Text spans matching a protected pattern are never split across
// chunks; the remaining text is cut at sentence boundaries and packed up to
// the configured chunk size, with a token overlap carried between adjacent
// chunks for context continuity.
func DomainChunker(config model.ChunkerConfig) (ChunkFunc, error) {
	protected := make([]*regexp.Regexp, 0, len(config.ProtectedPatterns))
	for _, pattern := range config.ProtectedPatterns {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, helper.NewError("compile protected pattern", err)
		}
		protected = append(protected, compiled)
	}

	return func(text string) ([]string, error) {
		if strings.TrimSpace(text) == "" {
			return []string{}, nil
		}

		text = newlineRegexp.ReplaceAllString(text, "\n")
		text = whitespaceRegexp.ReplaceAllString(text, " ")
		text = maskProtectedSpans(text, protected)

		sentences := splitSentences(text)
		if len(sentences) == 0 {
			if runeLen(text) <= config.MaxChunkSize {
				return []string{unmask(text)}, nil
			}
			return unmaskAll(forceSplit(text, config.MaxChunkSize)), nil
		}

		var chunks []string
		var current strings.Builder

		for _, sentence := range sentences {
			if runeLen(current.String())+runeLen(sentence) <= config.MaxChunkSize {
				current.WriteString(sentence)
				continue
			}

			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}

			// A single oversized sentence is cut at word boundaries.
			if runeLen(sentence) > config.MaxChunkSize {
				chunks = append(chunks, forceSplit(sentence, config.MaxChunkSize)...)
				continue
			}
			current.WriteString(sentence)
		}
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
		}

		if len(chunks) > 1 && config.OverlapTokens > 0 {
			chunks = addOverlap(chunks, config.OverlapTokens)
		}

		result := make([]string, 0, len(chunks))
		for _, chunk := range unmaskAll(chunks) {
			if strings.TrimSpace(chunk) != "" {
				result = append(result, chunk)
			}
		}
		return result, nil
	}, nil
}

// maskProtectedSpans replaces sentence terminators inside every protected
// match, except the final one, with the mask rune.
func maskProtectedSpans(text string, protected []*regexp.Regexp) string {
	for _, pattern := range protected {
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			runes := []rune(match)
			for i := 0; i < len(runes)-1; i++ {
				if sentenceTerminators[runes[i]] {
					runes[i] = sentenceMask
				}
			}
			return string(runes)
		})
	}
	return text
}

func unmask(text string) string {
	return strings.ReplaceAll(text, string(sentenceMask), ".")
}

func unmaskAll(chunks []string) []string {
	for i, chunk := range chunks {
		chunks[i] = unmask(chunk)
	}
	return chunks
}

// splitSentences cuts text after each sentence terminator, keeping the
// terminator and any following whitespace with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if !sentenceTerminators[runes[i]] {
			continue
		}
		for i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\n') {
			current.WriteRune(runes[i+1])
			i++
		}
		if strings.TrimSpace(current.String()) != "" {
			sentences = append(sentences, current.String())
		}
		current.Reset()
	}
	if strings.TrimSpace(current.String()) != "" {
		sentences = append(sentences, current.String())
	}

	// Only whitespace tails count as sentences when a terminator was seen.
	if len(sentences) == 1 && !endsWithTerminator(sentences[0]) && sentences[0] == text {
		return nil
	}
	return sentences
}

func endsWithTerminator(sentence string) bool {
	trimmed := strings.TrimRight(sentence, " \n")
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return false
	}
	return sentenceTerminators[runes[len(runes)-1]]
}

// forceSplit cuts an oversized text at word boundaries into pieces of at
// most maxSize runes.
func forceSplit(text string, maxSize int) []string {
	var chunks []string
	var currentWords []string
	currentLength := 0

	for _, word := range strings.Fields(text) {
		wordLength := runeLen(word)
		if currentLength+wordLength <= maxSize {
			currentWords = append(currentWords, word)
			currentLength += wordLength + 1
			continue
		}
		if len(currentWords) > 0 {
			chunks = append(chunks, strings.Join(currentWords, " "))
		}
		currentWords = []string{word}
		currentLength = wordLength
	}
	if len(currentWords) > 0 {
		chunks = append(chunks, strings.Join(currentWords, " "))
	}
	return chunks
}

// addOverlap prepends the trailing tokens of each chunk to its successor.
// The first chunk is returned unchanged.
func addOverlap(chunks []string, overlapTokens int) []string {
	overlapped := make([]string, 0, len(chunks))
	overlapped = append(overlapped, chunks[0])

	for i := 1; i < len(chunks); i++ {
		previousWords := strings.Fields(chunks[i-1])
		if len(previousWords) > overlapTokens {
			overlap := strings.Join(previousWords[len(previousWords)-overlapTokens:], " ")
			overlapped = append(overlapped, overlap+" "+chunks[i])
		} else {
			overlapped = append(overlapped, chunks[i])
		}
	}
	return overlapped
}

func runeLen(text string) int {
	return len([]rune(text))
}
