package extract

import (
	"fmt"
	"strings"

	"github.com/wfiftyfour/graphrag/pkg/common"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultEncoding  = "cl100k_base"
	defaultMaxTokens = 300
	// sentences carried over into the next chunk
	overlapSentences = 2
)

// Chunker splits document text into overlapping chunks measured in model
// tokens. Splitting happens at sentence boundaries; a chunk never cuts a
// sentence in half, so a single oversized sentence becomes its own chunk.
type Chunker struct {
	enc       *tiktoken.Tiktoken
	maxTokens int
}

// NewChunkerParams contains configuration options for creating a Chunker.
type NewChunkerParams struct {
	// Encoding is the tiktoken encoding name. Defaults to cl100k_base.
	Encoding string
	// MaxTokens is the chunk size ceiling in tokens. Defaults to 300.
	MaxTokens int
}

// NewChunker creates a Chunker with the given parameters.
func NewChunker(params NewChunkerParams) (*Chunker, error) {
	encoding := params.Encoding
	if encoding == "" {
		encoding = defaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoding %q: %w", encoding, err)
	}

	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Chunker{enc: enc, maxTokens: maxTokens}, nil
}

// ChunkDocument splits a document into chunks. Chunk IDs follow the
// "<docID>_chunk_<index>" convention so that chunk provenance survives
// checkpointing and retry passes.
func (c *Chunker) ChunkDocument(docID, text string) []common.Chunk {
	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []common.Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		index := len(chunks)
		chunks = append(chunks, common.Chunk{
			ChunkID: fmt.Sprintf("%s_chunk_%d", docID, index),
			DocID:   docID,
			Text:    strings.Join(current, " "),
			Index:   index,
		})

		// seed the next chunk with trailing sentences for continuity
		if len(current) >= overlapSentences {
			current = append([]string(nil), current[len(current)-overlapSentences:]...)
		} else {
			current = nil
		}
		currentTokens = c.countTokens(strings.Join(current, " "))
	}

	for _, sentence := range sentences {
		tokens := c.countTokens(sentence)
		if currentTokens+tokens > c.maxTokens && len(current) > 0 {
			flush()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}
	if len(current) > 0 {
		index := len(chunks)
		chunks = append(chunks, common.Chunk{
			ChunkID: fmt.Sprintf("%s_chunk_%d", docID, index),
			DocID:   docID,
			Text:    strings.Join(current, " "),
			Index:   index,
		})
	}

	return chunks
}

func (c *Chunker) countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// splitIntoSentences breaks text at sentence-ending punctuation followed
// by whitespace. Whitespace-only fragments are dropped.
func splitIntoSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var b strings.Builder
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' || runes[i+1] == '\r' {
				s := strings.TrimSpace(b.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				b.Reset()
			}
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
