package domain

import "context"

// Prompt is one request to a chat model
type Prompt struct {
	System string
	User   string
}

// LLMTransport sends a prompt to a language model and returns its raw text.
// Failures are reported as TRANSPORT_ERROR, RATE_LIMITED or TIMEOUT.
type LLMTransport interface {
	Call(ctx context.Context, prompt Prompt) (string, error)
}

// TextExtractor turns an uploaded file into plain text.
// Failures are reported as UNSUPPORTED_FORMAT or EXTRACTION_ERROR.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// QuestionGenerator asks a model for questions about one segment and returns
// its raw output.
type QuestionGenerator interface {
	Generate(ctx context.Context, segment string, minQ, maxQ int) (string, error)
}

// QuestionParser is the only path from raw model output to Question records.
type QuestionParser interface {
	Parse(raw string, chunk *KnowledgeChunk) ([]*Question, []RejectedEntry)
}
