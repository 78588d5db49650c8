package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/util"

	"go.uber.org/zap"
)

// Parser converts raw model output into validated questions. It never
// fails as a whole: every block either becomes a question or a rejection.
type Parser struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger, now: time.Now}
}

// candidate is one question-shaped block before validation.
type candidate struct {
	raw         string
	text        string
	options     []string
	answer      string
	explanation string
	decodeErr   error
}

type mcqPayload struct {
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Answer        json.RawMessage `json:"answer"`
	Explanation   string          `json:"explanation"`
}

var (
	optionLineRe      = regexp.MustCompile(`^\s*\(?([A-Da-d])[\)\.:]\s*(.*)$`)
	answerLineRe      = regexp.MustCompile(`(?i)^\s*(?:correct\s+)?answer\s*[:\-]\s*(.+)$`)
	explanationLineRe = regexp.MustCompile(`(?i)^\s*explanation\s*[:\-]\s*(.*)$`)
	questionHeadRe    = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:q(?:uestion)?\s*\d*\s*[:.)]|\d+\s*[.)])\s*`)
	answerLetterRe    = regexp.MustCompile(`^\(?([A-Da-d])(?:[\)\.:]|\s|$)`)
)

// Parse extracts questions for one chunk. Questions carry the chunk's owner
// and id; rejections carry the chunk index.
func (p *Parser) Parse(raw string, chunk *domain.KnowledgeChunk) ([]*domain.Question, []domain.RejectedEntry) {
	cleaned := stripFences(stripThinking(raw))

	candidates, ok := p.jsonCandidates(cleaned)
	if !ok {
		candidates = textCandidates(cleaned)
	}

	chunkIndex := 0
	if chunk != nil {
		chunkIndex = chunk.ChunkIndex
	}
	if len(candidates) == 0 {
		return nil, []domain.RejectedEntry{{
			ChunkIndex: chunkIndex,
			Reason:     "no question blocks found",
			RawBlock:   strings.TrimSpace(raw),
		}}
	}

	var (
		questions []*domain.Question
		rejected  []domain.RejectedEntry
		seen      = make(map[string]struct{})
	)
	now := p.now().UTC()

	for _, c := range candidates {
		q, err := c.build()
		if err != nil {
			rejected = append(rejected, domain.RejectedEntry{ChunkIndex: chunkIndex, Reason: reason(err), RawBlock: c.raw})
			continue
		}
		key := domain.NormalizeKey(q.Text)
		if _, dup := seen[key]; dup {
			rejected = append(rejected, domain.RejectedEntry{ChunkIndex: chunkIndex, Reason: "duplicate question", RawBlock: c.raw})
			continue
		}
		seen[key] = struct{}{}

		q.ID = util.NewULID()
		q.CreatedAt = now
		q.UpdatedAt = now
		if chunk != nil {
			q.OwnerID = chunk.OwnerID
			q.SourceChunkID = chunk.ID
		}
		questions = append(questions, q)
	}

	if len(rejected) > 0 {
		p.logger.Debug("Rejected generated blocks",
			zap.Int("chunk_index", chunkIndex),
			zap.Int("accepted", len(questions)),
			zap.Int("rejected", len(rejected)))
	}
	return questions, rejected
}

func reason(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// stripThinking removes <think>...</think> sections emitted by reasoning models.
func stripThinking(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], "</think>")
		if end == -1 {
			return s[:start]
		}
		s = s[:start] + s[start+end+len("</think>"):]
	}
}

// stripFences returns the bodies of every Markdown code fence joined by
// newlines, or the trimmed text when there is none. An unclosed fence runs
// to the end of the text.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return strings.TrimSpace(s)
	}
	var bodies []string
	rest := s
	for {
		start := strings.Index(rest, "```")
		if start == -1 {
			break
		}
		body := rest[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.ContainsAny(body[:nl], "[{") {
			body = body[nl+1:]
		}
		end := strings.Index(body, "```")
		if end == -1 {
			bodies = append(bodies, strings.TrimSpace(body))
			break
		}
		bodies = append(bodies, strings.TrimSpace(body[:end]))
		rest = body[end+3:]
	}
	return strings.Join(bodies, "\n")
}

// jsonCandidates decodes a JSON array of question objects element by element.
// It reports false when the output is not JSON at all.
func (p *Parser) jsonCandidates(s string) ([]candidate, bool) {
	var truncated string
	elements, err := decodeArray(s)
	if err != nil {
		repaired := repairEscapes(s)
		elements, err = decodeArray(repaired)
		if err != nil {
			elements, truncated = splitObjects(repaired)
			if len(elements) == 0 && !strings.Contains(truncated, `"question"`) {
				return nil, false
			}
			p.logger.Debug("Decoding model output object by object",
				zap.Int("objects", len(elements)),
				zap.Bool("truncated", truncated != ""))
		}
	}

	candidates := make([]candidate, 0, len(elements))
	for _, el := range elements {
		c := candidate{raw: string(el)}
		var payload mcqPayload
		if err := json.Unmarshal(el, &payload); err != nil {
			c.decodeErr = fmt.Errorf("malformed question object: %w", err)
			candidates = append(candidates, c)
			continue
		}
		c.text = payload.Question
		c.explanation = payload.Explanation
		c.options, c.decodeErr = decodeOptions(payload.Options)
		answer := payload.CorrectAnswer
		if len(answer) == 0 {
			answer = payload.Answer
		}
		c.answer = decodeScalar(answer)
		candidates = append(candidates, c)
	}
	if truncated != "" {
		candidates = append(candidates, candidate{raw: truncated, decodeErr: errors.New("truncated question object")})
	}
	return candidates, true
}

func decodeArray(s string) ([]json.RawMessage, error) {
	if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start != -1 && end > start {
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(s[start:end+1]), &elements); err == nil {
			return elements, nil
		}
	}
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start != -1 && end > start {
		body := []byte(s[start : end+1])
		var wrapped struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Questions) > 0 {
			return wrapped.Questions, nil
		}
		var single mcqPayload
		if err := json.Unmarshal(body, &single); err == nil && single.Question != "" {
			return []json.RawMessage{body}, nil
		}
	}
	return nil, fmt.Errorf("no JSON question array found")
}

// splitObjects cuts text into top-level {...} spans that mention a question
// field, so one broken object does not spoil its siblings. An object still
// open at the end of the text is returned as truncated.
func splitObjects(s string) ([]json.RawMessage, string) {
	var (
		out      []json.RawMessage
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				obj := s[start : i+1]
				if strings.Contains(obj, `"question"`) {
					out = append(out, json.RawMessage(obj))
				}
				start = -1
			}
		}
	}
	if depth > 0 && start != -1 {
		return out, strings.TrimSpace(s[start:])
	}
	return out, ""
}

// repairEscapes fixes backslash sequences that are invalid in JSON strings.
func repairEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		if i+1 >= len(s) {
			b.WriteString(`\\`)
			continue
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte(ch)
			b.WriteByte(next)
			i++
		case '\'':
			b.WriteByte('\'')
			i++
		default:
			b.WriteString(`\\`)
		}
	}
	return b.String()
}

// decodeOptions accepts either ["..", ..] or {"A": "..", ...}.
func decodeOptions(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var byLetter map[string]string
	if err := json.Unmarshal(raw, &byLetter); err != nil {
		return nil, fmt.Errorf("options must be a list of strings")
	}
	keys := make([]string, 0, len(byLetter))
	for k := range byLetter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, byLetter[k])
	}
	return out, nil
}

func decodeScalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

// textCandidates splits plain-text output into question blocks.
func textCandidates(s string) []candidate {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")

	var blocks [][]string
	hasHeadings := false
	for _, line := range lines {
		if questionHeadRe.MatchString(line) {
			hasHeadings = true
			break
		}
	}

	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
		}
	}
	for _, line := range lines {
		if hasHeadings {
			if questionHeadRe.MatchString(line) {
				flush()
			}
		} else if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	var out []candidate
	for _, block := range blocks {
		c, ok := parseTextBlock(block)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// parseTextBlock reads one block. Blocks with neither option nor answer
// lines are prose, not questions.
func parseTextBlock(lines []string) (candidate, bool) {
	c := candidate{raw: strings.TrimSpace(strings.Join(lines, "\n"))}
	options := make(map[int]string)
	var textParts, explanationParts []string
	inExplanation := false
	sawStructure := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(strings.Trim(line, "*"))
		if trimmed == "" {
			continue
		}
		if i == 0 {
			trimmed = strings.TrimSpace(questionHeadRe.ReplaceAllString(trimmed, ""))
		}
		switch {
		case explanationLineRe.MatchString(trimmed):
			inExplanation = true
			explanationParts = append(explanationParts, explanationLineRe.FindStringSubmatch(trimmed)[1])
		case answerLineRe.MatchString(trimmed):
			sawStructure = true
			inExplanation = false
			c.answer = answerLineRe.FindStringSubmatch(trimmed)[1]
		case inExplanation:
			explanationParts = append(explanationParts, trimmed)
		case optionLineRe.MatchString(trimmed) && (len(options) > 0 || len(textParts) > 0):
			sawStructure = true
			m := optionLineRe.FindStringSubmatch(trimmed)
			options[int(strings.ToUpper(m[1])[0]-'A')] = m[2]
		case len(options) == 0:
			textParts = append(textParts, trimmed)
		}
	}
	if !sawStructure {
		return c, false
	}

	c.text = strings.Join(textParts, " ")
	c.explanation = strings.Join(explanationParts, " ")
	for i := 0; i < domain.OptionCount; i++ {
		opt, ok := options[i]
		if !ok {
			break
		}
		c.options = append(c.options, opt)
	}
	if len(options) > len(c.options) {
		c.decodeErr = fmt.Errorf("options are not labelled A to D in order")
	}
	return c, true
}

// build normalizes and validates the candidate.
func (c candidate) build() (*domain.Question, error) {
	if c.decodeErr != nil {
		return nil, c.decodeErr
	}
	q := &domain.Question{
		Text:        c.text,
		Options:     make([]string, len(c.options)),
		Explanation: c.explanation,
	}
	for i, opt := range c.options {
		q.Options[i] = stripOptionLabel(opt, i)
	}
	q.Normalize()

	idx, err := resolveAnswer(c.answer, q.Options)
	if err != nil {
		return nil, err
	}
	q.CorrectIndex = idx

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// stripOptionLabel removes a leading "A) " style label matching the position.
func stripOptionLabel(opt string, pos int) string {
	s := strings.TrimSpace(opt)
	if len(s) < 2 || pos >= domain.OptionCount {
		return s
	}
	letter := domain.OptionLetter(pos)
	rest := s
	if strings.HasPrefix(rest, "(") {
		rest = rest[1:]
	}
	if len(rest) < 2 || !strings.EqualFold(rest[:1], letter) {
		return s
	}
	switch rest[1] {
	case ')', '.', ':':
		return strings.TrimSpace(rest[2:])
	}
	return s
}

// resolveAnswer accepts the option text, a letter, or a number. Option text
// is tried first, then the letter. Numbers 1..4 are 1-based positions and 0
// is read as A.
func resolveAnswer(answer string, options []string) (int, error) {
	a := strings.TrimSpace(strings.Trim(answer, "* "))
	if a == "" {
		return -1, domain.NewValidationError("correct answer is missing")
	}
	key := domain.NormalizeKey(a)
	for i, opt := range options {
		if domain.NormalizeKey(opt) == key {
			return i, nil
		}
	}
	if m := answerLetterRe.FindStringSubmatch(a); m != nil {
		return int(strings.ToUpper(m[1])[0] - 'A'), nil
	}
	if n, err := strconv.Atoi(a); err == nil {
		switch {
		case n >= 1 && n <= domain.OptionCount:
			return n - 1, nil
		case n == 0:
			return 0, nil
		default:
			return n, nil
		}
	}
	return -1, domain.NewValidationError(fmt.Sprintf("correct answer %q does not match any option", a))
}
