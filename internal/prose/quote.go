package prose

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ending tells why a statement stopped.
type Ending int

const (
	// EndMarker means the end-of-statement token was drawn.
	EndMarker Ending = iota
	// EndExhausted means no candidate token was left. The statement is
	// still returned, it is just likely to be of poor quality.
	EndExhausted
)

func (e Ending) String() string {
	switch e {
	case EndMarker:
		return "end"
	case EndExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// maxStatementTokens bounds a single statement on models whose only
// continuations are rejected block tokens.
const maxStatementTokens = 4096

// closeBias multiplies the weight of a token that closes an open block.
const closeBias = 4

// errBlockUnderflow is raised when a close cascade runs out of open blocks
// before it finds the one being closed. Candidate selection never offers a
// close token whose opener is missing, so reaching it means a bug.
var errBlockUnderflow = errors.New("prose: block stack emptied while closing a block")

// Quote builds a single statement from a Model. A Quote is not safe for
// concurrent use; make one per statement.
type Quote struct {
	model     *Model
	buffer    *Buffer
	minLength int
	rng       *rand.Rand

	output strings.Builder
	tokens []string
	blocks []string

	capitalize  bool
	spaceBefore bool
}

// QuoteOption configures a Quote.
type QuoteOption func(*Quote)

// WithRand draws tokens from r instead of the shared source.
func WithRand(r *rand.Rand) QuoteOption {
	return func(q *Quote) { q.rng = r }
}

// NewQuote starts an empty statement that may not end before it is longer
// than minLength characters.
func NewQuote(m *Model, minLength int, opts ...QuoteOption) *Quote {
	q := &Quote{
		model:      m,
		buffer:     NewBuffer(m.order),
		minLength:  minLength,
		capitalize: true,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Make completes the statement and returns its text.
func (q *Quote) Make() string {
	text, _ := q.Statement()
	return text
}

// Statement completes the statement and reports why it stopped.
func (q *Quote) Statement() (string, Ending) {
	for range maxStatementTokens {
		tok, ok := q.nextToken()
		if !ok {
			return q.Text(), EndExhausted
		}
		if tok == TokenEnd {
			return q.Text(), EndMarker
		}
		q.AppendToken(tok)
	}
	return q.Text(), EndExhausted
}

// Text returns the statement built so far.
func (q *Quote) Text() string {
	return strings.TrimSpace(q.output.String())
}

// Tokens returns the tokens rendered so far, including closes emitted while
// cascading out of nested blocks. Rejected block tokens are left out.
func (q *Quote) Tokens() []string {
	return slices.Clone(q.tokens)
}

// OpenBlocks returns the currently open block tokens, outermost first.
func (q *Quote) OpenBlocks() []string {
	return slices.Clone(q.blocks)
}

// canEnd reports whether the end marker may be drawn.
func (q *Quote) canEnd() bool {
	return utf8.RuneCountInString(q.output.String()) > q.minLength && len(q.blocks) == 0
}

// nextToken draws the next token. It returns false when nothing can follow.
func (q *Quote) nextToken() (string, bool) {
	options := q.model.candidates(q.buffer)

	if !q.canEnd() {
		delete(options, TokenEnd)
	}

	for _, open := range q.blocks {
		delete(options, open)
		closer := punctuationTable[open].BlockClose
		if n, ok := options[closer]; ok {
			options[closer] = n * closeBias
		}
	}

	total := 0
	keys := make([]string, 0, len(options))
	for tok, n := range options {
		total += n
		keys = append(keys, tok)
	}
	if total == 0 {
		return "", false
	}
	sort.Strings(keys)

	i := q.intN(total)
	for _, tok := range keys {
		i -= options[tok]
		if i < 0 {
			return tok, true
		}
	}
	return keys[len(keys)-1], true
}

func (q *Quote) intN(n int) int {
	if q.rng != nil {
		return q.rng.IntN(n)
	}
	return rand.IntN(n)
}

// AppendToken adds token to the statement. It is also used to seed a
// statement with a prompt before calling Make.
func (q *Quote) AppendToken(token string) {
	q.buffer.Push(token)

	if p, ok := punctuationTable[token]; ok {
		if q.punctuate(token, p) {
			q.tokens = append(q.tokens, token)
		}
		return
	}
	q.tokens = append(q.tokens, token)
	q.appendText(token, true)
}

func (q *Quote) appendText(text string, capitalize bool) {
	if capitalize && q.capitalize {
		text = upperFirst(text)
	}
	q.capitalize = false

	if q.spaceBefore {
		q.output.WriteByte(' ')
	}
	q.output.WriteString(text)
	q.spaceBefore = true
}

// punctuate renders a synthetic token. It reports false when a block token
// was rejected and nothing was written.
func (q *Quote) punctuate(token string, p Punctuation) bool {
	wasSpace, wasCapital := q.spaceBefore, q.capitalize

	q.spaceBefore = q.spaceBefore && p.SpaceBefore

	if p.IsBlock() {
		if !q.changeBlock(token, p) {
			q.spaceBefore, q.capitalize = wasSpace, wasCapital
			return false
		}
	}

	q.emit(p, wasCapital)
	return true
}

func (q *Quote) emit(p Punctuation, wasCapital bool) {
	q.appendText(p.Text, false)
	q.spaceBefore = p.SpaceAfter
	q.capitalize = wasCapital || p.CapitalAfter
}

// changeBlock opens or closes a block. Closing a block first closes any
// block opened inside it. It reports false when the token is rejected: an
// opener for a block that is already open, or a closer with no opener.
func (q *Quote) changeBlock(token string, p Punctuation) bool {
	if token == p.BlockOpen {
		if slices.Contains(q.blocks, token) {
			return false
		}
		q.blocks = append(q.blocks, token)
		return true
	}

	if !slices.Contains(q.blocks, p.BlockOpen) {
		return false
	}
	q.closeBlock(p.BlockOpen)
	return true
}

// closeBlock pops blocks up to and including open, rendering a close for
// every inner block it passes.
func (q *Quote) closeBlock(open string) {
	for len(q.blocks) > 0 {
		top := q.blocks[len(q.blocks)-1]
		q.blocks = q.blocks[:len(q.blocks)-1]

		if top == open {
			return
		}

		closer := punctuationTable[top].BlockClose
		inner := punctuationTable[closer]
		q.tokens = append(q.tokens, closer)
		q.spaceBefore = q.spaceBefore && inner.SpaceBefore
		q.emit(inner, q.capitalize)
	}

	panic(errBlockUnderflow)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToTitle(r)) + s[size:]
}
