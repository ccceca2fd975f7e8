// Package quotes applies the acceptance policy that turns raw model output
// into quotes fit for a chat line.
package quotes

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/HendryAvila/snerge/internal/config"
	"github.com/HendryAvila/snerge/internal/prose"
)

// PromptSource is the source label given to prompt text when it is
// tokenized.
const PromptSource = "chat"

// Speaker produces quotes from a trained model.
type Speaker struct {
	model  *prose.Model
	cfg    config.QuoteConfig
	logger *zap.Logger
	rng    *rand.Rand
}

// Option configures a Speaker.
type Option func(*Speaker)

// WithLogger sets the Speaker's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Speaker) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRand makes generation reproducible. The source is shared by every
// quote the Speaker makes, so a seeded Speaker must not be used from more
// than one goroutine.
func WithRand(r *rand.Rand) Option {
	return func(s *Speaker) { s.rng = r }
}

// NewSpeaker returns a Speaker over m using the length policy in cfg.
func NewSpeaker(m *prose.Model, cfg config.QuoteConfig, opts ...Option) *Speaker {
	s := &Speaker{model: m, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote makes a statement seeded with the known tokens of prompt and keeps
// the first one strictly between the configured lengths. When every attempt
// misses, the fallback line is returned instead.
func (s *Speaker) Quote(prompt string) string {
	seed := s.seedTokens(prompt)

	for attempt := range s.cfg.MaxAttempts {
		q := s.newQuote(s.cfg.MinLength)
		for _, tok := range seed {
			q.AppendToken(tok)
		}

		wisdom := q.Make()
		n := utf8.RuneCountInString(wisdom)
		if s.cfg.MinLength < n && n < s.cfg.MaxLength {
			s.logger.Debug("quote accepted", zap.Int("attempt", attempt+1), zap.Int("length", n))
			return wisdom
		}
	}

	s.logger.Info("quote attempts exhausted, using fallback",
		zap.Int("attempts", s.cfg.MaxAttempts), zap.String("prompt", prompt))
	return s.cfg.Fallback
}

// Statements makes count statements of at least the configured minimum
// length, skipping any longer than maxLength. Generation stops after
// MaxAttempts misses in a row so a sparse model cannot loop forever.
func (s *Speaker) Statements(count, maxLength int) []string {
	var out []string
	misses := 0
	for len(out) < count && misses < s.cfg.MaxAttempts {
		wisdom := s.newQuote(s.cfg.MinLength).Make()
		if wisdom == "" || utf8.RuneCountInString(wisdom) > maxLength {
			misses++
			continue
		}
		misses = 0
		out = append(out, wisdom)
	}
	return out
}

// Tokens pairs a piece of text with its tokens.
type Tokens struct {
	Text   string   `json:"text"`
	Tokens []string `json:"tokens"`
}

// Prediction is the result of continuing a prompt.
type Prediction struct {
	Input  Tokens `json:"input"`
	Output Tokens `json:"output"`
}

// Predict continues words with a single statement. Unknown prompt tokens
// are dropped; the output is re-tokenized so callers can see how it would
// be learned.
func (s *Speaker) Predict(words string) Prediction {
	seed := s.seedTokens(words)

	q := s.newQuote(s.cfg.PredictMin)
	for _, tok := range seed {
		q.AppendToken(tok)
	}
	statement := q.Make()

	out := prose.NewFact(statement, "")
	return Prediction{
		Input:  Tokens{Text: words, Tokens: seed},
		Output: Tokens{Text: out.Original, Tokens: out.Tokens},
	}
}

// Whence looks up every space separated word of query and returns the
// facts each one was learned from. Words are matched as tokens, so
// punctuation must be given in its token form.
func (s *Speaker) Whence(query string) map[string][]prose.Fact {
	out := make(map[string][]prose.Fact)
	for _, word := range strings.Split(strings.TrimSpace(query), " ") {
		out[word] = s.model.LookupProvenance(word)
	}
	return out
}

func (s *Speaker) seedTokens(prompt string) []string {
	seed := []string{}
	for _, tok := range prose.NewFact(prompt, PromptSource).Tokens {
		if s.model.Known(tok) {
			seed = append(seed, tok)
		}
	}
	return seed
}

func (s *Speaker) newQuote(minLength int) *prose.Quote {
	if s.rng != nil {
		return prose.NewQuote(s.model, minLength, prose.WithRand(s.rng))
	}
	return prose.NewQuote(s.model, minLength)
}
