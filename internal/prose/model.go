// Package prose implements a variable-order Markov chain text generator.
//
// A Model learns short statements ("facts") and later produces novel
// statements one token at a time. Every context length from 1 to order-1
// contributes next-token counts to a single shared table, and generation
// blends all of them by raw count. Punctuation is carried as synthetic
// tokens and rendered by a small state machine that keeps quotes, brackets
// and emphasis balanced.
//
// A Model is safe for concurrent use: training is exclusive, while
// generation, provenance lookups and token enumeration share a read lock.
package prose

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrInvalidOrder is returned by New when the order is below 2.
var ErrInvalidOrder = errors.New("prose: order must be at least 2")

// Model is the trained state of the generator.
type Model struct {
	mu sync.RWMutex

	order int

	// dataset maps a context hash (of any length) to next-token counts.
	dataset map[uint64]map[string]int

	// dictionary maps each token to the facts it was learned from.
	dictionary map[string]map[FactKey]*Fact

	// cont is never reset, so consecutive facts share some context.
	cont *Buffer

	facts map[FactKey]struct{}

	logger *zap.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used for training traces (debug level).
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns an empty model with maximum context order n.
func New(n int, opts ...Option) (*Model, error) {
	if n < 2 {
		return nil, ErrInvalidOrder
	}

	m := &Model{
		order:      n,
		dataset:    make(map[uint64]map[string]int),
		dictionary: map[string]map[FactKey]*Fact{TokenEnd: {}},
		cont:       NewBuffer(n),
		facts:      make(map[FactKey]struct{}),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Train tokenizes text and learns from it. The returned fact may hold no
// tokens, in which case nothing was learned.
func (m *Model) Train(text, source string) *Fact {
	f := NewFact(text, source)
	m.TrainFact(f)
	return f
}

// TrainFact learns from an already tokenized fact. It reports false when
// the fact has no tokens.
func (m *Model) TrainFact(f *Fact) bool {
	if len(f.Tokens) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := f.Key()
	for _, tok := range f.Tokens {
		set, ok := m.dictionary[tok]
		if !ok {
			set = make(map[FactKey]*Fact)
			m.dictionary[tok] = set
		}
		set[key] = f
	}
	m.facts[key] = struct{}{}

	m.logger.Debug("learning fact", zap.String("source", f.Source), zap.Strings("tokens", f.Tokens))

	words := make([]string, 0, len(f.Tokens)+1)
	words = append(words, f.Tokens...)
	words = append(words, TokenEnd)

	m.addWords(m.cont, words)
	m.addWords(NewBuffer(m.order), words)
	return true
}

func (m *Model) addWords(buf *Buffer, words []string) {
	for _, word := range words {
		if word == "" {
			continue
		}
		m.addWord(buf, word)
		buf.Push(word)
	}
}

// addWord counts word as a continuation of every context length in buf.
// While buf is not yet deep enough, longer lengths hash to the same value as
// the shorter ones and are skipped.
func (m *Model) addWord(buf *Buffer, word string) {
	var last uint64
	for k := 1; k < m.order; k++ {
		h := buf.Hash(k)
		if k > 1 && h == last {
			break
		}
		last = h

		counts, ok := m.dataset[h]
		if !ok {
			counts = make(map[string]int)
			m.dataset[h] = counts
		}
		counts[word]++

		if ce := m.logger.Check(zap.DebugLevel, "phrase continues"); ce != nil {
			ce.Write(zap.String("phrase", buf.String(k)), zap.String("token", word))
		}
	}
}

// candidates sums the next-token counts of every context length in buf.
// The result is a fresh map owned by the caller.
func (m *Model) candidates(buf *Buffer) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	options := make(map[string]int)
	for k := 1; k < buf.Size(); k++ {
		for tok, n := range m.dataset[buf.Hash(k)] {
			options[tok] += n
		}
	}
	return options
}

// Generate produces one statement of at least minLength characters where
// the data allows it. With too little data the result may be short or
// empty; callers apply their own acceptance policy.
func (m *Model) Generate(minLength int) string {
	return NewQuote(m, minLength).Make()
}

// Known reports whether token has been learned.
func (m *Model) Known(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.dictionary[token]
	return ok
}

// LookupProvenance returns the facts that produced token, ordered by source
// and text. Unknown tokens yield an empty slice.
func (m *Model) LookupProvenance(token string) []Fact {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedFacts(m.dictionary[token])
}

// AllTokens returns every known token in sorted order.
func (m *Model) AllTokens() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tokens := make([]string, 0, len(m.dictionary))
	for tok := range m.dictionary {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// Snapshot copies the provenance index, for debug dumps.
func (m *Model) Snapshot() map[string][]Fact {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]Fact, len(m.dictionary))
	for tok, set := range m.dictionary {
		out[tok] = sortedFacts(set)
	}
	return out
}

// Stats summarizes the size of a model.
type Stats struct {
	Order    int `json:"order"`
	Facts    int `json:"facts"`
	Tokens   int `json:"tokens"`
	Contexts int `json:"contexts"`
}

// Stats returns the current model size.
func (m *Model) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Order:    m.order,
		Facts:    len(m.facts),
		Tokens:   len(m.dictionary),
		Contexts: len(m.dataset),
	}
}

func sortedFacts(set map[FactKey]*Fact) []Fact {
	facts := make([]Fact, 0, len(set))
	for _, f := range set {
		facts = append(facts, *f)
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].Source != facts[j].Source {
			return facts[i].Source < facts[j].Source
		}
		return facts[i].Original < facts[j].Original
	})
	return facts
}
