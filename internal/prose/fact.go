package prose

import (
	"regexp"
	"strings"
)

// Fact is one piece of training input together with the tokens derived
// from it. Facts are immutable once constructed; two facts are the same
// fact when both Source and Original match.
type Fact struct {
	Source   string   `json:"source"`
	Original string   `json:"text"`
	Tokens   []string `json:"tokens"`
}

// FactKey identifies a Fact independently of its tokens.
type FactKey struct {
	Source   string
	Original string
}

// space is the character class of every Unicode space. RE2's \s alone
// only covers ASCII.
const space = `\s\v\x1c-\x1f\x{85}\p{Z}`

var (
	doubleQuoteWord   = regexp.MustCompile(`(?:^| )"([^` + space + `]+)"(?: |$)`)
	doubleQuoteSpan   = regexp.MustCompile(`(?:^| )"([^"]+)"(?: |$)`)
	singleQuoteWord   = regexp.MustCompile(`(?:^| )'([^` + space + `]+)'(?: |$)`)
	singleQuoteSpan   = regexp.MustCompile(`(?:^| )'(.+)'(?: |$)`)
	smallNumber       = regexp.MustCompile(`(?:^| )[0-9](?: |$)`)
	bigNumber         = regexp.MustCompile(`(?:^| )[0-9]+(?: |$)`)
	doNotWant         = regexp.MustCompile(`(?:^| )nooo+(?: |$)`)
	surprise          = regexp.MustCompile(`(?:^| )oo+h+(?: |$)`)
	textEnDash        = regexp.MustCompile(`([\p{L}\p{N}_])(--|–)`)
	ellipsisWithPunct = regexp.MustCompile(`\.\.\.+([?!])`)
	ellipsis          = regexp.MustCompile(`(\.\.\.+|…)`)
	emphasis          = regexp.MustCompile(`(?:^| )\*([^*]+)\*(?: |$)`)
	bracketsRound     = regexp.MustCompile(`(?:^| )\(([^)]+)\)(?: |$)`)
	bracketsSquare    = regexp.MustCompile(`(?:^| )\[([^!][^\]]+)\](?: |$)`)
	generalPunct      = regexp.MustCompile(`([?!.,;:‽])([` + space + `?!]|$)`)
	whitespace        = regexp.MustCompile(`[` + space + `]+`)
	nonWordChars      = regexp.MustCompile(`[^\p{L}'’\-]+`)
)

const (
	quoteReplacement    = " " + TokenOpenQuote + " ${1} " + TokenCloseQuote + " "
	emphasisReplacement = " " + TokenOpenEmphasis + " ${1} " + TokenCloseEmphasis + " "
	bracketsReplacement = " " + TokenOpenBrackets + " ${1} " + TokenCloseBrackets + " "
)

// NewFact tokenizes text and labels it with source.
func NewFact(text, source string) *Fact {
	return &Fact{
		Source:   source,
		Original: text,
		Tokens:   Tokenize(text),
	}
}

// Key returns the identity of the fact.
func (f *Fact) Key() FactKey {
	return FactKey{Source: f.Source, Original: f.Original}
}

// Tokenize normalizes text into the token sequence used for training.
// The order of the rewrite passes matters: quoting can expose punctuation
// that the first punctuation pass could not see, so that pass runs twice.
func Tokenize(text string) []string {
	data := strings.TrimSpace(strings.ToLower(text))

	data = textEnDash.ReplaceAllString(data, "${1} "+TokenEnDash+" ")
	data = replacePunctuation(data)

	data = emphasis.ReplaceAllString(data, emphasisReplacement)
	data = bracketsRound.ReplaceAllString(data, bracketsReplacement)
	data = bracketsSquare.ReplaceAllString(data, bracketsReplacement)
	data = doubleQuoteWord.ReplaceAllString(data, quoteReplacement)
	data = doubleQuoteSpan.ReplaceAllString(data, quoteReplacement)
	data = singleQuoteWord.ReplaceAllString(data, quoteReplacement)
	data = singleQuoteSpan.ReplaceAllString(data, quoteReplacement)

	data = replacePunctuation(data)
	data = smallNumber.ReplaceAllString(data, " "+TokenNumber+" ")
	data = bigNumber.ReplaceAllString(data, " "+TokenBigNumber+" ")
	data = doNotWant.ReplaceAllString(data, " nooooo ")
	data = surprise.ReplaceAllString(data, " oooooh ")
	data = whitespace.ReplaceAllString(data, " ")

	fields := strings.Fields(data)
	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if !IsSynthetic(tok) {
			tok = nonWordChars.ReplaceAllString(misspell(tok), "")
		}
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// replacePunctuation collapses ellipses and turns sentence punctuation into
// synthetic tokens.
func replacePunctuation(data string) string {
	data = ellipsisWithPunct.ReplaceAllString(data, " "+TokenEllipsis+" ${1} ")
	data = ellipsis.ReplaceAllString(data, " "+TokenEllipsis+" ")
	return generalPunct.ReplaceAllStringFunc(data, punctuationMatch)
}

// punctuationMatch rewrites one generalPunct match. The character after the
// mark is part of the match and is replaced along with it.
func punctuationMatch(match string) string {
	mark := generalPunct.FindStringSubmatch(match)[1]
	if token, ok := punctuationToken(mark); ok {
		return " " + token + " "
	}
	return " " + mark + " "
}
