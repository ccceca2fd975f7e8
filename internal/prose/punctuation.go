package prose

// Synthetic tokens produced by the tokenizer. Ordinary words cannot take
// this form because tokenization strips '[' and '!' from them.
const (
	TokenEnd           = "[!END]"
	TokenEnDash        = "[!EN_DASH]"
	TokenEmDash        = "[!EM_DASH]"
	TokenPeriod        = "[!PERIOD]"
	TokenEllipsis      = "[!ELLIPSIS]"
	TokenExclamation   = "[!EXCLAMATION]"
	TokenQuestion      = "[!QUESTION]"
	TokenInterrobang   = "[!INTERROBANG]"
	TokenComma         = "[!COMMA]"
	TokenSemicolon     = "[!SEMICOLON]"
	TokenColon         = "[!COLON]"
	TokenOpenQuote     = "[!OPEN_QUOTE]"
	TokenCloseQuote    = "[!CLOSE_QUOTE]"
	TokenOpenEmphasis  = "[!OPEN_EMPHASIS]"
	TokenCloseEmphasis = "[!CLOSE_EMPHASIS]"
	TokenOpenBrackets  = "[!OPEN_BRACKETS]"
	TokenCloseBrackets = "[!CLOSE_BRACKETS]"
	TokenBigNumber     = "[!BIG_NUMBER]"
	TokenNumber        = "[!NUMBER]"
)

// Punctuation describes how a synthetic token is rendered.
type Punctuation struct {
	Text         string
	SpaceBefore  bool
	SpaceAfter   bool
	MayEndQuote  bool
	CapitalAfter bool

	// BlockOpen and BlockClose are set for nestable constructs (quotes,
	// emphasis, brackets). Both halves of a pair carry the same values.
	BlockOpen  string
	BlockClose string
}

// IsBlock reports whether p is one half of an open/close pair.
func (p Punctuation) IsBlock() bool {
	return p.BlockClose != ""
}

type punctuationEntry struct {
	token string
	Punctuation
}

// punctuationOrder is the declaration order of the table. Lookups by display
// text walk it so that the first entry with a given text wins.
var punctuationOrder = []punctuationEntry{
	{TokenEnDash, Punctuation{Text: "–"}},
	{TokenEmDash, Punctuation{Text: "—"}},
	{TokenPeriod, Punctuation{Text: ".", SpaceAfter: true, MayEndQuote: true, CapitalAfter: true}},
	{TokenEllipsis, Punctuation{Text: "…", SpaceAfter: true, MayEndQuote: true}},
	{TokenExclamation, Punctuation{Text: "!", SpaceAfter: true, MayEndQuote: true, CapitalAfter: true}},
	{TokenQuestion, Punctuation{Text: "?", SpaceAfter: true, MayEndQuote: true, CapitalAfter: true}},
	{TokenInterrobang, Punctuation{Text: "‽", SpaceAfter: true, MayEndQuote: true, CapitalAfter: true}},
	{TokenComma, Punctuation{Text: ",", SpaceAfter: true}},
	{TokenSemicolon, Punctuation{Text: ";", SpaceAfter: true}},
	{TokenColon, Punctuation{Text: ":", SpaceAfter: true}},
	{TokenOpenQuote, Punctuation{Text: `"`, SpaceBefore: true, BlockOpen: TokenOpenQuote, BlockClose: TokenCloseQuote}},
	{TokenCloseQuote, Punctuation{Text: `"`, SpaceAfter: true, BlockOpen: TokenOpenQuote, BlockClose: TokenCloseQuote}},
	{TokenOpenEmphasis, Punctuation{Text: "*", SpaceBefore: true, BlockOpen: TokenOpenEmphasis, BlockClose: TokenCloseEmphasis}},
	{TokenCloseEmphasis, Punctuation{Text: "*", SpaceAfter: true, BlockOpen: TokenOpenEmphasis, BlockClose: TokenCloseEmphasis}},
	{TokenOpenBrackets, Punctuation{Text: "(", SpaceBefore: true, BlockOpen: TokenOpenBrackets, BlockClose: TokenCloseBrackets}},
	{TokenCloseBrackets, Punctuation{Text: ")", SpaceAfter: true, BlockOpen: TokenOpenBrackets, BlockClose: TokenCloseBrackets}},
	{TokenBigNumber, Punctuation{Text: "69", SpaceBefore: true, SpaceAfter: true}},
	{TokenNumber, Punctuation{Text: "off-by-one", SpaceBefore: true, SpaceAfter: true}},
}

var punctuationTable = func() map[string]Punctuation {
	table := make(map[string]Punctuation, len(punctuationOrder))
	for _, e := range punctuationOrder {
		table[e.token] = e.Punctuation
	}
	return table
}()

// LookupPunctuation returns the rendering rules for a synthetic token.
func LookupPunctuation(token string) (Punctuation, bool) {
	p, ok := punctuationTable[token]
	return p, ok
}

// punctuationToken maps display text back to its synthetic token.
func punctuationToken(text string) (string, bool) {
	for _, e := range punctuationOrder {
		if e.Text == text {
			return e.token, true
		}
	}
	return "", false
}

// IsSynthetic reports whether token is a marker produced by the tokenizer
// rather than a word from the input.
func IsSynthetic(token string) bool {
	if token == TokenEnd {
		return true
	}
	_, ok := punctuationTable[token]
	return ok
}
