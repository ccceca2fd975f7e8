package prose

// corrections folds common chat spellings onto one canonical token so the
// model does not split its statistics between variants.
var corrections = map[string]string{
	"cant":       "can't",
	"couldnt":    "couldn't",
	"definately": "definitely",
	"didnt":      "didn't",
	"doesnt":     "doesn't",
	"dont":       "don't",
	"gonna":      "going-to",
	"im":         "i'm",
	"isnt":       "isn't",
	"ive":        "i've",
	"recieve":    "receive",
	"seperate":   "separate",
	"shouldnt":   "shouldn't",
	"teh":        "the",
	"thats":      "that's",
	"theyre":     "they're",
	"u":          "you",
	"ur":         "your",
	"wanna":      "want-to",
	"wasnt":      "wasn't",
	"whats":      "what's",
	"wont":       "won't",
	"wouldnt":    "wouldn't",
	"youre":      "you're",
}

// misspell returns the canonical spelling of token, or token itself.
func misspell(token string) string {
	if fixed, ok := corrections[token]; ok {
		return fixed
	}
	return token
}
