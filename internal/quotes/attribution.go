package quotes

import "github.com/HendryAvila/snerge/internal/prose"

// Attribution is the public view of a fact: where it came from and what it
// said.
type Attribution struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Attribute converts facts to attributions, keeping their order.
func Attribute(facts []prose.Fact) []Attribution {
	out := make([]Attribution, len(facts))
	for i, f := range facts {
		out[i] = Attribution{ID: f.Source, Text: f.Original}
	}
	return out
}

// AttributeAll converts a token index such as the result of Whence or
// prose.Model.Snapshot.
func AttributeAll(index map[string][]prose.Fact) map[string][]Attribution {
	out := make(map[string][]Attribution, len(index))
	for tok, facts := range index {
		out[tok] = Attribute(facts)
	}
	return out
}
