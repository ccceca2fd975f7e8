package quotes

import "strings"

var owoReplacer = strings.NewReplacer(
	"ove", "wuw",
	"R", "W",
	"r", "w",
	"L", "W",
	"l", "w",
)

// OwO rewrites text in the bot's playful register.
func OwO(text string) string {
	return owoReplacer.Replace(text)
}
