package extract

import (
	"regexp"

	"github.com/samber/lo"
)

var (
	mentionPattern = regexp.MustCompile(`@(\w+)`)
	tagPattern     = regexp.MustCompile(`#(\w+)`)
	productPattern = regexp.MustCompile(`\$([\w-]+)`)
)

// Tokens is the raw scan result of a post text. Each list is de-duplicated
// preserving first occurrence, so within one extraction pass a target is
// linked at most once even if the text repeats it.
type Tokens struct {
	Mentions []string
	Tags     []string
	Products []string
}

// Scan is a pure function of the post text.
func Scan(text string) Tokens {
	return Tokens{
		Mentions: captures(mentionPattern, text),
		Tags:     captures(tagPattern, text),
		Products: captures(productPattern, text),
	}
}

func captures(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	return lo.Uniq(lo.Map(matches, func(m []string, _ int) string {
		return m[1]
	}))
}
