// Package textfilter keeps generated court dialogue in register: coarse
// words and modern slang are swapped for period phrasing.
package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// coarse words are replaced whatever the setting.
var coarse = map[string]string{
	"fuck":      "curse",
	"fucking":   "cursed",
	"shit":      "dung",
	"bullshit":  "nonsense",
	"damn":      "blast",
	"damned":    "blasted",
	"goddamn":   "god-cursed",
	"hell":      "perdition",
	"ass":       "fool",
	"asshole":   "scoundrel",
	"bitch":     "wretch",
	"bastard":   "knave",
	"crap":      "rubbish",
	"piss":      "vex",
	"dick":      "lout",
	"prick":     "lout",
	"jackass":   "dolt",
	"dumbass":   "dolt",
	"shithead":  "varlet",
	"dickhead":  "varlet",
	"douchebag": "cur",
}

// modern words break the medieval setting.
var modern = map[string]string{
	"okay":    "very well",
	"ok":      "very well",
	"guys":    "my lords",
	"dollars": "crowns",
	"cops":    "watchmen",
	"police":  "the watch",
	"awesome": "splendid",
	"cool":    "fine",
	"yeah":    "aye",
	"nope":    "nay",
	"kids":    "children",
}

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Filter rewrites text into court register.
type Filter struct {
	rules []rule
}

// New creates a filter. With modernisms false only coarse language is
// replaced.
func New(modernisms bool) *Filter {
	words := make(map[string]string, len(coarse)+len(modern))
	for k, v := range coarse {
		words[k] = v
	}
	if modernisms {
		for k, v := range modern {
			words[k] = v
		}
	}

	// Longest first so "bullshit" wins over "shit".
	keys := make([]string, 0, len(words))
	for k := range words {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	f := &Filter{rules: make([]rule, 0, len(keys))}
	for _, k := range keys {
		f.rules = append(f.rules, rule{
			re:          regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(k) + `\b`),
			replacement: words[k],
		})
	}
	return f
}

// Apply returns text with every listed word replaced, keeping the case
// pattern of the original.
func (f *Filter) Apply(text string) string {
	result := text
	for _, r := range f.rules {
		result = r.re.ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, r.replacement)
		})
	}
	return result
}

// Contains reports whether text holds any listed word.
func (f *Filter) Contains(text string) bool {
	for _, r := range f.rules {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		// Only the first word of a multi-word replacement is capitalized.
		runes := []rune(strings.ToLower(replacement))
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}

	result := make([]rune, 0, len(replacement))
	originalRunes := []rune(original)
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
