package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// hindiNumerals maps transliterated Hindi numerals to values. "do" is
// handled separately because it collides with the English verb.
var hindiNumerals = map[string]int{
	"ek":     1,
	"teen":   3,
	"char":   4,
	"chaar":  4,
	"paanch": 5,
	"panch":  5,
	"chhe":   6,
	"che":    6,
	"saat":   7,
	"aath":   8,
	"nau":    9,
	"das":    10,
}

// englishFunctionWords are tokens after which "do" reads as the English
// verb, not the numeral 2.
var englishFunctionWords = map[string]struct{}{
	"you": {}, "u": {}, "we": {}, "they": {}, "i": {}, "it": {},
	"not": {}, "n't": {}, "the": {}, "a": {}, "an": {}, "this": {}, "that": {},
}

// hindiVerbStems precede helper "do" in imperatives like "bhej do";
// "do" after these is never a quantity.
var hindiVerbStems = map[string]struct{}{
	"bhej": {}, "kar": {}, "de": {}, "la": {}, "mangwa": {}, "bana": {}, "cancel": {},
}

var digitRe = regexp.MustCompile(`\b(\d+)\b`)

// ParseQuantity extracts an order quantity from text, or nil when none is
// found. Digits win over Hindi numerals. Without the LLM there is no
// reliable "do" disambiguation, so "do" counts as 2 only when directly
// followed by a content word; ambiguous uses stay nil.
func ParseQuantity(text string) *int {
	lower := strings.ToLower(text)

	if m := digitRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return &n
		}
	}

	tokens := strings.Fields(lower)
	for i, tok := range tokens {
		if n, ok := hindiNumerals[tok]; ok {
			return &n
		}
		if tok == "do" {
			if i+1 >= len(tokens) {
				continue
			}
			if i > 0 {
				if _, isStem := hindiVerbStems[tokens[i-1]]; isStem {
					continue
				}
			}
			next := strings.Trim(tokens[i+1], ".,!?")
			if _, isFunction := englishFunctionWords[next]; isFunction {
				continue
			}
			two := 2
			return &two
		}
	}
	return nil
}
