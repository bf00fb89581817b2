package intent

import (
	"regexp"
	"strings"
)

// compiledPattern is one matchable pattern, retaining the example words
// for confidence boosting.
type compiledPattern struct {
	intent string
	re     *regexp.Regexp
	words  []string
	raw    string
}

// whitespaceRun matches the escaped-whitespace runs QuoteMeta leaves behind.
var whitespaceRun = regexp.MustCompile(`(\\ )+|\s+`)

// compileExample turns an example phrase into a loose pattern: special
// characters escaped, whitespace joined with .* so tokens must appear in
// order but arbitrarily far apart. Intentionally permissive.
func compileExample(intent, example string) (*compiledPattern, bool) {
	example = strings.ToLower(strings.TrimSpace(example))
	if example == "" {
		return nil, false
	}

	escaped := regexp.QuoteMeta(example)
	loose := whitespaceRun.ReplaceAllString(escaped, ".*")

	re, err := regexp.Compile(loose)
	if err != nil {
		return nil, false
	}

	return &compiledPattern{
		intent: intent,
		re:     re,
		words:  strings.Fields(example),
		raw:    example,
	}, true
}

// fallbackPatterns is the hardcoded intent-to-examples table used when
// the definition store is empty or unreachable. Order matters: the
// matcher scans in insertion order and the first hit wins.
var fallbackPatterns = []struct {
	intent   string
	examples []string
}{
	{"greeting", []string{
		"hello", "hi there", "hey", "namaste", "good morning", "good evening",
	}},
	// Specific order intents precede order_food: its bare "order" example
	// would otherwise swallow "track my order" and "cancel my order".
	{"track_order", []string{
		"where is my order", "track my order", "order status", "mera order kahan hai",
	}},
	{"cancel_order", []string{
		"cancel my order", "cancel order", "order cancel karo",
	}},
	{"menu_inquiry", []string{
		"show me the menu", "what do you have", "menu dikhao", "kya kya milta hai",
	}},
	// Capability questions are chitchat, not help.
	{"chitchat", []string{
		"what can you do", "who are you", "how are you", "tum kaun ho",
	}},
	{"help", []string{
		"help", "help me", "madad", "i need help",
	}},
	{"order_food", []string{
		"order", "i want to order", "bhej do", "mangwa do", "get me food",
		"i am hungry", "bhookh lagi hai", "deliver",
	}},
	{"goodbye", []string{
		"bye", "goodbye", "see you", "alvida",
	}},
}

func compileFallback() []compiledPattern {
	var patterns []compiledPattern
	for _, fp := range fallbackPatterns {
		for _, ex := range fp.examples {
			if p, ok := compileExample(fp.intent, ex); ok {
				patterns = append(patterns, *p)
			}
		}
	}
	return patterns
}
