package extract

import "regexp"

// Multi-store detection over raw text. The rule is deliberately precise:
// count word-boundary "from" and Hindi "se"; trigger when either count or
// their sum reaches 2, or when a conjunction ("and"/"aur"/"or"/"ya"/
// "plus"/"+") co-occurs with a source marker in either order, or when "+"
// appears alongside "from"/"se".
var (
	fromWordRe = regexp.MustCompile(`\bfrom\b`)
	seWordRe   = regexp.MustCompile(`\bse\b`)

	conjThenSourceRe = regexp.MustCompile(`\b(and|aur|or|ya|plus)\b.*\b(from|se)\b|\+.*\b(from|se)\b`)
	sourceThenConjRe = regexp.MustCompile(`\b(from|se)\b.*(\b(and|aur|or|ya|plus)\b|\+)`)
	fromPlusFromRe   = regexp.MustCompile(`\bfrom\b.*\+.*\bfrom\b`)
	plusRe           = regexp.MustCompile(`\+`)
	sourceRe         = regexp.MustCompile(`\b(from|se)\b`)
)

// LikelyMultiStore reports whether text probably references 2+ vendors.
// Input is expected lowercased; the check is cheap enough to gate an
// extra LLM call, whose structured output stays authoritative.
func LikelyMultiStore(text string) bool {
	fromCount := len(fromWordRe.FindAllString(text, -1))
	seCount := len(seWordRe.FindAllString(text, -1))

	if fromCount >= 2 || seCount >= 2 || fromCount+seCount >= 2 {
		return true
	}
	if conjThenSourceRe.MatchString(text) || sourceThenConjRe.MatchString(text) {
		return true
	}
	if fromPlusFromRe.MatchString(text) {
		return true
	}
	if plusRe.MatchString(text) && sourceRe.MatchString(text) {
		return true
	}
	return false
}
