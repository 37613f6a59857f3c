package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining marks after NFD decomposition, turning
// "beschränkter" into "beschrankter".
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func asciiFold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}

	return folded
}

type legalForm struct {
	full   string
	abbrev string
}

// legalForms maps spelled-out legal forms to their register abbreviation.
// The table is applied as literal substring replacement (legal-form phrases
// appear mid-string attached to punctuation), ordered longest-first so
// "europäische aktiengesellschaft" wins over "aktiengesellschaft" which in
// turn wins over the bare "aktien" shorthand. The "ae"/"ue" transliterations
// are listed explicitly; plain accent-stripped variants are derived below.
var legalForms = []legalForm{
	{"europäische wirtschaftliche interessenvereinigung", "ewiv"},
	{"europaeische wirtschaftliche interessenvereinigung", "ewiv"},
	{"europäische aktiengesellschaft", "se"},
	{"europaeische aktiengesellschaft", "se"},
	{"gesellschaft mit beschränkter haftung", "gmbh"},
	{"gesellschaft mit beschraenkter haftung", "gmbh"},
	{"gesellschaft bürgerlichen rechts", "gbr"},
	{"gesellschaft buergerlichen rechts", "gbr"},
	{"partnerschaftsgesellschaft", "partg"},
	{"offene handelsgesellschaft", "ohg"},
	{"aktiengesellschaft", "ag"},
	{"kommanditgesellschaft", "kg"},
	{"eingetragene genossenschaft", "eg"},
	{"eingetragener verein", "ev"},
	{"aktien", "ag"},
}

// legalFormTable is legalForms plus an accent-stripped variant of every entry
// whose folding differs, so scrape text that lost its umlauts still matches.
var legalFormTable = expandLegalForms(legalForms)

func expandLegalForms(forms []legalForm) []legalForm {
	out := make([]legalForm, 0, 2*len(forms))
	for _, lf := range forms {
		out = append(out, lf)
		if folded := asciiFold(lf.full); folded != lf.full {
			out = append(out, legalForm{folded, lf.abbrev})
		}
	}

	return out
}

// legalFormAbbrevs is the set of canonical legal-form tokens. These tokens are
// excluded from a name's core words: they say what kind of company it is, not
// which one.
var legalFormAbbrevs = map[string]struct{}{
	"ag":    {},
	"gmbh":  {},
	"ohg":   {},
	"kg":    {},
	"ev":    {},
	"eg":    {},
	"gbr":   {},
	"partg": {},
	"ewiv":  {},
	"se":    {},
	"sce":   {},
	"spe":   {},
	"ug":    {},
}

// IsLegalForm reports whether a canonical token is a legal-form abbreviation.
func IsLegalForm(token string) bool {
	_, ok := legalFormAbbrevs[token]

	return ok
}

// noisePhrases are register boilerplate removed as literal substrings, longer
// phrases first so "handelsregister" is gone before "register" runs.
var noisePhrases = []string{
	"commercial register",
	"handelsregister",
	"amtsgericht",
	"register",
}

// noiseTokens are register division prefixes dropped only as standalone
// tokens; removing short codes like "vr" or "pr" as substrings would eat
// letters out of real names. EWIV/SE/SCE/SPE are absent on purpose: they
// double as legal-form abbreviations and stay part of the canonical name.
var noiseTokens = map[string]struct{}{
	"hrb": {},
	"hra": {},
	"pr":  {},
	"gnr": {},
	"vr":  {},
	"gur": {},
	"gür": {},
}

// nonWord matches runs of characters that are neither letters, digits nor
// underscore. Unicode letters survive so umlauts are preserved in names.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// CanonicalName normalizes a company name for comparison: lower-case, legal
// forms folded to their abbreviation, register noise removed, punctuation
// collapsed to single spaces. Two names denote the same company string iff
// their canonical forms are identical. The function is idempotent and pure.
func CanonicalName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	for _, lf := range legalFormTable {
		s = strings.ReplaceAll(s, lf.full, lf.abbrev)
	}

	for _, phrase := range noisePhrases {
		s = strings.ReplaceAll(s, phrase, " ")
	}

	s = nonWord.ReplaceAllString(s, " ")

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if _, noisy := noiseTokens[f]; noisy {
			continue
		}
		kept = append(kept, f)
	}

	return strings.Join(kept, " ")
}

// coreWords returns the distinct tokens of a canonical name excluding
// legal-form abbreviations.
func coreWords(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	core := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if IsLegalForm(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		core = append(core, tok)
	}

	return core
}
