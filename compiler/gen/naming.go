package gen

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var rules = func() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	r.AddUncountable("data")
	return r
}()

// Plural returns the root field plural of a type name, e.g. "movies" for
// Movie and "actorProfiles" for ActorProfile.
func Plural(name string) string {
	return LowerFirst(rules.Pluralize(name))
}

// Pascal upper-cases the first letter of each word in s, keeping the case
// of the remaining letters: "actedIn" becomes "ActedIn".
func Pascal(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// LowerFirst lower-cases the first letter of s.
func LowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
