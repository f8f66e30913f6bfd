package common

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes term match literally inside a LIKE pattern that declares
// ESCAPE '\'.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// ContainsPattern returns the LIKE pattern matching term as a literal substring
func ContainsPattern(term string) string {
	return "%" + EscapeLike(term) + "%"
}
