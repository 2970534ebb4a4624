package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes the LIKE wildcards in s so it matches literally when
// bound as part of a pattern with backslash as the escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
