package cache

import "strings"

// Key builds a cache key from a source prefix and its identifying parameters,
// e.g. Key("wb", "BR", "SP.POP.TOTL") == "wb:BR:SP.POP.TOTL".
func Key(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}
