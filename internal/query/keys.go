package query

import (
	"fmt"
	"net/url"
)

// Namespace prefixes every listing key.
const Namespace = "list"

// CacheKey derives the cache key of normalized params. The user only takes
// part in favorites-first keys, so other listings are shared across users.
func CacheKey(p Params) string {
	user := ""
	if p.Sort == SortFavoritesFirst {
		user = p.UserID
	}
	return fmt.Sprintf("%s|sort=%s|user=%s|q=%s|type=%s|page=%d|per=%d",
		Namespace,
		url.QueryEscape(string(p.Sort)),
		url.QueryEscape(user),
		url.QueryEscape(p.Search),
		url.QueryEscape(p.Type),
		p.Page,
		p.PerPage,
	)
}

// UserPrefix is the prefix shared by every favorites-first key of userID.
func UserPrefix(userID string) string {
	return fmt.Sprintf("%s|sort=%s|user=%s|", Namespace, SortFavoritesFirst, url.QueryEscape(userID))
}

// NamespacePrefix matches every listing key.
func NamespacePrefix() string {
	return Namespace + "|"
}
