// Package content resolves heterogeneous content-item identifiers to a single
// canonical id per item and computes ordered previous/next navigation targets.
package content

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/InkAurora/educblue-sub001/models"
)

// ResolveID computes the canonical id for a content item at the given
// position. Precedence: explicit stable id, then Mongo-style _id, then a
// title-derived slug fused with the positional index, then a bare positional
// placeholder. The index is part of both fallback keys so that two untitled
// (or identically titled) items at different positions never collide.
func ResolveID(item models.ContentItem, index int) string {
	if item.ID != "" {
		return string(item.ID)
	}
	if item.MongoID != "" {
		return string(item.MongoID)
	}
	if slug := Slugify(item.Title); slug != "" {
		return fmt.Sprintf("%s-%d", slug, index)
	}
	return fmt.Sprintf("content-item-%d", index)
}

// Slugify lowercases a title and collapses runs of non-alphanumeric
// characters into single hyphens. An empty or all-symbol title slugs to "".
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Find locates the content item addressed by requestedID. Each item's
// canonical id is compared against the request with plain string equality;
// if nothing matches and the request is syntactically an integer it is
// treated as a positional index. Returns ok=false when the list is empty or
// nothing resolves.
func Find(list []models.ContentItem, requestedID string) (models.ContentItem, int, bool) {
	for i, item := range list {
		if ResolveID(item, i) == requestedID {
			return item, i, true
		}
	}
	if idx, err := strconv.Atoi(requestedID); err == nil && idx >= 0 && idx < len(list) {
		return list[idx], idx, true
	}
	return models.ContentItem{}, 0, false
}
