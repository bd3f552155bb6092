package content

import (
	"regexp"
	"strings"

	"coursecraft/internal/domain/models"
)

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// RewriteContentURLs returns a copy of the content map in which every
// path-bearing field is made absolute against baseURL. Already-absolute
// values are left alone, so applying the rewrite twice with the same base
// yields the same result as applying it once. Missing or partial slots are
// treated as absent; this function never fails.
func RewriteContentURLs(content models.ContentMap, baseURL string) models.ContentMap {
	out := content.Clone()
	for _, slot := range out {
		if slot == nil {
			continue
		}
		switch {
		case slot.Single != nil:
			slot.Single.File.Path = absolutize(slot.Single.File.Path, baseURL)
			slot.Single.URL = absolutize(slot.Single.URL, baseURL)
		case slot.List != nil:
			for i := range slot.List.Files {
				slot.List.Files[i].Path = absolutize(slot.List.Files[i].Path, baseURL)
			}
		}
	}
	return out
}

// absolutize prefixes baseURL onto a site-relative path. Values that already
// carry a URL scheme pass through unchanged.
func absolutize(path, baseURL string) string {
	if path == "" || schemeRe.MatchString(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}
