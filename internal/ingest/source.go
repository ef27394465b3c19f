// Package ingest turns a published course site into a vector collection:
// resolve the collection slug from the site URL, render the site to a single
// text document, chunk it, embed each chunk, and replace the course's
// collection with the new records.
package ingest

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultRenderEndpoint is the HAX render service that flattens a
	// published site into one HTML document.
	DefaultRenderEndpoint = "https://haxapi.vercel.app/api/apps/haxcms/siteToHtml"

	// defaultRenderMagic is the web components CDN the render service needs
	// to resolve custom elements while flattening.
	defaultRenderMagic = "https://cdn.webcomponents.psu.edu/cdn/"
)

// CollectionSlug derives the vector collection name from a course site URL.
// The slug is the path segment following "sites", lowercased with hyphens
// removed; when no "sites" segment exists, the last path segment is used.
// An empty result is an error, since an unnamed collection is unusable.
func CollectionSlug(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("ingest: invalid site URL %q: %w", rawURL, err)
	}

	segments := splitPath(u.Path)
	name := ""
	for i, seg := range segments {
		if seg == "sites" && i+1 < len(segments) {
			name = segments[i+1]
			break
		}
	}
	if name == "" && len(segments) > 0 {
		name = segments[len(segments)-1]
	}

	slug := strings.ToLower(strings.ReplaceAll(name, "-", ""))
	if slug == "" {
		return "", fmt.Errorf("ingest: could not derive collection name from %q", rawURL)
	}
	return slug, nil
}

// splitPath splits a URL path into non-empty segments.
func splitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// renderURL builds the render-service request URL for a course site.
func renderURL(endpoint, magic, siteURL string) string {
	q := url.Values{}
	q.Set("site", siteURL)
	q.Set("type", "link")
	q.Set("magic", magic)
	return endpoint + "?" + q.Encode()
}
