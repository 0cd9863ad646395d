package api

import "strings"

// PlaceholderImage renders when a product has no image or its image fails to
// load.
const PlaceholderImage = "data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' width='200' height='200' viewBox='0 0 200 200'%3E%3Crect width='200' height='200' fill='%23f3f4f6'/%3E%3Ctext x='50%25' y='50%25' dominant-baseline='middle' text-anchor='middle' font-family='system-ui' font-size='14' fill='%239ca3af'%3ENo Image%3C/text%3E%3C/svg%3E"

// ImageURL resolves a backend image reference for display. Absolute URLs pass
// through; /uploads-style paths and bare paths are joined to the backend
// origin; an empty reference yields the placeholder.
func (c *Client) ImageURL(ref string) string {
	switch {
	case ref == "":
		return PlaceholderImage
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "data:"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return c.origin + ref
	default:
		return c.origin + "/" + ref
	}
}
