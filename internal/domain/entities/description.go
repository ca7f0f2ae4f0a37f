package entities

import "strings"

const (
	descriptionHeader = "<p>Related dependency commits:</p>"
	descriptionMarker = "    👉: "
)

// BuildRelatedDescription renders the resolved URLs as a merge request
// description fragment. URLs are emitted in the given order; empty URLs are
// skipped. When nothing remains the result is empty and no header is written.
func BuildRelatedDescription(urls []string) string {
	var sb strings.Builder
	for _, url := range urls {
		if url == "" {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString(descriptionHeader)
		}
		sb.WriteString("<p>")
		sb.WriteString(descriptionMarker)
		sb.WriteString(url)
		sb.WriteString("</p>")
	}
	return sb.String()
}

// DescriptionAsText converts a description fragment to plain text for terminal output.
func DescriptionAsText(description string) string {
	replacer := strings.NewReplacer("<p>", "\n", "</p>", "")
	return strings.TrimLeft(replacer.Replace(description), "\n")
}
