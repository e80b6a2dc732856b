package activities

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"donorcrm/internal/domain"
)

// parseAttachmentLog extracts the file link from the HTML body of an
// attachment comment.
func parseAttachmentLog(content, commentType string) AttachmentLog {
	kind := domain.ActivityRemoved
	if commentType == commentTypeAttachment {
		kind = domain.ActivityAdded
	}
	fallback := AttachmentLog{Type: kind, FileName: strings.ReplaceAll(content, "Removed ", "")}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return fallback
	}
	a := findAnchor(doc)
	if a == nil {
		return fallback
	}
	var href string
	for _, attr := range a.Attr {
		if attr.Key == "href" {
			href = attr.Val
		}
	}
	return AttachmentLog{
		Type:      kind,
		FileName:  textOf(a),
		FileURL:   href,
		IsPrivate: strings.Contains(href, "private/files"),
	}
}

func findAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := findAnchor(c); a != nil {
			return a
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// firstChange returns the first [field, old, new] tuple of version data.
func firstChange(raw json.RawMessage) (field string, oldValue, newValue any, ok bool) {
	var data struct {
		Changed [][]any `json:"changed"`
	}
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Changed) == 0 {
		return "", nil, nil, false
	}
	change := data.Changed[0]
	if len(change) < 3 {
		return "", nil, nil, false
	}
	field, ok = change[0].(string)
	return field, change[1], change[2], ok
}

// isBlank treats null, "", false, 0 and empty collections as no value.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

// formatDuration renders seconds like "1h 2m 5s".
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}
