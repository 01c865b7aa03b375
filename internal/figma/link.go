// File: internal/figma/link.go
package figma

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidLink is returned when a string is not a shareable frame link.
var ErrInvalidLink = errors.New("invalid design link")

// designHosts are the hosts share links are issued on.
var designHosts = map[string]bool{
	"www.figma.com": true,
	"figma.com":     true,
}

// nodeIDPattern accepts both the URL form (12-34) and the API form (12:34).
var nodeIDPattern = regexp.MustCompile(`^\d+[-:]\d+$`)

// Link identifies one node in one design file.
type Link struct {
	FileKey string
	// NodeID is in API form, "12:34".
	NodeID string
	// Name is the human-readable file slug from the URL, if any.
	Name string
}

// String renders the link in the canonical share-URL form.
func (l Link) String() string {
	slug := l.Name
	if slug == "" {
		slug = "frame"
	}
	return fmt.Sprintf("https://www.figma.com/design/%s/%s?node-id=%s",
		l.FileKey, url.PathEscape(slug), strings.ReplaceAll(l.NodeID, ":", "-"))
}

// ParseLink extracts the file key and node id from a share URL such as
// https://www.figma.com/design/<key>/<name>?node-id=12-34. Legacy /file/
// URLs are accepted too.
func ParseLink(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Link{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return Link{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLink, u.Scheme)
	}
	if !designHosts[strings.ToLower(u.Host)] {
		return Link{}, fmt.Errorf("%w: unexpected host %q", ErrInvalidLink, u.Host)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || (segments[0] != "design" && segments[0] != "file") || segments[1] == "" {
		return Link{}, fmt.Errorf("%w: path %q does not name a design file", ErrInvalidLink, u.Path)
	}

	nodeID := u.Query().Get("node-id")
	if nodeID == "" {
		return Link{}, fmt.Errorf("%w: missing node-id parameter", ErrInvalidLink)
	}
	if !nodeIDPattern.MatchString(nodeID) {
		return Link{}, fmt.Errorf("%w: malformed node-id %q", ErrInvalidLink, nodeID)
	}

	link := Link{
		FileKey: segments[1],
		NodeID:  strings.Replace(nodeID, "-", ":", 1),
	}
	if len(segments) > 2 {
		link.Name, _ = url.PathUnescape(segments[2])
	}
	return link, nil
}

// LooksLikeDesignLink reports whether pasted text should be treated as a
// frame link: an http(s) URL on the design host that carries a node-id.
func LooksLikeDesignLink(text string) bool {
	text = strings.TrimSpace(text)
	for host := range designHosts {
		if strings.HasPrefix(text, "https://"+host) || strings.HasPrefix(text, "http://"+host) {
			return strings.Contains(text, "node-id=")
		}
	}
	return false
}
