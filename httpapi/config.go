package httpapi

import "strings"

// Config defines HTTP terminal and API settings.
type Config struct {
	Addr     string
	BaseURL  string
	BasePath string
	// AllowedOrigins lists websocket origins accepted besides the request host.
	AllowedOrigins []string
}

// mountPath returns BasePath as "/prefix" without a trailing slash, or "" when
// the server is mounted at the root.
func (c Config) mountPath() string {
	path := strings.Trim(strings.TrimSpace(c.BasePath), "/")
	if path == "" {
		return ""
	}
	return "/" + path
}

// baseHref is the document base the terminal page resolves its assets and
// websocket URL against. It is empty when neither BaseURL nor BasePath is set.
func (c Config) baseHref() string {
	href := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") + c.mountPath()
	if href == "" {
		return ""
	}
	return href + "/"
}
