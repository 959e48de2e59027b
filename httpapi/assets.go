package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"io/fs"
)

//go:embed assets/*
var embeddedAssets embed.FS

const (
	indexFile           = "index.html"
	baseHrefPlaceholder = "<!-- BASE_HREF -->"
)

// terminalAssets serves the xterm.js page and its scripts from the binary.
func terminalAssets() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// renderIndex reads the terminal page once and fills in its base href.
func renderIndex(assets fs.FS, baseHref string) ([]byte, error) {
	data, err := fs.ReadFile(assets, indexFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", indexFile, err)
	}
	return applyBaseHref(data, baseHref), nil
}

func applyBaseHref(data []byte, baseHref string) []byte {
	replacement := ""
	if baseHref != "" {
		replacement = fmt.Sprintf(`<base href="%s" />`, html.EscapeString(baseHref))
	}
	return bytes.ReplaceAll(data, []byte(baseHrefPlaceholder), []byte(replacement))
}
