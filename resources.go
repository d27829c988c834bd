package main

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"
)

const indexFile = "index.html"

//go:embed web
var defaultPages embed.FS

// ResourceMap maps absolute request paths to page bodies. It is built once
// and only read afterwards, so every worker shares the same instance.
type ResourceMap struct {
	pages map[string][]byte
}

func NewResourceMap(pages map[string]string) (*ResourceMap, error) {
	m := &ResourceMap{pages: make(map[string][]byte, len(pages))}
	for p, body := range pages {
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("resource path %q does not start with /", p)
		}
		m.pages[p] = []byte(body)
	}
	return m, nil
}

func (m *ResourceMap) Len() int {
	return len(m.pages)
}

// Resolve tries an exact match, then path+"index.html" for paths ending in
// a slash.
func (m *ResourceMap) Resolve(p string) ([]byte, bool) {
	if body, ok := m.pages[p]; ok {
		return body, true
	}
	if strings.HasSuffix(p, "/") {
		body, ok := m.pages[p+indexFile]
		return body, ok
	}
	return nil, false
}

// LoadResources walks fsys and registers every regular file under "/" plus
// its slash-separated path. An index.html is also registered under its
// directory path without the trailing slash.
func LoadResources(fsys fs.FS) (*ResourceMap, error) {
	m := &ResourceMap{pages: make(map[string][]byte)}
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if !utf8.Valid(body) {
			return fmt.Errorf("%s: %w", name, ErrInvalidEncoding)
		}
		key := "/" + name
		m.pages[key] = body
		if path.Base(name) == indexFile {
			if dir := path.Dir(name); dir != "." {
				m.pages["/"+dir] = body
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	return m, nil
}

func loadDefaultPages() (*ResourceMap, error) {
	sub, err := fs.Sub(defaultPages, "web")
	if err != nil {
		return nil, err
	}
	return LoadResources(sub)
}
