package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var sdlExtensions = map[string]bool{".graphql": true, ".graphqls": true, ".gql": true}

// ReadSDL reads a printed schema from path. A directory is walked for
// .graphql/.graphqls/.gql files which are concatenated in lexical path order.
func ReadSDL(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read schema %q: %w", path, err)
	}
	if !info.IsDir() {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read schema %q: %w", path, err)
		}
		return string(content), nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !sdlExtensions[filepath.Ext(d.Name())] {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk schema directory %q: %w", path, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no schema files found in %q", path)
	}
	sort.Strings(files)

	var b strings.Builder
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("read schema %q: %w", f, err)
		}
		b.Write(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Load reads and parses the schema at path.
func Load(path string) (*Document, error) {
	sdl, err := ReadSDL(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), sdl)
}
