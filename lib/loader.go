package lib

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikolalohinski/gonja/v2/loaders"
)

// sourceLoader serves the inline template under its identifier and any
// other path, e.g. an include, from the source directory.
type sourceLoader struct {
	identifier string
	content    string
	directory  string
}

func newSourceLoader(identifier string, source Source) (loaders.Loader, error) {
	directory := source.Directory
	if directory == "" {
		directory = "."
	}
	directory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %s", source.Directory, err)
	}
	return &sourceLoader{identifier: identifier, content: source.Template, directory: directory}, nil
}

func (l *sourceLoader) Read(path string) (io.Reader, error) {
	if path == l.identifier {
		return strings.NewReader(l.content), nil
	}
	resolved, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	file, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read template at path %s: %s", resolved, err)
	}
	return strings.NewReader(string(file)), nil
}

func (l *sourceLoader) Resolve(path string) (string, error) {
	if path == l.identifier {
		return l.identifier, nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join(l.directory, path), nil
}

func (l *sourceLoader) Inherit(from string) (loaders.Loader, error) {
	return l, nil
}
