package cases

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

//go:embed library/*.yaml
var builtin embed.FS

// Library is an ordered, id-indexed set of cases.
type Library struct {
	cases []*Case
	byID  map[string]*Case
}

// Builtin returns the cases shipped with the binary.
func Builtin() (*Library, error) {
	return LoadFS(builtin, "library")
}

// LoadDir loads every *.yaml and *.yml file in dir.
func LoadDir(dir string) (*Library, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFile loads a single case file.
func LoadFile(name string) (*Case, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read case %s: %w", name, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// LoadFS loads the YAML cases in dir of fsys, sorted by file name.
func LoadFS(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list cases in %s: %w", dir, err)
	}

	lib := &Library{byID: make(map[string]*Case)}
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read case %s: %w", e.Name(), err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if err := lib.Add(c); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return lib, nil
}

// Add appends c. Ids must be unique.
func (l *Library) Add(c *Case) error {
	if l.byID == nil {
		l.byID = make(map[string]*Case)
	}
	if _, dup := l.byID[c.ID]; dup {
		return fmt.Errorf("%w: duplicate case id %q", ErrInvalidCase, c.ID)
	}
	l.cases = append(l.cases, c)
	l.byID[c.ID] = c
	return nil
}

// Get returns the case with the given id.
func (l *Library) Get(id string) (*Case, error) {
	c, ok := l.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c, nil
}

// All returns the cases in load order.
func (l *Library) All() []*Case {
	return slices.Clone(l.cases)
}

// Len returns the number of cases.
func (l *Library) Len() int {
	return len(l.cases)
}
