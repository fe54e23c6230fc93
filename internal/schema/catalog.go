package schema

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muhammadolammi/interviewmate/internal/interview"
)

//go:embed catalog/*.yaml
var builtin embed.FS

type catalogKey struct {
	t    interview.InterviewType
	lang interview.Language
}

// Catalog holds the form schemas selectable by interview type and language.
type Catalog struct {
	schemas map[catalogKey]*Schema
}

// NewCatalog loads the built-in schemas.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{schemas: map[catalogKey]*Schema{}}
	entries, err := builtin.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("read builtin schemas: %w", err)
	}
	for _, e := range entries {
		data, err := builtin.ReadFile("catalog/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin schema %s: %w", e.Name(), err)
		}
		if err := c.add(e.Name(), data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadDir adds every *.yaml schema found in dir, replacing built-ins with
// the same type and language.
func (c *Catalog) LoadDir(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("list schemas in %s: %w", dir, err)
	}
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", m, err)
		}
		if err := c.add(m, data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) add(name string, data []byte) error {
	s, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	c.Register(s)
	return nil
}

func (c *Catalog) Register(s *Schema) {
	c.schemas[catalogKey{t: s.Type, lang: s.Language}] = s
}

// Lookup returns the schema for t and lang, falling back to the other
// language of the same interview type.
func (c *Catalog) Lookup(t interview.InterviewType, lang interview.Language) (*Schema, error) {
	if s, ok := c.schemas[catalogKey{t: t, lang: lang}]; ok {
		return s, nil
	}
	for k, s := range c.schemas {
		if k.t == t {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrSchemaNotFound, t, strings.ToLower(string(lang)))
}
