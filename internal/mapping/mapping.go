// Package mapping resolves manager names to destination spreadsheet IDs,
// combining the external mapping sheet with an optional local override file.
package mapping

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	ports "amplo/internal/sheets"
)

// File is the YAML override layout:
//
//	managers:
//	  "Ana Souza": 1AbC...
type File struct {
	Managers map[string]string `yaml:"managers"`
}

// LoadFile reads the local override file. A missing path is not an error;
// it just yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}

	out := make(map[string]string, len(f.Managers))
	for name, id := range f.Managers {
		name = strings.TrimSpace(name)
		id = strings.TrimSpace(id)
		if name == "" || id == "" {
			continue
		}
		out[name] = id
	}
	return out, nil
}

// Directory layers the local file over the sheet-backed directory. File
// entries win on key collision.
type Directory struct {
	Sheet    ports.ManagerDirectory
	FilePath string
}

var _ ports.ManagerDirectory = (*Directory)(nil)

func (d *Directory) Load(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if d.Sheet != nil {
		m, err := d.Sheet.Load(ctx)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	local, err := LoadFile(d.FilePath)
	if err != nil {
		return nil, err
	}
	for k, v := range local {
		out[k] = v
	}
	return out, nil
}
