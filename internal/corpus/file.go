package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource reads records from a YAML or JSON file holding a list of
// {correct_word, description} objects. The format follows the extension.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Records reads and decodes the whole file.
func (s *FileSource) Records(_ context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	var records []Record
	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	case ".json":
		err = json.Unmarshal(data, &records)
	default:
		return nil, fmt.Errorf("unsupported corpus file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding corpus file %s: %w", s.Path, err)
	}
	return records, nil
}
