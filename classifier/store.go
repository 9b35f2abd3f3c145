package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	modelFile  = "model.json"
	scalerFile = "scaler.json"
	labelsFile = "labels.json"
)

// Store persists the model/scaler/label-mapping trio under one directory.
// Save is atomic across the trio: temp files are written first, then renamed
// into place, so a crash mid-save leaves the previous trio loadable.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load reads the trio. It fails if any of the three artifacts is missing or
// unparsable: a partial trio is never handed out.
func (s *Store) Load() (*model, *scaler, *labelMapping, error) {
	var m model
	if err := s.read(modelFile, &m); err != nil {
		return nil, nil, nil, err
	}
	var sc scaler
	if err := s.read(scalerFile, &sc); err != nil {
		return nil, nil, nil, err
	}
	var l labelMapping
	if err := s.read(labelsFile, &l); err != nil {
		return nil, nil, nil, err
	}

	if len(m.Centroids) == 0 || len(sc.Means) == 0 || len(l.Labels) == 0 {
		return nil, nil, nil, fmt.Errorf("model trio in %s is empty", s.dir)
	}
	if len(m.Centroids) != len(l.Labels) {
		return nil, nil, nil, fmt.Errorf("%d centroids for %d labels", len(m.Centroids), len(l.Labels))
	}
	return &m, &sc, &l, nil
}

// Save writes the trio. All temp files are flushed before the first rename
// so the window where the trio is mixed-generation is as small as the three
// renames.
func (s *Store) Save(m *model, sc *scaler, l *labelMapping) error {
	files := []struct {
		name string
		data any
	}{
		{modelFile, m},
		{scalerFile, sc},
		{labelsFile, l},
	}

	tmpPaths := make([]string, len(files))
	for i, f := range files {
		data, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", f.name, err)
		}
		tmp := filepath.Join(s.dir, f.name+".tmp")
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", tmp, err)
		}
		tmpPaths[i] = tmp
	}

	for i, f := range files {
		if err := os.Rename(tmpPaths[i], filepath.Join(s.dir, f.name)); err != nil {
			return fmt.Errorf("rename %s: %w", f.name, err)
		}
	}
	return nil
}

func (s *Store) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
