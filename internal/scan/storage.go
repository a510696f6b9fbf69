package scan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ArtifactVersion is the current artifact format version.
	ArtifactVersion = "1.0"

	RecordsFileName   = "records.json"
	GraphFileName     = "code-graph.json"
	CallGraphFileName = "call-graph.json"
	WorkItemsFileName = "work-items.json"
	SummaryFileName   = "summary.json"
)

// Metadata is the envelope every artifact file carries.
type Metadata struct {
	Version     string    `json:"version"`
	Generation  string    `json:"generation"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
}

// envelope wraps a payload with its metadata for storage.
type envelope struct {
	Metadata Metadata    `json:"_metadata"`
	Data     interface{} `json:"data"`
}

// Storage writes generation artifacts to an output directory using the
// atomic temp-then-rename pattern, so readers never observe a torn file.
type Storage struct {
	dir string
}

// NewStorage creates the artifact directory if needed.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// WriteArtifacts persists every artifact of a generation.
func (s *Storage) WriteArtifacts(res *Result) error {
	writes := []struct {
		name  string
		data  interface{}
		count int
	}{
		{RecordsFileName, res.Records, len(res.Records)},
		{GraphFileName, res.Graph, len(res.Graph.Nodes)},
		{WorkItemsFileName, res.Items, len(res.Items)},
		{SummaryFileName, res.Stats, res.Stats.Processed},
	}
	if res.CallGraph != nil {
		writes = append(writes, struct {
			name  string
			data  interface{}
			count int
		}{CallGraphFileName, res.CallGraph, len(res.CallGraph.Nodes)})
	}
	for _, w := range writes {
		if err := s.write(w.name, res.Generation, w.data, w.count); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) write(name, generation string, data interface{}, count int) error {
	env := envelope{
		Metadata: Metadata{
			Version:     ArtifactVersion,
			Generation:  generation,
			GeneratedAt: time.Now(),
			Count:       count,
		},
		Data: data,
	}
	payload, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// ReadRaw loads a stored artifact's raw envelope, for consumers that only
// need metadata plus the payload bytes.
func (s *Storage) ReadRaw(name string) (json.RawMessage, *Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, nil, err
	}
	var env struct {
		Metadata Metadata        `json:"_metadata"`
		Data     json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return env.Data, &env.Metadata, nil
}
