package heightfield

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// artifactLOD is the serialized form of one pyramid level.
type artifactLOD struct {
	Level   int       `json:"level"`
	NX      int       `json:"nx"`
	NY      int       `json:"ny"`
	Heights []float64 `json:"heights"`
}

// Artifact is the heightfield interchange file consumed by the server-side
// collider loader.
type Artifact struct {
	NX        int           `json:"nx"`
	NY        int           `json:"ny"`
	Width     float64       `json:"width"`
	Depth     float64       `json:"depth"`
	MinHeight float64       `json:"minHeight"`
	MaxHeight float64       `json:"maxHeight"`
	Heights   []float64     `json:"heights"`
	LODLevels []artifactLOD `json:"lodLevels,omitempty"`
}

// NewArtifact assembles the export form of a refined result.
func NewArtifact(res *Result) *Artifact {
	a := &Artifact{
		NX:        res.Grid.NX,
		NY:        res.Grid.NY,
		Width:     res.Grid.Width,
		Depth:     res.Grid.Depth,
		MinHeight: res.Grid.MinHeight,
		MaxHeight: res.Grid.MaxHeight,
		Heights:   res.Grid.Heights,
	}
	for _, lod := range res.LODLevels {
		a.LODLevels = append(a.LODLevels, artifactLOD{
			Level:   lod.Level,
			NX:      lod.NX,
			NY:      lod.NY,
			Heights: lod.Heights,
		})
	}
	return a
}

// Grid reconstructs the base grid from the artifact.
func (a *Artifact) Grid() *Grid {
	return &Grid{
		NX:        a.NX,
		NY:        a.NY,
		Width:     a.Width,
		Depth:     a.Depth,
		Heights:   a.Heights,
		MinHeight: a.MinHeight,
		MaxHeight: a.MaxHeight,
	}
}

// WriteFile serializes the artifact to path, creating parent directories.
func (a *Artifact) WriteFile(path string) error {
	if err := a.Grid().Validate(); err != nil {
		return fmt.Errorf("writing heightfield artifact: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadArtifact loads and structurally validates a heightfield artifact.
// Loaders that need to degrade instead of fail should use the loader
// package, which never propagates errors.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightfield artifact %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding heightfield artifact %s: %w", path, err)
	}
	if err := a.Grid().Validate(); err != nil {
		return nil, fmt.Errorf("heightfield artifact %s: %w", path, err)
	}
	return &a, nil
}
