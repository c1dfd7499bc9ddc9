package dataset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/dataset-curator/internal/detection"
	"github.com/ironsheep/dataset-curator/internal/fileutil"
)

// Manifest is the data.yaml descriptor of a curated dataset. Field order is
// the key order written to disk.
type Manifest struct {
	Train string     `yaml:"train" json:"train"`
	Val   string     `yaml:"val" json:"val"`
	Test  string     `yaml:"test" json:"test"`
	NC    int        `yaml:"nc" json:"nc"`
	Names ClassNames `yaml:"names" json:"names"`
}

// ClassNames decodes both the list form and the {id: name} mapping form that
// some exporters write.
type ClassNames []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ClassNames) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*c = names
		return nil
	case yaml.MappingNode:
		var byID map[int]string
		if err := node.Decode(&byID); err != nil {
			return err
		}
		ids := make([]int, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		names := make([]string, len(ids))
		for i, id := range ids {
			if id != i {
				return fmt.Errorf("class ids must be contiguous from 0, missing %d", i)
			}
			names[i] = byID[id]
		}
		*c = names
		return nil
	default:
		return fmt.Errorf("names: expected list or mapping, got yaml kind %d", node.Kind)
	}
}

// NewManifest describes a curated dataset with the canonical split layout.
func NewManifest(classNames []string) Manifest {
	names := make(ClassNames, len(classNames))
	copy(names, classNames)
	return Manifest{
		Train: "./" + path.Join(SplitTrain, ImagesDir),
		Val:   "./" + path.Join(SplitVal, ImagesDir),
		Test:  "./" + path.Join(SplitTest, ImagesDir),
		NC:    len(names),
		Names: names,
	}
}

// Taxonomy returns the class names as a detection taxonomy.
func (m Manifest) Taxonomy() detection.Taxonomy {
	return detection.Taxonomy(m.Names)
}

// WriteManifest writes m as data.yaml inside dir, replacing any previous file.
func WriteManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return fileutil.WriteFileAtomic(filepath.Join(dir, ManifestName), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// LoadManifest reads data.yaml from dir.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.NC == 0 {
		m.NC = len(m.Names)
	}
	if m.NC != len(m.Names) {
		return nil, fmt.Errorf("manifest declares nc=%d but lists %d names", m.NC, len(m.Names))
	}
	return &m, nil
}

// LoadTaxonomy returns the class names declared by the data.yaml in root.
// A dataset without a manifest yields an empty taxonomy and no error.
func LoadTaxonomy(root string) (detection.Taxonomy, error) {
	m, err := LoadManifest(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return m.Taxonomy(), nil
}
