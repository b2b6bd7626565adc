package roster

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// File is the on-disk roster layout:
//
//	projects:
//	  - id: acme
//	    agents:
//	      - id: ada
//	        role: Tech Lead
//	        team: platform
type File struct {
	Projects []FileProject `yaml:"projects"`
}

// FileProject groups agents under a project id.
type FileProject struct {
	ID     string  `yaml:"id"`
	Agents []Agent `yaml:"agents"`
}

// Load reads a YAML roster from fsys. Agents inherit the project id of the
// block they are declared in.
func Load(fsys afero.Fs, path string) (*Roster, error) {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}

	r, _ := New()
	for _, p := range f.Projects {
		if p.ID == "" {
			return nil, fmt.Errorf("roster: %s: project without id", path)
		}
		for _, a := range p.Agents {
			a.ProjectID = p.ID
			if err := r.Add(a); err != nil {
				return nil, fmt.Errorf("roster: %s: %w", path, err)
			}
		}
	}
	return r, nil
}
