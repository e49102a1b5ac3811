package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the optional `skye.yaml` sitting next to a project's entry
// file, overlaying the default Flags. Absence of the file is not an error —
// LoadProject returns Default() unchanged.
type Project struct {
	Flags `yaml:",inline"`
}

// LoadProject reads path if it exists and overlays it onto Default(). A
// missing file is not an error; a malformed one is.
func LoadProject(path string) (Flags, error) {
	flags := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return flags, nil
	}
	if err != nil {
		return flags, err
	}

	proj := Project{Flags: flags}
	if err := yaml.Unmarshal(data, &proj); err != nil {
		return flags, err
	}
	proj.Flags.Resolve()
	return proj.Flags, nil
}
