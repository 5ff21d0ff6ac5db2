// Package manifest parses the optional deploy manifest, a small YAML file
// overriding per-function build settings.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modelarena/funcdeploy/internal/core/fnspec"
)

// Manifest holds per-function overrides keyed by role.
//
//	functions:
//	  predict:
//	    memory: 512m
//	    execution_timeout: 600s
//	  finalizer:
//	    source_path: ./functions/finalizer_v2
type Manifest struct {
	Functions map[string]entry `yaml:"functions"`
}

type entry struct {
	Runtime          string `yaml:"runtime"`
	Entrypoint       string `yaml:"entrypoint"`
	Memory           string `yaml:"memory"`
	ExecutionTimeout string `yaml:"execution_timeout"`
	SourcePath       string `yaml:"source_path"`
}

var knownRoles = map[string]struct{}{
	fnspec.RolePredict:   {},
	fnspec.RoleFinalizer: {},
}

// Load reads the manifest at path. A missing file yields zero overrides; a
// present but invalid file is an error.
func Load(path string) (map[string]fnspec.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]fnspec.Override{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (map[string]fnspec.Override, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	overrides := make(map[string]fnspec.Override, len(m.Functions))
	for role, e := range m.Functions {
		if _, ok := knownRoles[role]; !ok {
			return nil, fmt.Errorf("manifest names unknown function %q (known: %s, %s)",
				role, fnspec.RolePredict, fnspec.RoleFinalizer)
		}
		overrides[role] = fnspec.Override{
			Runtime:          e.Runtime,
			Entrypoint:       e.Entrypoint,
			Memory:           e.Memory,
			ExecutionTimeout: e.ExecutionTimeout,
			SourcePath:       e.SourcePath,
		}
	}
	return overrides, nil
}
