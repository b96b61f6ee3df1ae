// Package publishers fans pipeline events out to HTTP endpoints and cloud
// queues declared in a YAML/JSON publishers file.
package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// ConfigRegistry is the validated, read-only set of publisher configs.
type ConfigRegistry struct {
	list []PublisherConfig
	byID map[string]PublisherConfig
}

// LoadRegistry reads path, expands ${ENV} references and validates every entry.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	file, err := decodeConfigFile([]byte(os.ExpandEnv(string(raw))), filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	cfgs := make([]PublisherConfig, len(file.Publishers))
	for i, c := range file.Publishers {
		cfgs[i] = c.normalized()
		if err := cfgs[i].validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
	}
	return newConfigRegistry(cfgs)
}

// decodeConfigFile picks the decoder from the extension. Unknown extensions
// are read as YAML, which also accepts JSON.
func decodeConfigFile(data []byte, ext string) (configFile, error) {
	var file configFile
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &file)
	default:
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return configFile{}, fmt.Errorf("decode publishers file: %w", err)
	}
	return file, nil
}

func newConfigRegistry(cfgs []PublisherConfig) (*ConfigRegistry, error) {
	reg := &ConfigRegistry{byID: make(map[string]PublisherConfig, len(cfgs))}
	for _, cfg := range cfgs {
		if _, dup := reg.byID[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.byID[cfg.ID] = cfg
		reg.list = append(reg.list, cfg)
	}
	return reg, nil
}

// ByID looks up a publisher config.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	cfg, ok := r.byID[strings.TrimSpace(id)]
	return cfg, ok
}

// All returns a copy of every config in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.list...)
}

// Enabled returns the configs whose enabled flag is on.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
