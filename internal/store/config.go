package store

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// ConfigFileName is the global config document inside the config directory.
const ConfigFileName = "config.json"

// Filter paths are map keys and may contain characters that need JSON
// escaping, so the std-compatible config is used rather than ConfigFastest.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConfigStore loads and persists the global tracking config.
//
// Load is best-effort: a missing or corrupt document is an empty mapping,
// never an error. Save persists the full mapping; the engine calls it once
// at the end of a successful reconcile.
type ConfigStore interface {
	Load() GlobalConfig
	Save(cfg GlobalConfig) error
}

// FileStore keeps the config as <configDir>/config.json.
type FileStore struct {
	path string
}

// NewFileStore returns a store rooted at configDir.
func NewFileStore(configDir string) *FileStore {
	return &FileStore{path: filepath.Join(configDir, ConfigFileName)}
}

// Load reads the config document. Missing file, malformed JSON or wrong
// field types all degrade to an empty mapping; the engine re-bootstraps
// every filter it is asked about.
func (s *FileStore) Load() GlobalConfig {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return GlobalConfig{}
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil || cfg == nil {
		return GlobalConfig{}
	}
	return cfg
}

// Save writes the config atomically: temp file in the same directory,
// fsync, then rename, so readers never observe a partial document.
func (s *FileStore) Save(cfg GlobalConfig) error {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.path, append(b, '\n'))
}

// MemStore is an in-memory ConfigStore for tests and dry runs.
type MemStore struct {
	cfg GlobalConfig
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{cfg: GlobalConfig{}}
}

func (s *MemStore) Load() GlobalConfig {
	if s.cfg == nil {
		return GlobalConfig{}
	}
	return s.cfg
}

func (s *MemStore) Save(cfg GlobalConfig) error {
	s.cfg = cfg
	return nil
}
