package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// tomlFile is a koanf.Provider reading a TOML document from disk.
type tomlFile string

func (f tomlFile) ReadBytes() ([]byte, error) {
	return os.ReadFile(string(f))
}

func (f tomlFile) Read() (map[string]any, error) {
	values := map[string]any{}
	if _, err := toml.DecodeFile(string(f), &values); err != nil {
		return nil, err
	}
	return values, nil
}
