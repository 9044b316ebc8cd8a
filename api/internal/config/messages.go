package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pup-project/api/internal/present"
)

// LoadMessages читает тексты интерфейса из YAML поверх встроенных.
// Пустой path: только встроенные.
func LoadMessages(path string) (present.Messages, error) {
	msg := present.DefaultMessages()
	if path == "" {
		return msg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return msg, err
	}
	if err := yaml.Unmarshal(data, &msg); err != nil {
		return present.DefaultMessages(), fmt.Errorf("bad messages file %s: %w", path, err)
	}
	return msg, nil
}
