package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// TokenSpec is one entry of the launch table.
type TokenSpec struct {
	Name        string `yaml:"name" validate:"required,max=32"`
	Symbol      string `yaml:"symbol" validate:"required,max=10"`
	Description string `yaml:"description"`
	// optional per token image, falls back to Launch.ImagePath
	Image    string `yaml:"image,omitempty"`
	Twitter  string `yaml:"twitter,omitempty" validate:"omitempty,url"`
	Telegram string `yaml:"telegram,omitempty" validate:"omitempty,url"`
	Website  string `yaml:"website,omitempty" validate:"omitempty,url"`
}

type TokenTable struct {
	Tokens []TokenSpec `yaml:"tokens" validate:"required,min=1,dive"`
}

var validate = validator.New()

func LoadYAMLConfig(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// LoadTokens reads and validates the token table at path.
func LoadTokens(path string) ([]TokenSpec, error) {
	var table TokenTable
	if err := LoadYAMLConfig(path, &table); err != nil {
		return nil, errors.Wrapf(err, "load tokens %s", path)
	}
	if err := validate.Struct(&table); err != nil {
		return nil, errors.Wrapf(err, "invalid tokens %s", path)
	}
	return table.Tokens, nil
}
