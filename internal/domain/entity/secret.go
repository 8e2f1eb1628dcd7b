package entity

import "github.com/lite-lake/infra-certops/internal/domain"

type Secret struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func (s *Secret) Validate() error {
	if s.Name == "" {
		return domain.RequiredField("secret name")
	}
	if s.Value == "" {
		return domain.ErrEmptyValue
	}
	return nil
}
