package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidator(t *testing.T) {
	validate := NewValidator()

	type request struct {
		Position string   `json:"position" validate:"position"`
		Voice    string   `json:"voice" validate:"omitempty,voice"`
		Many     []string `json:"many" validate:"dive,position"`
	}

	assert.NoError(t, validate.Struct(request{Position: "Suwari waza", Voice: "French/Female1", Many: []string{"Armes", "tachiwaza"}}))
	assert.NoError(t, validate.Struct(request{Position: "Hanmi handachi"}))

	err := validate.Struct(request{Position: "Ne-waza"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "position")
	}
	assert.Error(t, validate.Struct(request{Position: "Armes", Voice: "Male1"}))
	assert.Error(t, validate.Struct(request{Position: "Armes", Many: []string{"Kumite"}}))
}
