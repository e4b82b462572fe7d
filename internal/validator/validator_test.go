package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/apperrors"
)

type sample struct {
	Title    string   `json:"title" validate:"required,max=5"`
	Status   *string  `json:"status" validate:"omitempty,oneof=todo done"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Contacts []string `json:"memberEmails" validate:"omitempty,dive,email"`
}

func TestStruct_Valid(t *testing.T) {
	status := "done"
	assert.NoError(t, Struct(&sample{Title: "ok", Status: &status, Contacts: []string{"a@b.co"}}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	status := "archived"
	price := -1.0
	err := Struct(&sample{Title: "too long", Status: &status, Price: &price, Contacts: []string{"nope"}})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	assert.Equal(t, "VALIDATION_FAILED", appErr.Code)

	byField := map[string]string{}
	for _, f := range appErr.Fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "title cannot exceed 5 characters", byField["title"])
	assert.Equal(t, "status must be one of: todo, done", byField["status"])
	assert.Contains(t, byField, "price")
	assert.Contains(t, byField, "memberEmails[0]")
}
