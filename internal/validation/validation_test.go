package validation_test

import (
	"strings"
	"testing"

	"github.com/propuestas-api/internal/validation"
	"github.com/stretchr/testify/assert"
)

func fieldsOf(errs validation.Errors) map[string]bool {
	fields := make(map[string]bool)
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	return fields
}

func TestEmail(t *testing.T) {
	valid := []string{
		"a@x.com",
		"alice.smith@example.co",
		"alice-smith@mail.example.com",
	}
	for _, email := range valid {
		assert.Empty(t, validation.Email(email), email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"missing@tld",
		"@example.com",
	}
	for _, email := range invalid {
		assert.NotEmpty(t, validation.Email(email), email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", validation.NormalizeEmail("  A@X.COM "))
}

func TestRegistration(t *testing.T) {
	assert.Empty(t, validation.Registration("alice", "a@x.com", "secret1"))

	errs := validation.Registration("al", "bad", "123")
	fields := fieldsOf(errs)
	assert.True(t, fields["username"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestProposal(t *testing.T) {
	longDesc := "A sufficiently long description for the proposal."

	assert.Empty(t, validation.Proposal("Plant more trees", longDesc, "Otros", ""))

	errs := validation.Proposal("Hey", "short", "Nope", "not-a-url")
	fields := fieldsOf(errs)
	assert.True(t, fields["title"])
	assert.True(t, fields["description"])
	assert.True(t, fields["category"])
	assert.True(t, fields["image"])

	// Lengths are counted in runes, not bytes.
	accented := strings.Repeat("á", 5)
	assert.Empty(t, validation.Proposal(accented, longDesc, "Otros", ""))

	tooLong := strings.Repeat("x", 101)
	errs = validation.Proposal(tooLong, longDesc, "Otros", "")
	assert.True(t, fieldsOf(errs)["title"])
}

func TestErrorsMessage(t *testing.T) {
	errs := validation.Errors{
		{Field: "title", Message: "title is required"},
		{Field: "category", Message: "category is not one of the allowed values"},
	}
	assert.Contains(t, errs.Error(), "title is required")
	assert.Contains(t, errs.Error(), "category")
	assert.Nil(t, validation.Errors{}.ErrorsOrNil())
}
