package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCivility(t *testing.T) {
	cases := []struct {
		sex, lang, want string
	}{
		{"male", "fr", "M"},
		{"Male", "en", "Mr"},
		{"female", "fr", "Mme"},
		{"F", "en", "Mrs"},
		{"", "fr", ""},
		{"other", "en", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ComputeCivility(c.sex, c.lang), "sex=%q lang=%q", c.sex, c.lang)
	}
}

func TestTranslateCivility(t *testing.T) {
	assert.Equal(t, "M", TranslateCivility("MR", "fr"))
	assert.Equal(t, "Mrs", TranslateCivility("mrs", "de"))
	assert.Equal(t, "", TranslateCivility("dr", "fr"))
}
