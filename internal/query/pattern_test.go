package query

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamePatternMatchesAccentedSubstrings(t *testing.T) {
	re := regexp.MustCompile("(?i)" + namePattern(" Eric "))

	assert.True(t, re.MatchString("Éric Dupont"))
	assert.True(t, re.MatchString("Frédéric"))
	assert.True(t, re.MatchString("ERIC"))
	assert.False(t, re.MatchString("Erik"))
}

func TestNamePatternFoldsAccentsInInput(t *testing.T) {
	re := regexp.MustCompile("(?i)" + namePattern("Relance élève"))

	assert.True(t, re.MatchString("relance eleve 3"))
	assert.True(t, re.MatchString("Relance Élève"))
}

func TestNamePatternQuotesMetacharacters(t *testing.T) {
	p := namePattern("St. (Paris)+")

	re := regexp.MustCompile("(?i)" + p)
	assert.True(t, re.MatchString("Lycée St (Paris)+ Nord"))
	assert.False(t, re.MatchString("St Pariss"))
}
