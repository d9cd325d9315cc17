package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samples = []string{
	"Looking for a study partner in East London for exams",
	"online study group for accountability, zoom welcome",
	"French language exchange partner wanted",
	"Anyone revising for the bar exam at the LSE library?",
	"Flatmate wanted near campus",
	"totally unrelated cat picture",
	"",
}

func TestCaseInsensitivity(t *testing.T) {
	c := New(nil)
	for _, s := range samples {
		assert.Equal(t, IsStudyRelated(s), IsStudyRelated(strings.ToUpper(s)), s)
		assert.Equal(t, IsStudyRelated(s), IsStudyRelated(strings.ToLower(s)), s)
		assert.Equal(t, c.IsExcluded(s), c.IsExcluded(strings.ToUpper(s)), s)
		assert.Equal(t, c.IsExcluded(s), c.IsExcluded(strings.ToLower(s)), s)
		assert.Equal(t, IsOnline(s), IsOnline(strings.ToUpper(s)), s)
	}
}

func TestExtractLocation(t *testing.T) {
	assert.Equal(t, "East London", ExtractLocation("study partner in east london"))
	assert.Equal(t, "Central London", ExtractLocation("CENTRAL LONDON cafes"))
	assert.Equal(t, "London", ExtractLocation("anyone in london?"))
	assert.Equal(t, DefaultLocation, ExtractLocation("study in manchester"))
	for _, s := range samples {
		assert.NotEmpty(t, ExtractLocation(s))
	}
}

func TestIsStudyRelated(t *testing.T) {
	assert.True(t, IsStudyRelated("need a revision partner"))
	assert.True(t, IsStudyRelated("PhD students meetup"))
	assert.False(t, IsStudyRelated("selling my bike"))
}

func TestIsOnline(t *testing.T) {
	assert.True(t, IsOnline("online study group for accountability, zoom welcome"))
	assert.True(t, IsOnline("video call sessions every evening"))
	assert.False(t, IsOnline("Looking for a study partner in East London for exams"))
}

func TestIsExcluded(t *testing.T) {
	c := New(nil)
	assert.True(t, c.IsExcluded("French language exchange partner wanted"))
	assert.True(t, c.IsExcluded("hiring tutors"))
	// substring matching is intentional
	assert.True(t, c.IsExcluded("quiet classroom near campus"))
	assert.False(t, c.IsExcluded("Looking for a study partner in East London for exams"))
}

func TestNew_CustomExclusions(t *testing.T) {
	c := New([]string{"  Crypto ", ""})
	assert.Equal(t, []string{"crypto"}, c.Exclusions())
	assert.True(t, c.IsExcluded("crypto study club"))
	assert.False(t, c.IsExcluded("french study club"))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a.png", ImageURL("https://example.com/a.png"))
	assert.Equal(t, "https://i.redd.it/abc", ImageURL("https://i.redd.it/abc"))
	assert.Empty(t, ImageURL("https://www.reddit.com/r/UCL/comments/x/y/"))
}
