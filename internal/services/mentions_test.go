package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMentions(t *testing.T) {
	names := ExtractMentions("hello @bob, have you seen @carol today?")
	assert.Equal(t, []string{"bob", "carol"}, names)
}

func TestExtractMentionsCollapsesDuplicates(t *testing.T) {
	names := ExtractMentions("@bob and once more @bob")
	assert.Equal(t, []string{"bob"}, names)
}

func TestExtractMentionsEmpty(t *testing.T) {
	assert.Nil(t, ExtractMentions("no mentions here"))
	assert.Nil(t, ExtractMentions(""))
}
