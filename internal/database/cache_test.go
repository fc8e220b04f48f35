package database

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSuggestionKey_ScopedPerUser(t *testing.T) {
	cache := NewCache(nil, logrus.New())

	keyA := cache.suggestionKey("user-a", "github", "https://example.com")
	keyB := cache.suggestionKey("user-b", "github", "https://example.com")

	assert.NotEqual(t, keyA, keyB, "same input on the same page must not share entries across users")
}

func TestSuggestionKey_AnonymousAliasesEmptyUser(t *testing.T) {
	cache := NewCache(nil, logrus.New())

	assert.Equal(t,
		cache.suggestionKey("", "github", "https://example.com"),
		cache.suggestionKey("anonymous", "github", "https://example.com"))
}

func TestSuggestionKey_VariesByInputAndPage(t *testing.T) {
	cache := NewCache(nil, logrus.New())

	base := cache.suggestionKey("user-a", "github", "https://example.com")
	assert.NotEqual(t, base, cache.suggestionKey("user-a", "gitlab", "https://example.com"))
	assert.NotEqual(t, base, cache.suggestionKey("user-a", "github", "https://other.example.com"))
}
