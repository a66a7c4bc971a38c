package sitepulse_test

import (
	"testing"

	"github.com/fwojciec/sitepulse"
	"github.com/stretchr/testify/assert"
)

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	t.Run("wildcard segment matches any value", func(t *testing.T) {
		t.Parallel()

		got, ok := sitepulse.MatchPattern("/blog/hello-world", "/blog/:slug")

		assert.True(t, ok)
		assert.Equal(t, "/blog/:slug", got)
	})

	t.Run("segment count must agree", func(t *testing.T) {
		t.Parallel()

		_, ok := sitepulse.MatchPattern("/blog/2024/hello", "/blog/:slug")
		assert.False(t, ok)

		_, ok = sitepulse.MatchPattern("/blog", "/blog/:slug")
		assert.False(t, ok)
	})

	t.Run("literal segments compare case-sensitively", func(t *testing.T) {
		t.Parallel()

		_, ok := sitepulse.MatchPattern("/Blog/hello", "/blog/:slug")

		assert.False(t, ok)
	})

	t.Run("empty segments are ignored", func(t *testing.T) {
		t.Parallel()

		_, ok := sitepulse.MatchPattern("//blog//hello/", "/blog/:slug")

		assert.True(t, ok)
	})

	t.Run("root path matches root template only", func(t *testing.T) {
		t.Parallel()

		_, ok := sitepulse.MatchPattern("/", "/")
		assert.True(t, ok)

		_, ok = sitepulse.MatchPattern("", "/:page")
		assert.False(t, ok)
	})
}

func TestFindFirstMatch(t *testing.T) {
	t.Parallel()

	templates := []string{"/products/:id", "/:section/:id", "/blog/:slug"}

	got, ok := sitepulse.FindFirstMatch("/blog/hello", templates)
	assert.True(t, ok)
	assert.Equal(t, "/:section/:id", got)

	_, ok = sitepulse.FindFirstMatch("/about", templates)
	assert.False(t, ok)
}

func TestRuleSet(t *testing.T) {
	t.Parallel()

	t.Run("nil rule set filters nothing", func(t *testing.T) {
		t.Parallel()

		var rules *sitepulse.RuleSet

		assert.False(t, rules.Ignores("/admin"))
		_, ok := rules.Match("/blog/hello")
		assert.False(t, ok)
	})

	t.Run("ignore paths match by substring", func(t *testing.T) {
		t.Parallel()

		rules := &sitepulse.RuleSet{IgnorePaths: []string{"/admin", ""}}

		assert.True(t, rules.Ignores("/shop/admin/users"))
		assert.False(t, rules.Ignores("/shop/cart"))
	})

	t.Run("match uses configured order", func(t *testing.T) {
		t.Parallel()

		rules := &sitepulse.RuleSet{Patterns: []string{"/blog/:slug", "/:a/:b"}}

		got, ok := rules.Match("/blog/hello")

		assert.True(t, ok)
		assert.Equal(t, "/blog/:slug", got)
	})
}
