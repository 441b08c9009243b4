package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runNames(results Results) []string {
	var names []string
	for _, r := range results.Tests {
		names = append(names, r.TestID.String())
	}
	return names
}

func TestRunCollectsResultsFromSubtests(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("passes", func(c *Context) {})
		c.Run("fails", func(c *Context) {
			c.Errorf("deliberate failure")
		})
	})
	assert.False(t, results.OK())
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "fails", results.Failures[0].TestID.String())
	assert.Contains(t, runNames(results), "passes")
}

func TestFailNowStopsTheTestButNotTheSuite(t *testing.T) {
	reachedAfterFailNow := false
	ranNextTest := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("aborts", func(c *Context) {
			c.Errorf("fatal condition")
			c.FailNow()
			reachedAfterFailNow = true
		})
		c.Run("continues", func(c *Context) {
			ranNextTest = true
		})
	})
	assert.False(t, reachedAfterFailNow)
	assert.True(t, ranNextTest)
	require.Len(t, results.Failures, 1)
}

func TestFailNowAfterErrorfKeepsTheLoggedMessage(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("fails with message", func(c *Context) {
			c.Errorf("the real reason")
			c.FailNow()
		})
	})
	require.Len(t, results.Failures, 1)
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "the real reason")
}

func TestUnexpectedPanicBecomesFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic("boom")
		})
	})
	require.Len(t, results.Failures, 1)
	require.NotEmpty(t, results.Failures[0].Errors)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "boom")
}

func TestFilterSkipsNonMatchingTests(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^wanted"))

	ran := map[string]bool{}
	Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("wanted test", func(c *Context) { ran["wanted"] = true })
		c.Run("other test", func(c *Context) { ran["other"] = true })
	})
	assert.True(t, ran["wanted"])
	assert.False(t, ran["other"])
}

func TestDeferRunsInReverseOrderOnAnyExit(t *testing.T) {
	var order []string
	Run(nil, nil, func(c *Context) {
		c.Run("failing test with cleanups", func(c *Context) {
			c.Defer(func() { order = append(order, "first") })
			c.Defer(func() { order = append(order, "second") })
			c.Errorf("fail")
			c.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
}
