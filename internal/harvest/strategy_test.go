package harvest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateLikes(t *testing.T) {
	s := DefaultStrategy()

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "ignores implausible counts", raw: "12 Likes 340 Comments 1200000 Followers", want: 340},
		{name: "no digits falls back to default", raw: "Great insight, thanks for sharing", want: 5},
		{name: "only implausible digits", raw: "Followed by 250000 people", want: 5},
		{name: "boundary is exclusive", raw: "99999 reactions 100000 views", want: 99999},
		{name: "zero is a real count", raw: "0 reactions", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Estimate(tt.raw))
		})
	}
}

func TestClean(t *testing.T) {
	s := DefaultStrategy()

	text, ok := s.Clean("  We just closed our Series B and are hiring across the board!\nLike Comment Repost  ")
	assert.True(t, ok)
	assert.Equal(t, "We just closed our Series B and are hiring across the board!\nLike", text)

	_, ok = s.Clean("Too short to keep Comment and a lot more trailing text that does not count")
	assert.False(t, ok)

	text, ok = s.Clean(strings.Repeat("é", 40))
	assert.True(t, ok, "length is measured in characters")
	assert.Len(t, []rune(text), 40)
}

func TestSeenSetUsesPrefix(t *testing.T) {
	seen := seenSet{}
	base := strings.Repeat("a", 60)

	assert.True(t, seen.add(base))
	assert.False(t, seen.add(base), "identical content is a duplicate")
	assert.False(t, seen.add(base+" plus a different tail"), "same first 50 characters is a duplicate")
	assert.True(t, seen.add("b"+base), "different prefix is new")
}
