package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentionTokens(t *testing.T) {
	assert.Nil(t, MentionTokens("no mentions here"))
	assert.Equal(t, []string{"ana"}, MentionTokens("oi @ana tudo bem"))
	assert.Equal(t, []string{"ana", "bruno"}, MentionTokens("@ana @Bruno @ANA"))
	assert.Equal(t, []string{"ana.souza"}, MentionTokens("cc @ana.souza"))
}

func TestResolveMentions(t *testing.T) {
	members := []Member{
		{UserID: "u1", Name: "Ana Souza", Email: "ana@example.com"},
		{UserID: "u2", Name: "Bruno Lima", Email: "bruno@example.com"},
		{UserID: "u3", Name: "Carla", Email: "carla@example.com"},
	}

	t.Run("name prefix case insensitive", func(t *testing.T) {
		got := ResolveMentions("ping @ANA", members)
		if assert.Len(t, got, 1) {
			assert.Equal(t, "u1", got[0].UserID)
		}
	})

	t.Run("email prefix", func(t *testing.T) {
		got := ResolveMentions("ping @bruno", members)
		if assert.Len(t, got, 1) {
			assert.Equal(t, "u2", got[0].UserID)
		}
	})

	t.Run("each member at most once", func(t *testing.T) {
		// "ana" matches both the name and the email of the same member.
		got := ResolveMentions("@ana and again @Ana", members)
		assert.Len(t, got, 1)
	})

	t.Run("unknown tokens resolve to nobody", func(t *testing.T) {
		assert.Empty(t, ResolveMentions("@fulano", members))
	})
}
