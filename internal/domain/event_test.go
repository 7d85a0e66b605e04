package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueRecipients(t *testing.T) {
	got := UniqueRecipients(
		Recipient{Name: "Ana", Email: "ana@example.com"},
		Recipient{Name: "Nameless"},
		Recipient{Name: "Bruno", Email: "bruno@example.com"},
		Recipient{Name: "Ana Again", Email: "ana@example.com"},
	)
	assert.Equal(t, []Recipient{
		{Name: "Ana", Email: "ana@example.com"},
		{Name: "Bruno", Email: "bruno@example.com"},
	}, got)

	assert.Empty(t, UniqueRecipients())
}
