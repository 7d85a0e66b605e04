package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsAndTagsArePerUser(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)
	other := e.seedWorkspace(t)
	ctx := context.Background()

	label, err := e.labelSvc.CreateLabel(ctx, fx.Owner.ID, " Urgente ", "")
	require.NoError(t, err)
	assert.Equal(t, "Urgente", label.Name)
	assert.Equal(t, "#6b7280", label.Color, "default color")

	tag, err := e.labelSvc.CreateTag(ctx, fx.Owner.ID, "cliente-x", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", tag.Color)

	labels, err := e.labelSvc.ListLabels(ctx, fx.Owner.ID)
	require.NoError(t, err)
	assert.Len(t, labels, 1)

	// Another user sees none of them.
	labels, err = e.labelSvc.ListLabels(ctx, other.Owner.ID)
	require.NoError(t, err)
	assert.Empty(t, labels)
	tags, err := e.labelSvc.ListTags(ctx, other.Owner.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCreateLabel_Validation(t *testing.T) {
	e := newEnv(t)
	fx := e.seedWorkspace(t)

	_, err := e.labelSvc.CreateLabel(context.Background(), fx.Owner.ID, "   ", "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
