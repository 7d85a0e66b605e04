package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classferreiracode/track-my-task/internal/domain"
	"github.com/classferreiracode/track-my-task/internal/testutil"
)

func TestMembershipListMembers(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	owner, ws, _, _ := seedColumn(t, database)
	users := NewSQLiteUserRepo(database)
	repo := NewSQLiteMembershipRepo(database)

	ana := testutil.NewTestUser("Ana Souza")
	require.NoError(t, users.Create(ctx, ana))
	capacity := 2400
	m := testutil.NewTestMembership(ws.ID, ana.ID, testutil.WithRole(domain.RoleEditor))
	m.WeeklyCapacityMinutes = &capacity
	require.NoError(t, repo.Create(ctx, m))

	members, err := repo.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	byID := make(map[string]domain.Member, len(members))
	for _, member := range members {
		byID[member.UserID] = member
	}
	assert.Equal(t, domain.RoleOwner, byID[owner.ID].Role)
	assert.Equal(t, domain.RoleEditor, byID[ana.ID].Role)
	assert.Equal(t, "Ana Souza", byID[ana.ID].Name)
	assert.Equal(t, ana.Email, byID[ana.ID].Email)
	require.NotNil(t, byID[ana.ID].WeeklyCapacityMinutes)
	assert.Equal(t, 2400, *byID[ana.ID].WeeklyCapacityMinutes)

	count, err := repo.CountByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMembershipDelete(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	_, ws, _, _ := seedColumn(t, database)
	users := NewSQLiteUserRepo(database)
	repo := NewSQLiteMembershipRepo(database)

	member := testutil.NewTestUser("Leaver")
	require.NoError(t, users.Create(ctx, member))
	require.NoError(t, repo.Create(ctx, testutil.NewTestMembership(ws.ID, member.ID)))

	require.NoError(t, repo.Delete(ctx, ws.ID, member.ID))
	_, err := repo.Get(ctx, ws.ID, member.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
