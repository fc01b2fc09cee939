package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
)

func newUserFixture(t *testing.T) (*UserService, *CitationService, *EngagementService, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	citations := newMockCitationRepo()
	engagements := newMockEngagementRepo(citations)
	return NewUserService(users, citations, engagements, testLogger()),
		newCitationService(citations),
		NewEngagementService(citations, engagements, testLogger()),
		users
}

func seedUser(t *testing.T, users *mockUserRepo, pseudo string) *model.User {
	t.Helper()
	u := &model.User{Pseudo: pseudo, Email: pseudo + "@example.com"}
	require.NoError(t, users.CreateUser(context.Background(), u))
	return u
}

func TestProfile(t *testing.T) {
	svc, citationSvc, engagementSvc, users := newUserFixture(t)
	ctx := context.Background()

	u := seedUser(t, users, "alice")
	actor := model.Actor{ID: u.ID, Pseudo: u.Pseudo, Role: u.Role}
	other := model.Actor{ID: "user-bob", Pseudo: "bob", Role: model.RoleUser}

	mine := seedCitation(t, citationSvc, actor, "mine")
	theirs := seedCitation(t, citationSvc, other, "theirs")

	_, err := engagementSvc.Like(ctx, actor, theirs.ID)
	require.NoError(t, err)
	_, err = engagementSvc.Favorite(ctx, actor, theirs.ID)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Pseudo)
	assert.Equal(t, []string{mine.ID}, profile.AllCitations)
	assert.Equal(t, []string{theirs.ID}, profile.AllLiked)
	assert.Equal(t, []string{theirs.ID}, profile.AllFavorite)
}

func TestProfile_EmptyLists(t *testing.T) {
	svc, _, _, users := newUserFixture(t)
	u := seedUser(t, users, "alice")

	profile, err := svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)

	// Fresh accounts get empty arrays, never null.
	assert.NotNil(t, profile.AllCitations)
	assert.NotNil(t, profile.AllLiked)
	assert.NotNil(t, profile.AllFavorite)
	assert.Empty(t, profile.AllCitations)
}

func TestProfile_NotFound(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	_, err := svc.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserCreate(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	u, err := svc.Create(context.Background(), &model.User{Pseudo: "alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestUserCreate_Validation(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.User{Pseudo: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Create(ctx, &model.User{Pseudo: strings.Repeat("x", MaxPseudoLength+1)})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Create(ctx, &model.User{Pseudo: "alice", Role: "ROLE_WIZARD"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserCreate_DuplicateID(t *testing.T) {
	svc, _, _, users := newUserFixture(t)
	ctx := context.Background()
	existing := seedUser(t, users, "alice")

	_, err := svc.Create(ctx, &model.User{ID: existing.ID, Pseudo: "impostor"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUserUpdate(t *testing.T) {
	svc, _, _, users := newUserFixture(t)
	u := seedUser(t, users, "alice")

	updated, err := svc.Update(context.Background(), u.ID, model.User{
		Pseudo: "alicia",
		Role:   model.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, "alicia", updated.Pseudo)
	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.Equal(t, u.Email, updated.Email, "empty field means unchanged")
}

func TestUserUpdate_UnknownRole(t *testing.T) {
	svc, _, _, users := newUserFixture(t)
	u := seedUser(t, users, "alice")

	_, err := svc.Update(context.Background(), u.ID, model.User{Role: "ROLE_WIZARD"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUserUpdate_NotFound(t *testing.T) {
	svc, _, _, _ := newUserFixture(t)

	_, err := svc.Update(context.Background(), "ghost", model.User{Pseudo: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserDelete(t *testing.T) {
	svc, _, _, users := newUserFixture(t)
	u := seedUser(t, users, "alice")

	require.NoError(t, svc.Delete(context.Background(), u.ID))
	assert.Equal(t, []string{u.ID}, users.deleteCalls, "delete must go through the cascade")

	err := svc.Delete(context.Background(), u.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
