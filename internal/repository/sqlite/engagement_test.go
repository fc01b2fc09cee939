package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
)

func TestAddLike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	writer := createTestUser(t, db, "alice")
	liker := createTestUser(t, db, "bob")
	c := createTestCitation(t, db, writer, "likeable")

	if err := db.AddLike(ctx, c.ID, model.Engagement{UserID: liker.ID, UserName: liker.Pseudo}); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}

	got, err := db.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.NumberLike != 1 {
		t.Errorf("NumberLike = %d, want 1", got.NumberLike)
	}
	if len(got.Likes) != 1 {
		t.Fatalf("len(Likes) = %d, want 1", len(got.Likes))
	}
	if got.Likes[0].UserID != liker.ID || got.Likes[0].UserName != "bob" {
		t.Errorf("Likes[0] = %+v, want userID=%s userName=bob", got.Likes[0], liker.ID)
	}
	if got.NumberLike != len(got.Likes) {
		t.Errorf("NumberLike (%d) disagrees with len(Likes) (%d)", got.NumberLike, len(got.Likes))
	}
}

func TestAddLike_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	writer := createTestUser(t, db, "alice")
	liker := createTestUser(t, db, "bob")
	c := createTestCitation(t, db, writer, "likeable")
	e := model.Engagement{UserID: liker.ID, UserName: liker.Pseudo}

	if err := db.AddLike(ctx, c.ID, e); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}

	err := db.AddLike(ctx, c.ID, e)
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("second AddLike() error = %v, want ErrDuplicate", err)
	}

	// The rejected retry must not change state.
	got, err := db.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.NumberLike != 1 || len(got.Likes) != 1 {
		t.Errorf("after rejected duplicate: NumberLike=%d len(Likes)=%d, want 1/1", got.NumberLike, len(got.Likes))
	}
}

func TestAddLike_CitationNotFound(t *testing.T) {
	db := newTestDB(t)
	liker := createTestUser(t, db, "bob")

	err := db.AddLike(context.Background(), "ghost", model.Engagement{UserID: liker.ID, UserName: "bob"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddLike() error = %v, want ErrNotFound", err)
	}
}

func TestRemoveLike(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	writer := createTestUser(t, db, "alice")
	liker := createTestUser(t, db, "bob")
	c := createTestCitation(t, db, writer, "likeable")

	if err := db.AddLike(ctx, c.ID, model.Engagement{UserID: liker.ID, UserName: liker.Pseudo}); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	if err := db.RemoveLike(ctx, c.ID, liker.ID); err != nil {
		t.Fatalf("RemoveLike() error = %v", err)
	}

	got, err := db.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.NumberLike != 0 || len(got.Likes) != 0 {
		t.Errorf("after unlike: NumberLike=%d len(Likes)=%d, want 0/0", got.NumberLike, len(got.Likes))
	}
}

func TestRemoveLike_NotLiked(t *testing.T) {
	db := newTestDB(t)
	writer := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	c := createTestCitation(t, db, writer, "never liked")

	err := db.RemoveLike(context.Background(), c.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveLike() error = %v, want ErrNotFound", err)
	}
}

func TestFavorites_IndependentOfLikes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	writer := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	c := createTestCitation(t, db, writer, "favorited only")

	if err := db.AddFavorite(ctx, c.ID, model.Engagement{UserID: bob.ID, UserName: bob.Pseudo}); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}

	got, err := db.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	// Favorites never touch the like counter.
	if got.NumberLike != 0 {
		t.Errorf("NumberLike = %d after favorite, want 0", got.NumberLike)
	}
	if len(got.Favs) != 1 || len(got.Likes) != 0 {
		t.Errorf("len(Favs)=%d len(Likes)=%d, want 1/0", len(got.Favs), len(got.Likes))
	}

	err = db.AddFavorite(ctx, c.ID, model.Engagement{UserID: bob.ID, UserName: bob.Pseudo})
	if !errors.Is(err, apperror.ErrDuplicate) {
		t.Errorf("second AddFavorite() error = %v, want ErrDuplicate", err)
	}

	if err := db.RemoveFavorite(ctx, c.ID, bob.ID); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}
	err = db.RemoveFavorite(ctx, c.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RemoveFavorite() on empty error = %v, want ErrNotFound", err)
	}
}

func TestEngagedCitationIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	writer := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	c1 := createTestCitation(t, db, writer, "one")
	c2 := createTestCitation(t, db, writer, "two")

	e := model.Engagement{UserID: bob.ID, UserName: bob.Pseudo}
	if err := db.AddLike(ctx, c1.ID, e); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	if err := db.AddLike(ctx, c2.ID, e); err != nil {
		t.Fatalf("AddLike() error = %v", err)
	}
	if err := db.AddFavorite(ctx, c2.ID, e); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}

	liked, err := db.LikedCitationIDs(ctx, bob.ID)
	if err != nil {
		t.Fatalf("LikedCitationIDs() error = %v", err)
	}
	if len(liked) != 2 {
		t.Errorf("LikedCitationIDs() = %v, want 2 ids", liked)
	}

	favs, err := db.FavoriteCitationIDs(ctx, bob.ID)
	if err != nil {
		t.Fatalf("FavoriteCitationIDs() error = %v", err)
	}
	if len(favs) != 1 || favs[0] != c2.ID {
		t.Errorf("FavoriteCitationIDs() = %v, want [%s]", favs, c2.ID)
	}

	// A user with no engagements gets empty lists, not errors.
	none, err := db.LikedCitationIDs(ctx, writer.ID)
	if err != nil {
		t.Fatalf("LikedCitationIDs() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("LikedCitationIDs() for non-liker = %v, want empty", none)
	}
}
