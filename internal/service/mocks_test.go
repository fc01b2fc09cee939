package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/citewall/internal/apperror"
	"github.com/sakif/citewall/internal/model"
	"github.com/sakif/citewall/internal/repository"
)

// Hand-written in-memory mocks. They implement the repository interfaces the
// services consume, so the service logic is tested without a database.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- citations ---

type mockCitationRepo struct {
	citations map[string]*model.Citation
	order     []string // insertion order, oldest first
	nextID    int

	deleteCalls []string
	failWith    error // when set, every method fails with this error
}

func newMockCitationRepo() *mockCitationRepo {
	return &mockCitationRepo{citations: make(map[string]*model.Citation)}
}

func (m *mockCitationRepo) Create(_ context.Context, c *model.Citation) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	c.ID = fmt.Sprintf("citation-%d", m.nextID)
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	c.Likes = []model.Engagement{}
	c.Favs = []model.Engagement{}
	stored := *c
	m.citations[c.ID] = &stored
	m.order = append(m.order, c.ID)
	return nil
}

func (m *mockCitationRepo) GetByID(_ context.Context, id string) (*model.Citation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.citations[id]
	if !ok {
		return nil, apperror.NotFound("citation", id)
	}
	copied := *c
	return &copied, nil
}

func (m *mockCitationRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Citation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.Citation{}
	// Newest first.
	for i := len(m.order) - 1 - opts.Offset; i >= 0 && len(out) < opts.Limit; i-- {
		out = append(out, *m.citations[m.order[i]])
	}
	return out, nil
}

func (m *mockCitationRepo) Count(_ context.Context) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	return len(m.citations), nil
}

func (m *mockCitationRepo) Search(_ context.Context, field repository.SearchField, value string) ([]model.Citation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.Citation{}
	for _, id := range m.order {
		c := m.citations[id]
		haystack := c.Title
		if field == repository.SearchByAuthor {
			haystack = c.WriterName
		}
		if strings.Contains(strings.ToLower(haystack), strings.ToLower(value)) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCitationRepo) Random(_ context.Context, n int) ([]model.Citation, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []model.Citation{}
	for _, id := range m.order {
		if len(out) == n {
			break
		}
		out = append(out, *m.citations[id])
	}
	return out, nil
}

func (m *mockCitationRepo) Update(_ context.Context, c *model.Citation) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.citations[c.ID]; !ok {
		return apperror.NotFound("citation", c.ID)
	}
	stored := *c
	m.citations[c.ID] = &stored
	return nil
}

func (m *mockCitationRepo) DeleteCascade(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.citations[id]; !ok {
		return apperror.NotFound("citation", id)
	}
	delete(m.citations, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.deleteCalls = append(m.deleteCalls, id)
	return nil
}

func (m *mockCitationRepo) IDsByWriter(_ context.Context, userID string) ([]string, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []string{}
	for _, id := range m.order {
		if m.citations[id].WriterID == userID {
			out = append(out, id)
		}
	}
	return out, nil
}

// --- humors ---

type mockHumorRepo struct {
	humors map[string]string
}

func newMockHumorRepo() *mockHumorRepo {
	return &mockHumorRepo{humors: map[string]string{
		"ironic": "Ironic",
		"dark":   "Dark",
	}}
}

func (m *mockHumorRepo) ListHumors(_ context.Context) ([]model.Humor, error) {
	out := []model.Humor{}
	for id, name := range m.humors {
		out = append(out, model.Humor{ID: id, Name: name})
	}
	return out, nil
}

func (m *mockHumorRepo) GetHumorByID(_ context.Context, id string) (*model.Humor, error) {
	name, ok := m.humors[id]
	if !ok {
		return nil, apperror.NotFound("humor", id)
	}
	return &model.Humor{ID: id, Name: name}, nil
}

// --- engagements ---

// mockEngagementRepo mirrors the real implementation's contract: duplicate
// adds are rejected, missing removes are NotFound, and like mutations refresh
// the citation's NumberLike in the paired citation repo.
type mockEngagementRepo struct {
	citations *mockCitationRepo
	likes     map[string]map[string]model.Engagement
	favs      map[string]map[string]model.Engagement
}

func newMockEngagementRepo(citations *mockCitationRepo) *mockEngagementRepo {
	return &mockEngagementRepo{
		citations: citations,
		likes:     make(map[string]map[string]model.Engagement),
		favs:      make(map[string]map[string]model.Engagement),
	}
}

func (m *mockEngagementRepo) AddLike(_ context.Context, citationID string, e model.Engagement) error {
	if err := m.add(m.likes, citationID, e, "already liked"); err != nil {
		return err
	}
	m.refreshLikes(citationID)
	return nil
}

func (m *mockEngagementRepo) RemoveLike(_ context.Context, citationID, userID string) error {
	if err := m.remove(m.likes, citationID, userID, "like"); err != nil {
		return err
	}
	m.refreshLikes(citationID)
	return nil
}

func (m *mockEngagementRepo) AddFavorite(_ context.Context, citationID string, e model.Engagement) error {
	if err := m.add(m.favs, citationID, e, "already favorited"); err != nil {
		return err
	}
	m.refreshFavs(citationID)
	return nil
}

func (m *mockEngagementRepo) RemoveFavorite(_ context.Context, citationID, userID string) error {
	if err := m.remove(m.favs, citationID, userID, "favorite"); err != nil {
		return err
	}
	m.refreshFavs(citationID)
	return nil
}

func (m *mockEngagementRepo) LikedCitationIDs(_ context.Context, userID string) ([]string, error) {
	return m.engagedIDs(m.likes, userID), nil
}

func (m *mockEngagementRepo) FavoriteCitationIDs(_ context.Context, userID string) ([]string, error) {
	return m.engagedIDs(m.favs, userID), nil
}

func (m *mockEngagementRepo) add(
	table map[string]map[string]model.Engagement,
	citationID string, e model.Engagement, dupMsg string,
) error {
	if _, ok := m.citations.citations[citationID]; !ok {
		return apperror.NotFound("citation", citationID)
	}
	if table[citationID] == nil {
		table[citationID] = make(map[string]model.Engagement)
	}
	if _, ok := table[citationID][e.UserID]; ok {
		return apperror.Duplicate(dupMsg)
	}
	e.CreatedAt = time.Now()
	table[citationID][e.UserID] = e
	return nil
}

func (m *mockEngagementRepo) remove(
	table map[string]map[string]model.Engagement,
	citationID, userID, kind string,
) error {
	if _, ok := table[citationID][userID]; !ok {
		return apperror.NotFound(kind, citationID)
	}
	delete(table[citationID], userID)
	return nil
}

func (m *mockEngagementRepo) refreshLikes(citationID string) {
	c, ok := m.citations.citations[citationID]
	if !ok {
		return
	}
	c.Likes = []model.Engagement{}
	for _, e := range m.likes[citationID] {
		c.Likes = append(c.Likes, e)
	}
	c.NumberLike = len(c.Likes)
}

func (m *mockEngagementRepo) refreshFavs(citationID string) {
	c, ok := m.citations.citations[citationID]
	if !ok {
		return
	}
	c.Favs = []model.Engagement{}
	for _, e := range m.favs[citationID] {
		c.Favs = append(c.Favs, e)
	}
}

func (m *mockEngagementRepo) engagedIDs(table map[string]map[string]model.Engagement, userID string) []string {
	out := []string{}
	for citationID, byUser := range table {
		if _, ok := byUser[userID]; ok {
			out = append(out, citationID)
		}
	}
	return out
}

// --- users ---

type mockUserRepo struct {
	users       map[string]*model.User
	nextID      int
	deleteCalls []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if u.ID == "" {
		m.nextID++
		u.ID = fmt.Sprintf("user-%d", m.nextID)
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if _, ok := m.users[u.ID]; ok {
		return apperror.Conflict("user", u.ID)
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpsertDiscordUser(ctx context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.DiscordID != "" && existing.DiscordID == u.DiscordID {
			existing.Pseudo = u.Pseudo
			existing.Email = u.Email
			existing.AvatarURL = u.AvatarURL
			u.ID = existing.ID
			u.Role = existing.Role
			return nil
		}
	}
	u.ID = ""
	return m.CreateUser(ctx, u)
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) UpdateUser(_ context.Context, u *model.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

func (m *mockUserRepo) DeleteUserCascade(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	m.deleteCalls = append(m.deleteCalls, id)
	return nil
}
