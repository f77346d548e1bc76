package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rishika105/CodeShield-AI/internal/api"
	"github.com/rishika105/CodeShield-AI/internal/handler"
	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/store"
	"github.com/rishika105/CodeShield-AI/internal/token"
)

// fakeStore is an in-memory handler.Store. Reads hand out copies so a
// handler's in-flight mutations never leak into the stored state, matching
// the snapshot semantics of the real store.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*model.UserProfile
	conflicts int // SaveProgress calls to fail with ErrVersionConflict
	saves     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*model.UserProfile{}}
}

func cloneUser(u *model.UserProfile) *model.UserProfile {
	c := *u
	c.Badges = append([]string(nil), u.Badges...)
	c.Quests.CompletedQuests = append([]model.CompletedQuest(nil), u.Quests.CompletedQuests...)
	c.Quests.EarnedBadges = append([]model.EarnedBadge(nil), u.Quests.EarnedBadges...)
	return &c
}

func (f *fakeStore) Create(_ context.Context, u *model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return store.ErrDuplicateUser
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = cloneUser(u)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) SaveProgress(_ context.Context, u *model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.conflicts > 0 {
		f.conflicts--
		return store.ErrVersionConflict
	}
	current, ok := f.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != u.Version {
		return store.ErrVersionConflict
	}
	u.Version++
	f.users[u.ID] = cloneUser(u)
	return nil
}

func (f *fakeStore) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []model.LeaderboardEntry
	for _, u := range f.users {
		entries = append(entries, model.LeaderboardEntry{
			UserID:        u.ID,
			Username:      u.Username,
			SecurityScore: u.SecurityScore,
			Badges:        u.Badges,
			TotalXP:       u.Quests.TotalXP,
			MaxStreak:     u.Quests.MaxStreak,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SecurityScore != entries[j].SecurityScore {
			return entries[i].SecurityScore > entries[j].SecurityScore
		}
		return entries[i].TotalXP > entries[j].TotalXP
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (f *fakeStore) Stats(_ context.Context) (model.AdminStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := model.AdminStats{TotalUsers: len(f.users), GeneratedAt: time.Now()}
	for _, u := range f.users {
		stats.TotalCompletions += len(u.Quests.CompletedQuests)
	}
	return stats, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testServer struct {
	router http.Handler
	store  *fakeStore
	tokens *token.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fs := newFakeStore()
	tokens := token.NewManager("test-secret", time.Hour)
	h := handler.New(fs, nil, tokens)
	return &testServer{
		router: api.SetupRouter(h, tokens, []string{"*"}),
		store:  fs,
		tokens: tokens,
	}
}

// seedUser inserts a user directly and returns a valid bearer token.
func (ts *testServer) seedUser(t *testing.T, u *model.UserProfile) string {
	t.Helper()
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.Badges == nil {
		u.Badges = []string{}
	}
	require.NoError(t, ts.store.Create(context.Background(), u))
	tok, err := ts.tokens.Issue(u.ID, u.Role)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID            string   `json:"id"`
			Username      string   `json:"username"`
			SecurityScore int      `json:"securityScore"`
			Badges        []string `json:"badges"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, "alice", payload.User.Username)
	assert.Zero(t, payload.User.SecurityScore)

	// Same email again.
	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "already exists")

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", env.Error)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []map[string]string{
		{"username": "ab", "email": "a@b.co", "password": "hunter22"},
		{"username": "alice", "email": "not-an-email", "password": "hunter22"},
		{"username": "alice", "email": "a@b.co", "password": "short"},
	}
	for _, body := range tests {
		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}
}

func TestCompleteQuest(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/progress", tok, map[string]interface{}{
		"questId": 1, "solution": "db.query('SELECT * FROM users WHERE id = ?', [id])",
	})
	require.Equal(t, http.StatusOK, rec.Code, "error: %s", env.Error)

	var payload struct {
		SecurityQuests model.SecurityQuests `json:"securityQuests"`
		SecurityScore  int                  `json:"securityScore"`
		Badges         []string             `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, 150, payload.SecurityQuests.TotalXP)
	assert.Equal(t, 1, payload.SecurityQuests.CurrentStreak)
	require.Len(t, payload.SecurityQuests.CompletedQuests, 1)
	require.Len(t, payload.SecurityQuests.EarnedBadges, 1)
	assert.Equal(t, 12, payload.SecurityScore) // 1 of 8 quests
	assert.Empty(t, payload.Badges)

	// Resubmitting the same quest, even with a valid solution, changes nothing.
	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/progress", tok, map[string]interface{}{
		"questId": 1, "solution": "db.query('SELECT * FROM users WHERE id = ?', [id])",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quest already completed", env.Error)

	stored, err := ts.store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 150, stored.Quests.TotalXP)
	assert.Len(t, stored.Quests.CompletedQuests, 1)
}

func TestCompleteQuestRejectsBadSolution(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/progress", tok, map[string]interface{}{
		"questId": 1, "solution": "just concatenate the strings",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "solution")

	stored, err := ts.store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, stored.Quests.TotalXP)
}

func TestCompleteQuestUnknownQuest(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/progress", tok, map[string]interface{}{
		"questId": 999, "solution": "anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteQuestRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/progress", "", map[string]interface{}{
		"questId": 1, "solution": "parameterized",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/progress", "garbage-token", map[string]interface{}{
		"questId": 1, "solution": "parameterized",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompleteQuestRetriesOnVersionConflict(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})
	ts.store.conflicts = 1

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/progress", tok, map[string]interface{}{
		"questId": 1, "solution": "use parameterized queries",
	})
	require.Equal(t, http.StatusOK, rec.Code, "error: %s", env.Error)
	assert.Equal(t, 2, ts.store.saves)
}

func TestCompleteQuestGivesUpAfterRepeatedConflicts(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})
	ts.store.conflicts = 10

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/progress", tok, map[string]interface{}{
		"questId": 1, "solution": "use parameterized queries",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 3, ts.store.saves)
}

func TestUpdateSecurityScore(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})

	rec, env := ts.do(t, http.MethodPut, "/api/v1/auth/security-score", tok, map[string]int{"score": 150})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		SecurityScore int      `json:"securityScore"`
		Badges        []string `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, 100, payload.SecurityScore)
	assert.Contains(t, payload.Badges, "legend")

	stored, err := ts.store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ScanCount)
	assert.NotNil(t, stored.LastScanDate)
}

func TestUnlockBadgeIdempotent(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com"})

	for i := 0; i < 2; i++ {
		rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/badges", tok, map[string]int{"badgeId": 5})
		require.Equal(t, http.StatusOK, rec.Code, "error: %s", env.Error)
	}

	stored, err := ts.store.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stored.Quests.EarnedBadges, 1)
	assert.Equal(t, 5, stored.Quests.EarnedBadges[0].BadgeID)

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/badges", tok, map[string]int{"badgeId": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboard(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "low", Email: "low@example.com", SecurityScore: 25})
	ts.seedUser(t, &model.UserProfile{ID: "u2", Username: "high", Email: "high@example.com", SecurityScore: 75})
	ts.seedUser(t, &model.UserProfile{
		ID: "u3", Username: "mid", Email: "mid@example.com", SecurityScore: 75,
		Quests: model.SecurityQuests{TotalXP: 100},
	})

	rec, env := ts.do(t, http.MethodGet, "/api/v1/users/leaderboard", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []model.LeaderboardEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "mid", entries[0].Username) // XP breaks the score tie
	assert.Equal(t, "high", entries[1].Username)
	assert.Equal(t, "low", entries[2].Username)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[2].Rank)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/users/leaderboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserProfileViews(t *testing.T) {
	ts := newTestServer(t)
	aliceTok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "alice", Email: "alice@example.com"})
	ts.seedUser(t, &model.UserProfile{ID: "u2", Username: "bob", Email: "bob@example.com"})

	// Someone else's profile: trimmed view, no email.
	_, env := ts.do(t, http.MethodGet, "/api/v1/users/u2", aliceTok, nil)
	assert.NotContains(t, string(env.Data), "bob@example.com")
	assert.Contains(t, string(env.Data), `"username":"bob"`)

	// Own profile: full document.
	_, env = ts.do(t, http.MethodGet, "/api/v1/users/u1", aliceTok, nil)
	assert.Contains(t, string(env.Data), "alice@example.com")

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/users/nope", aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminStats(t *testing.T) {
	ts := newTestServer(t)
	userTok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "alice", Email: "alice@example.com"})
	adminTok := ts.seedUser(t, &model.UserProfile{ID: "u2", Username: "root", Email: "root@example.com", Role: model.RoleAdmin})

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/admin/stats", userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/admin/stats", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.AdminStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalUsers)
}

func TestQuestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/quests", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var all []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 8)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/quests/3", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/quests/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProgress(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{
		ID: "u1", Username: "bob", Email: "bob@example.com",
		Quests: model.SecurityQuests{TotalXP: 400, CurrentStreak: 2, MaxStreak: 3},
	})

	rec, env := ts.do(t, http.MethodGet, "/api/v1/auth/progress", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		SecurityQuests model.SecurityQuests `json:"securityQuests"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, 400, payload.SecurityQuests.TotalXP)
	assert.Equal(t, 3, payload.SecurityQuests.MaxStreak)
}

func TestLoginAgainstSeededHash(t *testing.T) {
	ts := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.DefaultCost)
	require.NoError(t, err)
	ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com", PasswordHash: string(hash)})

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "token")
}

func TestMeExcludesPasswordHash(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.seedUser(t, &model.UserProfile{ID: "u1", Username: "bob", Email: "bob@example.com", PasswordHash: "sekrit-hash"})

	rec, env := ts.do(t, http.MethodGet, "/api/v1/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(env.Data), "sekrit-hash")
	assert.Contains(t, string(env.Data), "bob@example.com")
}
