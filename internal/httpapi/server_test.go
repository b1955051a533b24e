package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stillmind/stillmind/internal/auth"
	"github.com/stillmind/stillmind/internal/identity"
	"github.com/stillmind/stillmind/internal/metrics"
	"github.com/stillmind/stillmind/internal/mood"
	"github.com/stillmind/stillmind/internal/password"
	"github.com/stillmind/stillmind/internal/reframe"
	"github.com/stillmind/stillmind/internal/session"
	"github.com/stillmind/stillmind/internal/token"
)

// memMoodStore is just enough of a mood.Store to drive the handlers.
type memMoodStore struct {
	entries []*mood.Entry
}

func (m *memMoodStore) Create(_ context.Context, identityID uuid.UUID, label string, stressLevel int, note *string, activities []string) (*mood.Entry, error) {
	entry := &mood.Entry{
		ID:          uuid.New(),
		IdentityID:  identityID,
		Mood:        label,
		StressLevel: stressLevel,
		Note:        note,
		Activities:  activities,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memMoodStore) List(_ context.Context, identityID uuid.UUID) ([]*mood.Entry, error) {
	out := make([]*mood.Entry, 0)
	for _, e := range m.entries {
		if e.IdentityID == identityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memMoodStore) Get(_ context.Context, identityID, id uuid.UUID) (*mood.Entry, error) {
	for _, e := range m.entries {
		if e.ID == id && e.IdentityID == identityID {
			return e, nil
		}
	}
	return nil, mood.ErrNotFound
}

func (m *memMoodStore) Update(_ context.Context, identityID, id uuid.UUID, update mood.Update) (*mood.Entry, error) {
	entry, err := m.Get(context.Background(), identityID, id)
	if err != nil {
		return nil, err
	}
	if update.Mood != nil {
		entry.Mood = *update.Mood
	}
	if update.StressLevel != nil {
		entry.StressLevel = *update.StressLevel
	}
	if update.Note != nil {
		entry.Note = update.Note
	}
	if update.Activities != nil {
		entry.Activities = *update.Activities
	}
	entry.UpdatedAt = time.Now()
	return entry, nil
}

func (m *memMoodStore) Delete(_ context.Context, identityID, id uuid.UUID) error {
	for i, e := range m.entries {
		if e.ID == id && e.IdentityID == identityID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return mood.ErrNotFound
}

func (m *memMoodStore) Recent(ctx context.Context, identityID uuid.UUID, _ int) ([]*mood.Entry, error) {
	return m.List(ctx, identityID)
}

func (m *memMoodStore) Stats(_ context.Context, identityID uuid.UUID) (*mood.Stats, error) {
	return &mood.Stats{}, nil
}

type staticGenerator struct{}

func (staticGenerator) Generate(context.Context, string) (*reframe.Result, error) {
	return &reframe.Result{Stoic: "s", Optimist: "o", Realist: "r"}, nil
}

type memReframeStore struct {
	reframes []*reframe.Reframe
}

func (m *memReframeStore) Create(_ context.Context, identityID uuid.UUID, journalEntryID *uuid.UUID, thought string, result reframe.Result) (*reframe.Reframe, error) {
	r := &reframe.Reframe{
		ID:              uuid.New(),
		IdentityID:      identityID,
		JournalEntryID:  journalEntryID,
		OriginalThought: thought,
		Stoic:           result.Stoic,
		Optimist:        result.Optimist,
		Realist:         result.Realist,
		CreatedAt:       time.Now(),
	}
	m.reframes = append(m.reframes, r)
	return r, nil
}

func (m *memReframeStore) List(_ context.Context, identityID uuid.UUID, _ int) ([]*reframe.Reframe, error) {
	out := make([]*reframe.Reframe, 0)
	for _, r := range m.reframes {
		if r.IdentityID == identityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReframeStore) FindByJournalEntry(_ context.Context, identityID, journalEntryID uuid.UUID) (*reframe.Reframe, error) {
	for _, r := range m.reframes {
		if r.IdentityID == identityID && r.JournalEntryID != nil && *r.JournalEntryID == journalEntryID {
			return r, nil
		}
	}
	return nil, reframe.ErrNotFound
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	codec, err := token.NewCodec(token.Config{
		Secret:     []byte("httpapi-test-secret-material"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)

	hasher, err := password.NewArgon2(password.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	require.NoError(t, err)

	identities := identity.NewMemoryStore()
	sessions := session.NewRedisStore(rdb, "test", time.Hour)

	authSvc, err := auth.NewService(identities, sessions, codec, hasher, metrics.NewAuthUnregistered(), zerolog.Nop())
	require.NoError(t, err)

	reframeSvc := reframe.NewService(&memReframeStore{}, staticGenerator{}, zerolog.Nop())

	srv := NewServer(authSvc, identities, &memMoodStore{}, nil, nil, reframeSvc,
		Options{FrontendURL: "http://localhost:5173"}, zerolog.Nop())
	return srv.Router(nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAccount(t *testing.T, router *gin.Engine, email string) authResponse {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email":        email,
		"password":     "secret123",
		"display_name": "Tester",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func refreshCookieValue(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", refreshCookieName)
	return nil
}

func TestRegisterSetsRefreshCookie(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email":        "alice@example.com",
		"password":     "secret123",
		"display_name": "Alice",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	cookie := refreshCookieValue(t, rec)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, cookie.Value, resp.RefreshToken)
	require.Equal(t, "alice@example.com", resp.User.Email)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email":        "not-an-email",
		"password":     "secret123",
		"display_name": "Alice",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email":        "alice@example.com",
		"password":     "short",
		"display_name": "Alice",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"email":        "alice@example.com",
		"password":     "secret123",
		"display_name": "Alice Again",
	}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotatesCookieToken(t *testing.T) {
	router := newTestRouter(t)
	first := registerAccount(t, router, "alice@example.com")

	header := http.Header{}
	header.Add("Cookie", refreshCookieName+"="+first.RefreshToken)
	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	rotated := refreshCookieValue(t, rec)
	require.NotEmpty(t, rotated.Value)
	require.NotEqual(t, first.RefreshToken, rotated.Value)

	// Replaying the consumed token must be rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", nil, header)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The rotated token still works.
	header = http.Header{}
	header.Add("Cookie", refreshCookieName+"="+rotated.Value)
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshFromBodyFallback(t *testing.T) {
	router := newTestRouter(t)
	first := registerAccount(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh", gin.H{
		"refresh_token": first.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshWithoutToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/refresh", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	router := newTestRouter(t)
	first := registerAccount(t, router, "alice@example.com")

	header := http.Header{}
	header.Add("Cookie", refreshCookieName+"="+first.RefreshToken)
	rec := doJSON(t, router, http.MethodPost, "/api/auth/logout", nil, header)
	require.Equal(t, http.StatusNoContent, rec.Code)

	cleared := refreshCookieValue(t, rec)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)

	// The revoked token cannot be used to refresh.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/refresh", nil, header)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out again is a no-op, not an error.
	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", nil, header)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGateRejectsMissingOrBadTokens(t *testing.T) {
	router := newTestRouter(t)
	account := registerAccount(t, router, "alice@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	header := http.Header{}
	header.Set("Authorization", "Bearer not-a-token")
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, header)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is not an access token.
	header.Set("Authorization", "Bearer "+account.RefreshToken)
	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, header)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeReturnsIdentity(t *testing.T) {
	router := newTestRouter(t)
	account := registerAccount(t, router, "alice@example.com")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+account.AccessToken)
	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var ident identity.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ident))
	require.Equal(t, "alice@example.com", ident.Email)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestUpdatePreferences(t *testing.T) {
	router := newTestRouter(t)
	account := registerAccount(t, router, "alice@example.com")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+account.AccessToken)
	rec := doJSON(t, router, http.MethodPut, "/api/auth/preferences", gin.H{
		"preferred_theme": "dark",
	}, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var ident identity.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ident))
	require.Equal(t, "dark", ident.PreferredTheme)
	require.Equal(t, "Tester", ident.DisplayName)

	rec = doJSON(t, router, http.MethodPut, "/api/auth/preferences", gin.H{
		"preferred_theme": "neon",
	}, header)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMoodEndpointValidation(t *testing.T) {
	router := newTestRouter(t)
	account := registerAccount(t, router, "alice@example.com")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+account.AccessToken)

	rec := doJSON(t, router, http.MethodPost, "/api/mood-tracker", gin.H{
		"mood":         "ecstatic",
		"stress_level": 3,
	}, header)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/mood-tracker", gin.H{
		"mood":         "good",
		"stress_level": 3,
		"activities":   []string{"walking"},
	}, header)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry mood.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.Equal(t, "good", entry.Mood)

	rec = doJSON(t, router, http.MethodGet, "/api/mood-tracker/"+entry.ID.String(), nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/mood-tracker/"+uuid.NewString(), nil, header)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReframeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	account := registerAccount(t, router, "alice@example.com")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+account.AccessToken)

	rec := doJSON(t, router, http.MethodPost, "/api/stress-reframe", gin.H{
		"original_thought": "everything is going wrong",
	}, header)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created reframe.Reframe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "s", created.Stoic)

	rec = doJSON(t, router, http.MethodGet, "/api/stress-reframe", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndCORS(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	out := httptest.NewRecorder()
	router.ServeHTTP(out, req)
	require.Equal(t, http.StatusNoContent, out.Code)
	require.Equal(t, "http://localhost:5173", out.Header().Get("Access-Control-Allow-Origin"))
}
