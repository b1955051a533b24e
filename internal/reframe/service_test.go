package reframe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	reframes []*Reframe
}

func (f *fakeStore) Create(_ context.Context, identityID uuid.UUID, journalEntryID *uuid.UUID, thought string, result Result) (*Reframe, error) {
	reframe := &Reframe{
		ID:              uuid.New(),
		IdentityID:      identityID,
		JournalEntryID:  journalEntryID,
		OriginalThought: thought,
		Stoic:           result.Stoic,
		Optimist:        result.Optimist,
		Realist:         result.Realist,
		CreatedAt:       time.Now(),
	}
	f.reframes = append(f.reframes, reframe)
	return reframe, nil
}

func (f *fakeStore) List(_ context.Context, identityID uuid.UUID, _ int) ([]*Reframe, error) {
	out := make([]*Reframe, 0)
	for i := len(f.reframes) - 1; i >= 0; i-- {
		if f.reframes[i].IdentityID == identityID {
			out = append(out, f.reframes[i])
		}
	}
	return out, nil
}

func (f *fakeStore) FindByJournalEntry(_ context.Context, identityID, journalEntryID uuid.UUID) (*Reframe, error) {
	for i := len(f.reframes) - 1; i >= 0; i-- {
		r := f.reframes[i]
		if r.IdentityID == identityID && r.JournalEntryID != nil && *r.JournalEntryID == journalEntryID {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

type countingGenerator struct {
	calls  int
	result Result
}

func (g *countingGenerator) Generate(context.Context, string) (*Result, error) {
	g.calls++
	out := g.result
	return &out, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *countingGenerator) {
	t.Helper()
	store := &fakeStore{}
	gen := &countingGenerator{result: Result{
		Stoic:    "Focus on what you control.",
		Optimist: "This is a chance to grow.",
		Realist:  "Some of this will pass on its own.",
	}}
	return NewService(store, gen, zerolog.Nop()), store, gen
}

func TestReframeStoresResult(t *testing.T) {
	svc, store, gen := newTestService(t)
	identityID := uuid.New()

	got, err := svc.Reframe(context.Background(), identityID, nil, "  I will fail the exam  ")
	require.NoError(t, err)
	require.Equal(t, "I will fail the exam", got.OriginalThought)
	require.Equal(t, gen.result.Stoic, got.Stoic)
	require.Len(t, store.reframes, 1)
	require.Equal(t, 1, gen.calls)
}

func TestReframeRejectsBadInput(t *testing.T) {
	svc, _, gen := newTestService(t)
	identityID := uuid.New()

	_, err := svc.Reframe(context.Background(), identityID, nil, "   ")
	require.ErrorIs(t, err, ErrEmptyThought)

	_, err = svc.Reframe(context.Background(), identityID, nil, strings.Repeat("x", MaxThoughtLen+1))
	require.ErrorIs(t, err, ErrThoughtTooLong)

	require.Equal(t, 0, gen.calls)
}

func TestReframeReusesJournalEntryResult(t *testing.T) {
	svc, _, gen := newTestService(t)
	identityID := uuid.New()
	entryID := uuid.New()

	first, err := svc.Reframe(context.Background(), identityID, &entryID, "deadline panic")
	require.NoError(t, err)

	second, err := svc.Reframe(context.Background(), identityID, &entryID, "deadline panic")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, gen.calls)

	// Another identity with the same entry id must not see the cached result.
	_, err = svc.Reframe(context.Background(), uuid.New(), &entryID, "deadline panic")
	require.NoError(t, err)
	require.Equal(t, 2, gen.calls)
}

func TestOpenRouterClientParsesFencedOutput(t *testing.T) {
	payload := Result{Stoic: "s", Optimist: "o", Realist: "r"}
	content, err := json.Marshal(payload)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, DefaultOpenRouterModel, req.Model)
		require.Len(t, req.Messages, 1)
		require.Contains(t, req.Messages[0].Content, "a stressful storm")

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "```json\n" + string(content) + "\n```"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, err := NewOpenRouterClient("test-key", "", zerolog.Nop())
	require.NoError(t, err)
	client.endpoint = server.URL

	got, err := client.Generate(context.Background(), "a stressful storm")
	require.NoError(t, err)
	require.Equal(t, payload, *got)
}

func TestOpenRouterClientRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewOpenRouterClient("test-key", "", zerolog.Nop())
	require.NoError(t, err)
	client.endpoint = server.URL

	_, err = client.Generate(context.Background(), "anything")
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
