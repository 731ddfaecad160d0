package storage_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := storage.Open("sqlite", dsn, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := storage.Open("mysql", "", logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestUsers_GetSave(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewUserRepository(openDB(t))

	u, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, u, "missing user is not an error")

	require.NoError(t, repo.Save(ctx, &storage.User{ID: 42, Username: "kit", Role: storage.RoleManagingAgent}))

	u, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "kit", u.Username)
	assert.Equal(t, storage.RoleManagingAgent, u.Role)
	assert.False(t, u.ProfileComplete())

	u.FirstName, u.LastName, u.LegalEntity = "Kit", "Marlowe", "Acme"
	require.NoError(t, repo.Save(ctx, u))

	u, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, u.ProfileComplete(), "middle name is still missing")
	assert.Equal(t, "Marlowe Kit", u.FullName())

	u.MiddleName = "Quinn"
	require.NoError(t, repo.Save(ctx, u))

	u, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, u.ProfileComplete())
	assert.Equal(t, "Marlowe Kit Quinn", u.FullName())
}

type countingUsers struct {
	storage.UserRepository
	gets int
}

func (c *countingUsers) Get(ctx context.Context, id int64) (*storage.User, error) {
	c.gets++
	return c.UserRepository.Get(ctx, id)
}

func TestCachedUsers(t *testing.T) {
	ctx := context.Background()
	backend := &countingUsers{UserRepository: storage.NewUserRepository(openDB(t))}
	users := storage.NewCachedUsers(backend, time.Minute)

	require.NoError(t, users.Save(ctx, &storage.User{ID: 7, FirstName: "Ada"}))

	u, err := users.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, 0, backend.gets, "saved user is served from cache")

	// Callers get copies; mutating one does not leak into the cache.
	u.FirstName = "changed"
	u, err = users.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)

	missing, err := users.Get(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 1, backend.gets)
}

func TestTickets_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewTicketRepository(openDB(t))

	draft, err := repo.Draft(ctx, "ref-1", 5)
	require.NoError(t, err)
	assert.Equal(t, storage.TicketDraft, draft.Status)

	again, err := repo.Draft(ctx, "ref-1", 5)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, again.ID, "draft is reused for the same ref")

	require.NoError(t, repo.Answer(ctx, "ref-1", storage.TicketAnswer{SequenceID: 0, ItemID: 100, Answer: "Plumbing"}))
	require.NoError(t, repo.Answer(ctx, "ref-1", storage.TicketAnswer{SequenceID: 3, ItemID: 130, Kind: storage.AnswerText, Answer: "Leaking tap"}))
	require.NoError(t, repo.Answer(ctx, "ref-1", storage.TicketAnswer{SequenceID: 3, ItemID: 131, Kind: storage.AnswerImage, Answer: "file-abc"}))

	submitted, err := repo.Submit(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, storage.TicketSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, "file-abc", submitted.Image)
	assert.Equal(t, "Leaking tap", submitted.Description)
	require.Len(t, submitted.Answers, 3)
	assert.Equal(t, "Plumbing / Leaking tap", submitted.Summary(0))
	assert.Equal(t, "Plumb…", submitted.Summary(5))
}

func TestTickets_ReansweringVoidsLaterAnswers(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewTicketRepository(openDB(t))
	_, err := repo.Draft(ctx, "ref-2", 5)
	require.NoError(t, err)

	answer := func(seq, item int, kind storage.AnswerKind, text string) {
		t.Helper()
		require.NoError(t, repo.Answer(ctx, "ref-2", storage.TicketAnswer{SequenceID: seq, ItemID: item, Kind: kind, Answer: text}))
	}
	answer(0, 100, storage.AnswerChoice, "Plumbing")
	answer(1, 110, storage.AnswerChoice, "Leak")
	answer(3, 130, storage.AnswerText, "Wet floor")

	// A new category abandons the plumbing branch.
	answer(0, 100, storage.AnswerChoice, "Electricity")
	answer(2, 120, storage.AnswerChoice, "Outage")

	ticket, err := repo.Get(ctx, "ref-2")
	require.NoError(t, err)
	assert.Equal(t, "Electricity / Outage", ticket.Summary(0))
	assert.Empty(t, ticket.Description, "the description belonged to the abandoned branch")
}

func TestTickets_RewindAndDiscard(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewTicketRepository(openDB(t))
	_, err := repo.Draft(ctx, "ref-3", 5)
	require.NoError(t, err)

	require.NoError(t, repo.Answer(ctx, "ref-3", storage.TicketAnswer{SequenceID: 0, ItemID: 100, Answer: "Other"}))
	require.NoError(t, repo.Answer(ctx, "ref-3", storage.TicketAnswer{SequenceID: 3, ItemID: 130, Kind: storage.AnswerText, Answer: "Door"}))

	require.NoError(t, repo.Rewind(ctx, "ref-3", 3, 131), "unanswered step")
	ticket, err := repo.Get(ctx, "ref-3")
	require.NoError(t, err)
	assert.Len(t, ticket.Answers, 2)

	require.NoError(t, repo.Rewind(ctx, "ref-3", 3, 130))
	ticket, err = repo.Get(ctx, "ref-3")
	require.NoError(t, err)
	assert.Equal(t, "Other", ticket.Summary(0))
	assert.Empty(t, ticket.Description)

	require.NoError(t, repo.Discard(ctx, "ref-3"))
	_, err = repo.Get(ctx, "ref-3")
	assert.ErrorIs(t, err, storage.ErrTicketNotFound)
}

func TestTickets_DiscardKeepsSubmitted(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewTicketRepository(openDB(t))
	_, err := repo.Draft(ctx, "ref-4", 5)
	require.NoError(t, err)
	_, err = repo.Submit(ctx, "ref-4")
	require.NoError(t, err)

	require.NoError(t, repo.Discard(ctx, "ref-4"))
	ticket, err := repo.Get(ctx, "ref-4")
	require.NoError(t, err)
	assert.Equal(t, storage.TicketSubmitted, ticket.Status)
}

func TestTickets_UnknownRef(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewTicketRepository(openDB(t))

	_, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrTicketNotFound)
	assert.ErrorIs(t, repo.Rewind(ctx, "nope", 0, 100), storage.ErrTicketNotFound)
	assert.ErrorIs(t, repo.Answer(ctx, "nope", storage.TicketAnswer{}), storage.ErrTicketNotFound)
	assert.NoError(t, repo.Discard(ctx, "nope"))
	_, err = repo.Submit(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrTicketNotFound)
}

func TestPolls_UpsertKeepsLatest(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewPollRepository(openDB(t))

	require.NoError(t, repo.Upsert(ctx, &storage.PollAnswer{UserID: 1, DialogID: 3, ItemID: 1, Answer: "poll_opt_1"}))
	require.NoError(t, repo.Upsert(ctx, &storage.PollAnswer{UserID: 1, DialogID: 3, ItemID: 2, Answer: "poll_opt_6"}))
	require.NoError(t, repo.Upsert(ctx, &storage.PollAnswer{UserID: 1, DialogID: 3, ItemID: 1, Answer: "poll_opt_4"}))
	require.NoError(t, repo.Upsert(ctx, &storage.PollAnswer{UserID: 2, DialogID: 3, ItemID: 1, Answer: "poll_opt_2"}))

	got, err := repo.List(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "poll_opt_4", got[0].Answer)
	assert.Equal(t, "poll_opt_6", got[1].Answer)
}

func TestFeedback_Create(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewFeedbackRepository(openDB(t))

	require.NoError(t, repo.Create(ctx, &storage.Feedback{UserID: 9, DialogID: 4, ItemID: 2, Answer: "great"}))
	require.NoError(t, repo.Create(ctx, &storage.Feedback{UserID: 9, DialogID: 4, ItemID: 3, Answer: "more buttons"}))

	got, err := repo.List(ctx, 9)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "great", got[0].Answer)
}

func TestParseRole(t *testing.T) {
	r, ok := storage.ParseRole(" 1 ")
	assert.True(t, ok)
	assert.Equal(t, storage.RoleDecisionMaker, r)
	assert.Equal(t, "role_decision_maker", r.Key())

	r, ok = storage.ParseRole("x")
	assert.False(t, ok)
	assert.Equal(t, "role_unknown", r.Key())
}
