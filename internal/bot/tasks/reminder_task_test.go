package tasks_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebot/internal/bot/tasks"
	"pagebot/internal/config"
	"pagebot/internal/database"
)

// memStore keeps users in memory and mimics the NULL-guarded reminder mark.
type memStore struct {
	users   []*database.User
	findErr error
	markErr map[string]error // keyed by sender_id
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) FindOrCreateUser(_ context.Context, senderID string) (*database.User, error) {
	for _, u := range m.users {
		if u.SenderID == senderID {
			return u, nil
		}
	}
	u := &database.User{ID: uint(len(m.users) + 1), SenderID: senderID, CreatedAt: time.Now().UTC()}
	m.users = append(m.users, u)
	return u, nil
}

func (m *memStore) FindUsersToRemind(_ context.Context, olderThan time.Duration) ([]*database.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	var out []*database.User
	for _, u := range m.users {
		if !u.ReminderSentAt.Valid && u.CreatedAt.Before(cutoff) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) MarkUserReminded(_ context.Context, user *database.User) error {
	if err := m.markErr[user.SenderID]; err != nil {
		return err
	}
	user.ReminderSentAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	return nil
}

// recordingSender records reminded sender IDs and can fail for given ones.
type recordingSender struct {
	sent    []string
	failFor map[string]error
}

func (r *recordingSender) SendReminder(_ context.Context, senderID string) error {
	if err := r.failFor[senderID]; err != nil {
		return err
	}
	r.sent = append(r.sent, senderID)
	return nil
}

func staleUser(id uint, senderID string, age time.Duration) *database.User {
	return &database.User{
		ID:        id,
		SenderID:  senderID,
		CreatedAt: time.Now().UTC().Add(-age),
	}
}

func testDeps(store database.Store, sender tasks.ReminderSender) tasks.TaskDeps {
	return tasks.TaskDeps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:    store,
		Reminder: sender,
		Config: &config.Config{
			Reminder: config.ReminderConfig{Threshold: 24 * time.Hour},
		},
	}
}

func TestUserReminderTaskRemindsStaleUsersOnce(t *testing.T) {
	t.Parallel()

	store := &memStore{users: []*database.User{
		staleUser(1, "100", 30*time.Hour),
		staleUser(2, "101", 25*time.Hour),
	}}
	sender := &recordingSender{}

	task := tasks.RegisterAllTasks(testDeps(store, sender))["user_reminder"]
	require.NotNil(t, task)

	require.NoError(t, task(context.Background()))
	assert.Equal(t, []string{"100", "101"}, sender.sent)

	// Second scan finds nothing: both users are marked.
	require.NoError(t, task(context.Background()))
	assert.Equal(t, []string{"100", "101"}, sender.sent)
}

func TestUserReminderTaskSkipsFreshUsers(t *testing.T) {
	t.Parallel()

	store := &memStore{users: []*database.User{
		staleUser(1, "100", 2*time.Hour),
	}}
	sender := &recordingSender{}

	task := tasks.RegisterAllTasks(testDeps(store, sender))["user_reminder"]

	require.NoError(t, task(context.Background()))
	assert.Empty(t, sender.sent)
	assert.False(t, store.users[0].ReminderSentAt.Valid)
}

func TestUserReminderTaskIsolatesPerUserFailures(t *testing.T) {
	t.Parallel()

	store := &memStore{users: []*database.User{
		staleUser(1, "100", 30*time.Hour),
		staleUser(2, "101", 30*time.Hour),
		staleUser(3, "102", 30*time.Hour),
	}}
	sender := &recordingSender{failFor: map[string]error{"101": errors.New("send failed")}}

	task := tasks.RegisterAllTasks(testDeps(store, sender))["user_reminder"]

	require.NoError(t, task(context.Background()))
	assert.Equal(t, []string{"100", "102"}, sender.sent)
	assert.True(t, store.users[0].ReminderSentAt.Valid)
	assert.False(t, store.users[1].ReminderSentAt.Valid, "failed send must leave the user unmarked")
	assert.True(t, store.users[2].ReminderSentAt.Valid)

	// The unmarked user is retried on the next scan.
	sender.failFor = nil
	require.NoError(t, task(context.Background()))
	assert.Equal(t, []string{"100", "102", "101"}, sender.sent)
	assert.True(t, store.users[1].ReminderSentAt.Valid)
}

func TestUserReminderTaskLeavesUserEligibleWhenMarkFails(t *testing.T) {
	t.Parallel()

	store := &memStore{
		users:   []*database.User{staleUser(1, "100", 30*time.Hour)},
		markErr: map[string]error{"100": errors.New("db locked")},
	}
	sender := &recordingSender{}

	task := tasks.RegisterAllTasks(testDeps(store, sender))["user_reminder"]

	require.NoError(t, task(context.Background()))
	require.Equal(t, []string{"100"}, sender.sent)
	assert.False(t, store.users[0].ReminderSentAt.Valid)

	// Next scan re-sends: delivery is at-least-once when the mark fails.
	store.markErr = nil
	require.NoError(t, task(context.Background()))
	assert.Equal(t, []string{"100", "100"}, sender.sent)
}

func TestUserReminderTaskPropagatesQueryError(t *testing.T) {
	t.Parallel()

	store := &memStore{findErr: errors.New("db gone")}
	sender := &recordingSender{}

	task := tasks.RegisterAllTasks(testDeps(store, sender))["user_reminder"]

	err := task(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to fetch users to remind")
	assert.Empty(t, sender.sent)
}
