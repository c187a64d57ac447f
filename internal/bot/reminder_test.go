package bot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebot/internal/bot"
)

func TestReminderNotifierSendsOneMessage(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewRealClock()
	client := newFakeClient(clock)
	n := bot.NewReminderNotifier(bot.NewResponder(client, clock, discardLogger()))

	require.NoError(t, n.SendReminder(context.Background(), "100"))

	sends := client.recorded()
	require.Len(t, sends, 1)
	assert.Equal(t, "100", sends[0].recipientID)
	assert.NotEmpty(t, sends[0].message.Text)
}

func TestReminderNotifierPropagatesSendFailure(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewRealClock()
	client := newFakeClient(clock)
	client.failOn[1] = errors.New("send failed")
	n := bot.NewReminderNotifier(bot.NewResponder(client, clock, discardLogger()))

	err := n.SendReminder(context.Background(), "100")
	require.Error(t, err)
	assert.Empty(t, client.recorded())
}
