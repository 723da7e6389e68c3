package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/game/roulette"
)

type sentMessage struct {
	to   string
	text string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	deleted []int
	failAll bool
	nextID  int
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("telegram down")
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{to: to.Recipient(), text: fmt.Sprint(what)})
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeSender) Delete(msg tele.Editable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := msg.MessageSig()
	var n int
	_, _ = fmt.Sscan(id, &n)
	f.deleted = append(f.deleted, n)
	return nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.text
	}
	return out
}

func TestNames(t *testing.T) {
	n := NewNames()
	n.Remember(&tele.User{ID: 1, Username: "alice"})
	n.Remember(&tele.User{ID: 2, FirstName: "Bob"})
	n.Remember(nil)

	assert.Equal(t, "alice", n.Lookup(1))
	assert.Equal(t, "Bob", n.Lookup(2))
	assert.Equal(t, "", n.Lookup(3))
}

func TestTelegramReporter_PostsToTableChat(t *testing.T) {
	names := NewNames()
	names.Remember(&tele.User{ID: 1, Username: "alice"})
	sender := &fakeSender{}
	r := NewTelegramReporter(names)
	r.SetSender(sender)

	r.ReportRound(context.Background(), &roulette.RoundResult{
		TableID: -100,
		Pocket:  roulette.Zero,
		Color:   roulette.Green,
		Payouts: []roulette.Payout{{BettorID: 1, Amount: 36}},
	})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "-100", sender.sent[0].to)
	assert.Equal(t, "The winning number is <code>0</code> 🟩\n@alice wins 36", sender.sent[0].text)
}

func TestTelegramReporter_SendFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{failAll: true}
	r := NewTelegramReporter(NewNames())
	r.SetSender(sender)

	r.ReportRound(context.Background(), &roulette.RoundResult{TableID: 1, Pocket: 3, Color: roulette.Red})
	assert.Empty(t, r.tracked)

	// No sender attached yet.
	NewTelegramReporter(NewNames()).ReportRound(context.Background(), &roulette.RoundResult{TableID: 1})
}

func TestTelegramReporter_CleansOldMessages(t *testing.T) {
	sender := &fakeSender{}
	r := NewTelegramReporter(NewNames())
	r.SetSender(sender)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	r.ReportRound(context.Background(), &roulette.RoundResult{TableID: 1, Pocket: 3, Color: roulette.Red})

	now = now.Add(10 * time.Minute)
	r.ReportRound(context.Background(), &roulette.RoundResult{TableID: 1, Pocket: 4, Color: roulette.Black})

	now = now.Add(MessageDeleteInterval - 5*time.Minute)
	r.cleanOldMessages()

	assert.Equal(t, []int{1}, sender.deleted)
	require.Len(t, r.tracked, 1)
	assert.Equal(t, 2, r.tracked[0].messageID)
}
