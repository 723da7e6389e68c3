package handler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"roulette-bot/internal/game/roulette"
	"roulette-bot/internal/model"
	"roulette-bot/internal/pkg/lock"
	"roulette-bot/internal/service"
)

// fakeContext implements the handful of tele.Context methods the handlers
// call. Any other method panics on the nil embedded interface.
type fakeContext struct {
	tele.Context
	sender  *tele.User
	chat    *tele.Chat
	args    []string
	replies []string
	sent    []string
}

func (c *fakeContext) Sender() *tele.User { return c.sender }
func (c *fakeContext) Chat() *tele.Chat   { return c.chat }
func (c *fakeContext) Args() []string     { return c.args }

func (c *fakeContext) Reply(what interface{}, _ ...interface{}) error {
	c.replies = append(c.replies, fmt.Sprint(what))
	return nil
}

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, fmt.Sprint(what))
	return nil
}

func newFakeContext(userID int64, username string, chatID int64, args ...string) *fakeContext {
	return &fakeContext{
		sender: &tele.User{ID: userID, Username: username},
		chat:   &tele.Chat{ID: chatID, Type: tele.ChatGroup},
		args:   args,
	}
}

// memAccounts is an in-memory ledger for the handler tests.
type memAccounts struct {
	mu       sync.Mutex
	balances map[int64]int64
	starting int64
	adds     []string
}

func newMemAccounts(starting int64) *memAccounts {
	return &memAccounts{balances: make(map[int64]int64), starting: starting}
}

func (m *memAccounts) EnsureUser(_ context.Context, id int64, username string) (*model.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		b = m.starting
		m.balances[id] = b
	}
	return &model.User{TelegramID: id, Username: username, Balance: b}, !ok, nil
}

func (m *memAccounts) GetBalance(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", service.ErrUnknownBettor, id)
	}
	return b, nil
}

func (m *memAccounts) CurrentBalance(ctx context.Context, id int64) (int64, error) {
	return m.GetBalance(ctx, id)
}

func (m *memAccounts) AdjustBalance(_ context.Context, id int64, amount int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[id]; !ok {
		return fmt.Errorf("%w: %d", service.ErrUnknownBettor, id)
	}
	m.balances[id] += amount
	return nil
}

func (m *memAccounts) UpdateBalance(_ context.Context, id int64, amount int64, txType string, _ *string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[id]; !ok {
		return nil, fmt.Errorf("%w: %d", service.ErrUnknownBettor, id)
	}
	m.balances[id] += amount
	m.adds = append(m.adds, txType)
	return &model.User{TelegramID: id, Balance: m.balances[id]}, nil
}

func (m *memAccounts) RouletteNet(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[id] - m.starting, nil
}

func (m *memAccounts) balance(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[id]
}

// heldScheduler keeps the round open until the test fires it.
type heldScheduler struct {
	mu  sync.Mutex
	fns []func()
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

func (s *heldScheduler) AfterFunc(_ time.Duration, fn func()) roulette.Timer {
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
	return heldTimer{}
}

func (s *heldScheduler) fire() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type pocketSource struct{ index int }

func (p pocketSource) IntN(int) int { return p.index }

type handlerFixture struct {
	accounts  *memAccounts
	engine    *roulette.Engine
	scheduler *heldScheduler
	sender    *fakeSender
	handler   *RouletteHandler
	names     *Names
}

func newHandlerFixture(t *testing.T, winner roulette.Pocket) *handlerFixture {
	t.Helper()
	accounts := newMemAccounts(1000)
	names := NewNames()
	sender := &fakeSender{}
	reporter := NewTelegramReporter(names)
	reporter.SetSender(sender)
	scheduler := &heldScheduler{}

	wheel := roulette.NewWheel(nil)
	engine, err := roulette.NewEngine(roulette.Dependencies{
		Wheel:     roulette.NewWheel(pocketSource{index: wheel.IndexOf(winner)}),
		Ledger:    accounts,
		Durations: roulette.FixedDuration(20 * time.Second),
		Scheduler: scheduler,
		Reporter:  reporter,
	})
	require.NoError(t, err)

	return &handlerFixture{
		accounts:  accounts,
		engine:    engine,
		scheduler: scheduler,
		sender:    sender,
		handler:   NewRouletteHandler(engine, accounts, names),
		names:     names,
	}
}

func TestRouletteHandler_StartCreatesAccount(t *testing.T) {
	f := newHandlerFixture(t, 17)

	c := newFakeContext(1, "alice", -100)
	require.NoError(t, f.handler.HandleStart(c))
	require.Len(t, c.replies, 1)
	assert.Contains(t, c.replies[0], "Welcome @alice! You start with 1000 points.")

	c = newFakeContext(1, "alice", -100)
	require.NoError(t, f.handler.HandleStart(c))
	assert.Equal(t, []string{"💰 Balance: 1000 points"}, c.replies)
}

func TestRouletteHandler_BetAndResolve(t *testing.T) {
	f := newHandlerFixture(t, 17)
	ctx := context.Background()
	_, _, _ = f.accounts.EnsureUser(ctx, 1, "alice")
	_, _, _ = f.accounts.EnsureUser(ctx, 2, "bob")

	c := newFakeContext(1, "alice", -100, "10", "17")
	require.NoError(t, f.handler.HandleBet(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "@alice is starting a new game of Roulette, ending in 20 seconds")
	assert.Contains(t, c.sent[0], "@alice bet 10 points on 17 with odds of <code>1:36</code>")

	c = newFakeContext(2, "bob", -100, "5", "RED")
	require.NoError(t, f.handler.HandleBet(c))
	require.Len(t, c.sent, 1)
	assert.NotContains(t, c.sent[0], "starting a new game")

	assert.Equal(t, int64(990), f.accounts.balance(1))
	assert.Equal(t, int64(995), f.accounts.balance(2))

	tc := newFakeContext(2, "bob", -100)
	require.NoError(t, f.handler.HandleTime(tc))
	assert.Equal(t, []string{"⏱ 20 seconds left. 2 bets for 15 points on the table."}, tc.replies)

	f.scheduler.fire()

	assert.Equal(t, int64(1350), f.accounts.balance(1))
	assert.Equal(t, int64(995), f.accounts.balance(2))

	msgs := f.sender.texts()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "The winning number is <code>17</code> ⬛️")
	assert.Contains(t, msgs[0], "@alice wins 360")
	assert.NotContains(t, msgs[0], "bob")

	tc = newFakeContext(2, "bob", -100)
	require.NoError(t, f.handler.HandleTime(tc))
	assert.Equal(t, []string{msgNoRound}, tc.replies)
}

func TestRouletteHandler_BetRejections(t *testing.T) {
	f := newHandlerFixture(t, 17)
	_, _, _ = f.accounts.EnsureUser(context.Background(), 1, "alice")

	tests := []struct {
		name string
		user int64
		args []string
		want string
	}{
		{"usage", 1, []string{"10"}, msgBetUsage},
		{"bad amount", 1, []string{"ten", "red"}, msgBadAmount},
		{"unknown placement", 1, []string{"10", "purple"}, msgUnknownPlacement},
		{"insufficient", 1, []string{"5000", "red"}, msgInsufficient},
		{"no account", 9, []string{"10", "red"}, msgNoAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeContext(tt.user, "someone", -100, tt.args...)
			require.NoError(t, f.handler.HandleBet(c))
			assert.Equal(t, []string{tt.want}, c.replies)
			assert.Empty(t, c.sent)
		})
	}

	assert.Equal(t, int64(1000), f.accounts.balance(1))
	assert.False(t, f.engine.IsSessionActive(-100))
}

func TestRouletteHandler_BetAll(t *testing.T) {
	f := newHandlerFixture(t, 0)
	_, _, _ = f.accounts.EnsureUser(context.Background(), 1, "alice")

	c := newFakeContext(1, "alice", -100, "all", "odd")
	require.NoError(t, f.handler.HandleBet(c))
	require.Len(t, c.sent, 1)
	assert.Equal(t, int64(0), f.accounts.balance(1))

	f.scheduler.fire()
	assert.Equal(t, int64(0), f.accounts.balance(1))
	require.Len(t, f.sender.texts(), 1)
	assert.Contains(t, f.sender.texts()[0], msgNoWinners)
}

func TestRouletteHandler_Stats(t *testing.T) {
	f := newHandlerFixture(t, 5)
	_, _, _ = f.accounts.EnsureUser(context.Background(), 1, "alice")

	require.NoError(t, f.handler.HandleBet(newFakeContext(1, "alice", -100, "100", "black")))
	f.scheduler.fire()

	c := newFakeContext(1, "alice", -100)
	require.NoError(t, f.handler.HandleStats(c))
	require.Len(t, c.replies, 1)
	assert.Contains(t, c.replies[0], "♠️♥️ Casino Roulette Balance ♣️♦️\n100")
	assert.Contains(t, c.replies[0], "Last 1 spins: 🟥 1")
	assert.Contains(t, c.replies[0], "Your roulette result: -100")
}

func TestRouletteHandler_InfoAndBets(t *testing.T) {
	f := newHandlerFixture(t, 17)

	c := newFakeContext(1, "alice", -100)
	require.NoError(t, f.handler.HandleInfo(c))
	assert.Equal(t, []string{formatHelp()}, c.replies)

	c = newFakeContext(1, "alice", -100)
	require.NoError(t, f.handler.HandleBets(c))
	require.Len(t, c.replies, 1)
	assert.Contains(t, c.replies[0], "The following bets can be made:")
}

func TestAdminHandler_Add(t *testing.T) {
	accounts := newMemAccounts(1000)
	_, _, _ = accounts.EnsureUser(context.Background(), 5, "carol")
	h := NewAdminHandler(accounts, lock.NewKeyedLock(), NewNames())

	c := newFakeContext(99, "admin", -100, "5", "250")
	require.NoError(t, h.HandleAdd(c))
	require.Len(t, c.replies, 1)
	assert.Contains(t, c.replies[0], "➕ Added: 250 points")
	assert.Contains(t, c.replies[0], "💰 Balance: 1250 points")
	assert.Equal(t, []string{model.TxTypeAdminAdd}, accounts.adds)

	c = newFakeContext(99, "admin", -100, "6", "250")
	require.NoError(t, h.HandleAdd(c))
	assert.Equal(t, []string{"❌ Unknown user"}, c.replies)
}

func TestAdminHandler_WaitsForBettorLock(t *testing.T) {
	accounts := newMemAccounts(1000)
	_, _, _ = accounts.EnsureUser(context.Background(), 5, "carol")
	bettors := lock.NewKeyedLock()
	h := NewAdminHandler(accounts, bettors, NewNames())

	require.NoError(t, bettors.Lock(context.Background(), 5))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.HandleAdd(newFakeContext(99, "admin", -100, "5", "1"))
	}()

	select {
	case <-done:
		t.Fatal("credit ran while the bettor was locked")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int64(1000), accounts.balance(5))

	bettors.Unlock(5)
	<-done
	assert.Equal(t, int64(1001), accounts.balance(5))
}

func TestParseAdminArgs(t *testing.T) {
	id, amount, err := parseAdminArgs([]string{"123", "50"})
	require.NoError(t, err)
	assert.Equal(t, int64(123), id)
	assert.Equal(t, int64(50), amount)

	for _, args := range [][]string{{"123"}, {"x", "50"}, {"123", "0"}, {"123", "-4"}, {"123", "y"}} {
		_, _, err := parseAdminArgs(args)
		assert.Error(t, err, "%v", args)
	}
}
