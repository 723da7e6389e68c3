package handler

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"roulette-bot/internal/game/roulette"
)

// User-facing replies.
const (
	msgBetUsage         = "⚠️ Incorrect format. Use: <code>/rbet [amount] [bet_placement]</code>"
	msgBadAmount        = "⚠️ <code>amount</code> must be a whole, positive number"
	msgInsufficient     = "⚠️ You don't have enough points to make that bet!"
	msgUnknownPlacement = "⚠️ <code>bet_placement</code> is unknown. See /rbets for possible bets"
	msgNoAccount        = "⚠️ You don't have an account yet. Use /start first."
	msgNoRound          = "There is no game of Roulette running. Use /rbet to start one."
	msgInternal         = "❌ Something went wrong, please try again later"
	msgNoWinners        = "<i>There are no winners.</i>"
)

var errBetUsage = errors.New(msgBetUsage)

// parseBetArgs splits /rbet arguments into an amount and a placement.
// The amount is a positive whole number or "all" for the full balance.
func parseBetArgs(args []string, balance int64) (int64, string, error) {
	if len(args) != 2 {
		return 0, "", errBetUsage
	}
	amount, err := parseAmount(args[0], balance)
	if err != nil {
		return 0, "", err
	}
	return amount, args[1], nil
}

func parseAmount(s string, balance int64) (int64, error) {
	if strings.EqualFold(s, "all") {
		if balance <= 0 {
			return 0, errors.New(msgInsufficient)
		}
		return balance, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New(msgBadAmount)
	}
	return n, nil
}

// wagerErrorMessage maps an engine rejection to a reply.
func wagerErrorMessage(err error) string {
	switch {
	case errors.Is(err, roulette.ErrInvalidStake):
		return msgBadAmount
	case errors.Is(err, roulette.ErrInsufficientBalance):
		return msgInsufficient
	case errors.Is(err, roulette.ErrUnknownAlias):
		return msgUnknownPlacement
	default:
		return msgInternal
	}
}

// mention renders a bettor the way chat members see them.
func mention(name string, id int64) string {
	if name == "" {
		return strconv.FormatInt(id, 10)
	}
	return "@" + html.EscapeString(name)
}

func seconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

func pocketList(ps []roulette.Pocket) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func formatAck(ack *roulette.Acknowledgment, name string) string {
	var b strings.Builder
	who := mention(name, ack.BettorID)
	if ack.OpenedRound {
		secs := seconds(ack.Duration)
		fmt.Fprintf(&b, "📢 %s is starting a new game of Roulette, ending in %d seconds...\n", who, secs)
		fmt.Fprintf(&b, "Place a bet within %d seconds to participate.\n\n", secs)
	}
	fmt.Fprintf(&b, "%s bet %d points on %s with odds of <code>1:%d</code>",
		who, ack.Stake, pocketList(ack.Bet.Pockets), ack.Multiplier)
	return b.String()
}

func colorMarker(c roulette.Color) string {
	switch c {
	case roulette.Red:
		return "🟥"
	case roulette.Green:
		return "🟩"
	default:
		return "⬛️"
	}
}

// formatResult renders a resolved round. names maps bettor ids to usernames.
func formatResult(r *roulette.RoundResult, names func(int64) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The winning number is <code>%s</code> %s\n", r.Pocket, colorMarker(r.Color))
	if len(r.Left) > 0 || len(r.Right) > 0 {
		fmt.Fprintf(&b, "Wheel: %s [%s] %s\n", pocketList(r.Left), r.Pocket, pocketList(r.Right))
	}
	if r.NoWinners() {
		b.WriteString(msgNoWinners)
		return b.String()
	}
	for _, p := range r.Payouts {
		fmt.Fprintf(&b, "%s wins %d\n", mention(names(p.BettorID), p.BettorID), p.Amount)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHelp() string {
	return "♠️♥️ Welcome to Roulette ♣️♦️\n\n" +
		"/rbet to place a bet\n" +
		"/rbets to show the possible bets and table layout\n" +
		"/rtime to show the time left in the current game\n" +
		"/rstat to show the casino balance"
}

// betGuide lists each family once with an example alias and its odds.
var betGuide = []struct {
	family   roulette.BetFamily
	title    string
	about    string
	examples string
}{
	{roulette.FamilyStraight, "Straight Up", "Bet on a single number.", "10 or 00"},
	{roulette.FamilySplit, "Split", "Bet on two numbers next to each other, horizontal or vertical.", "5|6 or 5_8 or 10-11"},
	{roulette.FamilyStreet, "Street", "Bet on three numbers in a single row.", "|10 or 15| or 4-6"},
	{roulette.FamilyTrio, "Trio", "Bet on three numbers including 0 and/or 00.", "0-1-2 or 00-2-3 or 0-00-2"},
	{roulette.FamilyCorner, "Corner", "Bet on four neighbouring numbers.", "13+17 or 7-11"},
	{roulette.FamilyBasket, "Basket", "Bet on 0-00-1-2-3.", "0-00-1-2-3 or BASKET"},
	{roulette.FamilySixLine, "Sixline", "Bet on two adjacent rows.", "4-9"},
	{roulette.FamilyColumn, "Column", "Bet on a vertical column (12 numbers, except 0 and 00).", "COL1 or 1-34"},
	{roulette.FamilyDozen, "Dozens", "Bet on one of the three dozens.", "1D or 13-24"},
	{roulette.FamilySnake, "Snake", "Bet on the red numbers zigzagging from 1 to 34.", "SNAKE"},
	{roulette.FamilyOddEven, "Odd/Even", "Bet on all odd or even numbers (except 0 and 00).", "ODD or EVEN"},
	{roulette.FamilyColor, "Red/Black", "Bet on all red or black numbers.", "RED or BLACK"},
	{roulette.FamilyLowHigh, "Low/High", "Bet on one half of the numbers (except 0 and 00).", "1-18 or 19-36 or LOW or HIGH"},
}

// formatBets builds the bet guide. Odds come from the catalog so the text
// cannot drift from what the table pays.
func formatBets(c *roulette.Catalog) string {
	odds := make(map[roulette.BetFamily]int)
	for _, def := range c.Definitions() {
		if _, ok := odds[def.Family]; !ok {
			odds[def.Family] = def.Multiplier
		}
	}

	var b strings.Builder
	b.WriteString("The following bets can be made:\n")
	for _, g := range betGuide {
		fmt.Fprintf(&b, "\n<b>%s</b>  <code>1:%d</code>\n%s\nExamples: <code>%s</code>\n",
			g.title, odds[g.family], g.about, html.EscapeString(g.examples))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(s roulette.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "♠️♥️ Casino Roulette Balance ♣️♦️\n%d", s.HouseBalance)
	if s.Report.Samples == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n\nLast %d spins: %s %d  %s %d  %s %d\n",
		s.Report.Samples,
		colorMarker(roulette.Red), s.Report.ByColor[roulette.Red],
		colorMarker(roulette.Black), s.Report.ByColor[roulette.Black],
		colorMarker(roulette.Green), s.Report.ByColor[roulette.Green])

	hot := hottest(s.Report.ByPocket, 3)
	parts := make([]string, len(hot))
	for i, t := range hot {
		parts[i] = fmt.Sprintf("%s×%d", t.Pocket, t.Count)
	}
	fmt.Fprintf(&b, "Hot numbers: %s", strings.Join(parts, ", "))
	return b.String()
}

// hottest returns up to n tallies with the highest counts, keeping wheel
// order among equal counts. Pockets never drawn are skipped.
func hottest(tallies []roulette.PocketTally, n int) []roulette.PocketTally {
	out := make([]roulette.PocketTally, 0, n)
	for _, t := range tallies {
		if t.Count == 0 {
			continue
		}
		i := len(out)
		for i > 0 && out[i-1].Count < t.Count {
			i--
		}
		if i >= n {
			continue
		}
		out = append(out, roulette.PocketTally{})
		copy(out[i+1:], out[i:])
		out[i] = t
		if len(out) > n {
			out = out[:n]
		}
	}
	return out
}

func formatTime(info roulette.SessionInfo, remaining time.Duration) string {
	return fmt.Sprintf("⏱ %d seconds left. %d bets for %d points on the table.",
		seconds(remaining), info.Wagers, info.Staked)
}
