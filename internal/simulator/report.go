package simulator

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/pokerbattle/internal/evaluator"
	"github.com/lox/pokerbattle/internal/fileutil"
	"github.com/lox/pokerbattle/internal/game"
)

// tally accumulates one worker's results
type tally struct {
	rounds      int
	outcomes    [3]int
	playerRanks [len(evaluator.HandRanks)]int
	enemyRanks  [len(evaluator.HandRanks)]int
	reshuffles  int
}

func newTally() *tally {
	return &tally{}
}

func (t *tally) record(r game.Result) {
	t.rounds++
	t.outcomes[r.Outcome]++
	t.playerRanks[r.PlayerRank]++
	t.enemyRanks[r.EnemyRank]++
}

// Report summarises a simulation run. Maps are keyed by outcome and hand
// rank names.
type Report struct {
	Rounds         int            `json:"rounds"`
	Workers        int            `json:"workers"`
	Seed           int64          `json:"seed"`
	HandSize       int            `json:"handSize"`
	IncludeJoker   bool           `json:"includeJoker"`
	PlayerStrategy Strategy       `json:"playerStrategy"`
	EnemyStrategy  Strategy       `json:"enemyStrategy"`
	Outcomes       map[string]int `json:"outcomes"`
	PlayerRanks    map[string]int `json:"playerRanks"`
	EnemyRanks     map[string]int `json:"enemyRanks"`
	Reshuffles     int            `json:"reshuffles"`
	Elapsed        time.Duration  `json:"elapsedNs"`
}

func newReport(config Config, workers int) *Report {
	r := &Report{
		Workers:        workers,
		Seed:           config.Seed,
		HandSize:       config.Rules.HandSize,
		IncludeJoker:   config.Rules.IncludeJoker,
		PlayerStrategy: config.PlayerStrategy,
		EnemyStrategy:  config.EnemyStrategy,
		Outcomes:       make(map[string]int, 3),
		PlayerRanks:    make(map[string]int, len(evaluator.HandRanks)),
		EnemyRanks:     make(map[string]int, len(evaluator.HandRanks)),
	}
	for _, outcome := range []game.BattleResult{game.Draw, game.PlayerWin, game.EnemyWin} {
		r.Outcomes[outcome.String()] = 0
	}
	for _, rank := range evaluator.HandRanks {
		r.PlayerRanks[rank.String()] = 0
		r.EnemyRanks[rank.String()] = 0
	}
	return r
}

func (r *Report) add(t *tally) {
	r.Rounds += t.rounds
	r.Reshuffles += t.reshuffles
	for outcome, n := range t.outcomes {
		r.Outcomes[game.BattleResult(outcome).String()] += n
	}
	for _, rank := range evaluator.HandRanks {
		r.PlayerRanks[rank.String()] += t.playerRanks[rank]
		r.EnemyRanks[rank.String()] += t.enemyRanks[rank]
	}
}

// PlayerWinRate returns the share of rounds the player won
func (r *Report) PlayerWinRate() float64 {
	if r.Rounds == 0 {
		return 0
	}
	return float64(r.Outcomes[game.PlayerWin.String()]) / float64(r.Rounds)
}

// Summary renders the report as plain text
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rounds: %d (workers %d, seed %d)\n", r.Rounds, r.Workers, r.Seed)
	fmt.Fprintf(&b, "Hand size: %d, joker: %t\n", r.HandSize, r.IncludeJoker)
	fmt.Fprintf(&b, "Strategies: player %s, enemy %s\n", r.PlayerStrategy, r.EnemyStrategy)
	fmt.Fprintf(&b, "Player wins: %d (%.1f%%)\n", r.Outcomes[game.PlayerWin.String()], r.PlayerWinRate()*100)
	fmt.Fprintf(&b, "Enemy wins:  %d\n", r.Outcomes[game.EnemyWin.String()])
	fmt.Fprintf(&b, "Draws:       %d\n", r.Outcomes[game.Draw.String()])
	fmt.Fprintf(&b, "Reshuffles:  %d\n", r.Reshuffles)
	fmt.Fprintf(&b, "\n%-16s %8s %8s\n", "Rank", "Player", "Enemy")
	for i := len(evaluator.HandRanks) - 1; i >= 0; i-- {
		name := evaluator.HandRanks[i].String()
		fmt.Fprintf(&b, "%-16s %8d %8d\n", name, r.PlayerRanks[name], r.EnemyRanks[name])
	}
	return b.String()
}

// WriteJSON saves the report to path
func (r *Report) WriteJSON(path string) error {
	return fileutil.WriteJSONAtomic(path, r, 0o644)
}
