// Package ledger persists cumulative scores across matches and answers
// ranking queries. The score file is a JSON object keyed by player identity;
// an older space-separated format is converted on first read.
package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/unobot/internal/fileutil"
	"github.com/lox/unobot/internal/game"
)

// ErrNotRanked means the player has never finished a match.
var ErrNotRanked = errors.New("player has no rank yet")

// topSize is how many standings a Top query reports by default.
const topSize = 5

// Record is one player's lifetime totals.
type Record struct {
	Games    int   `json:"games"`
	Wins     int   `json:"wins"`
	Points   int   `json:"points"`
	Playtime int64 `json:"playtime"` // seconds
}

// Standing is a record placed in the points ordering, with the player it
// belongs to and their 1-based rank.
type Standing struct {
	Player game.Identity
	Rank   int
	Record
}

// PointsPerSecond is the player's scoring rate over time spent in matches.
func (s Standing) PointsPerSecond() float64 {
	if s.Playtime == 0 {
		return 0
	}
	return float64(s.Points) / float64(s.Playtime)
}

// PointsPerGame is the average score across every match played.
func (s Standing) PointsPerGame() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Points) / float64(s.Games)
}

// PointsPerWin is the average score across matches won.
func (s Standing) PointsPerWin() float64 {
	if s.Wins == 0 {
		return 0
	}
	return float64(s.Points) / float64(s.Wins)
}

// Ledger reads and rewrites the score file. All access is serialised under
// its own lock; sessions never wait on it mid-turn.
type Ledger struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

// New creates a ledger over the score file at path. The file need not exist
// yet; the first recorded result creates it.
func New(path string, logger *log.Logger) *Ledger {
	return &Ledger{
		path:   path,
		logger: logger.WithPrefix("ledger").With("path", path),
	}
}

// RecordResult folds a finished match into the totals and rewrites the
// score file atomically. Every participant is charged a game and the
// elapsed playtime; the winner additionally gets the win and the points.
func (l *Ledger) RecordResult(result game.MatchResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	scores, err := l.load()
	if err != nil {
		return err
	}

	elapsed := int64(result.Elapsed.Seconds())
	for _, p := range result.Participants {
		rec := scores[p]
		rec.Games++
		rec.Playtime += elapsed
		scores[p] = rec
	}
	rec := scores[result.Winner]
	rec.Wins++
	rec.Points += result.Points
	scores[result.Winner] = rec

	if err := l.save(scores); err != nil {
		return err
	}
	l.logger.Info("recorded result", "winner", result.Winner, "points", result.Points)
	return nil
}

// Top returns up to n standings ordered by points, best first. Players with
// no points are left out. n <= 0 uses the default list size.
func (l *Ledger) Top(n int) ([]Standing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 {
		n = topSize
	}
	standings, err := l.standings()
	if err != nil {
		return nil, err
	}
	out := make([]Standing, 0, n)
	for _, s := range standings {
		if len(out) == n || s.Points == 0 {
			break
		}
		out = append(out, s)
	}
	return out, nil
}

// Rank returns the standing of one player, or ErrNotRanked if they have
// never finished a match.
func (l *Ledger) Rank(player game.Identity) (Standing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	standings, err := l.standings()
	if err != nil {
		return Standing{}, err
	}
	for _, s := range standings {
		if s.Player == player {
			return s, nil
		}
	}
	return Standing{}, ErrNotRanked
}

// standings loads the file and orders every record by points descending,
// ties broken by name so ranks are stable. Caller holds the lock.
func (l *Ledger) standings() ([]Standing, error) {
	scores, err := l.load()
	if err != nil {
		return nil, err
	}
	standings := make([]Standing, 0, len(scores))
	for player, rec := range scores {
		standings = append(standings, Standing{Player: player, Record: rec})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].Player < standings[j].Player
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

func (l *Ledger) load() (map[game.Identity]Record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[game.Identity]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading score file: %w", err)
	}

	scores := map[game.Identity]Record{}
	if len(data) == 0 {
		return scores, nil
	}
	if err := json.Unmarshal(data, &scores); err != nil {
		converted, convErr := convertLegacy(data)
		if convErr != nil {
			return nil, fmt.Errorf("parsing score file: %w", err)
		}
		l.logger.Info("converted legacy score file", "players", len(converted))
		if err := l.save(converted); err != nil {
			return nil, err
		}
		return converted, nil
	}
	return scores, nil
}

func (l *Ledger) save(scores map[game.Identity]Record) error {
	data, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("encoding score file: %w", err)
	}
	if err := fileutil.WriteFileAtomic(l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing score file: %w", err)
	}
	return nil
}

// convertLegacy parses the old line format: "nick games wins points" with
// an optional trailing playtime. Short lines are skipped.
func convertLegacy(data []byte) (map[game.Identity]Record, error) {
	scores := map[game.Identity]Record{}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		tokens := strings.Split(strings.TrimRight(scanner.Text(), "\n"), " ")
		if len(tokens) < 4 {
			continue
		}
		if len(tokens) == 4 {
			tokens = append(tokens, "0")
		}
		games, err := strconv.Atoi(tokens[1])
		if err != nil {
			return nil, fmt.Errorf("legacy score line %q: %w", scanner.Text(), err)
		}
		wins, err := strconv.Atoi(tokens[2])
		if err != nil {
			return nil, fmt.Errorf("legacy score line %q: %w", scanner.Text(), err)
		}
		points, err := strconv.Atoi(tokens[3])
		if err != nil {
			return nil, fmt.Errorf("legacy score line %q: %w", scanner.Text(), err)
		}
		playtime, err := strconv.ParseInt(tokens[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("legacy score line %q: %w", scanner.Text(), err)
		}
		scores[game.Normalize(tokens[0])] = Record{
			Games:    games,
			Wins:     wins,
			Points:   points,
			Playtime: playtime,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, errors.New("no legacy score lines found")
	}
	return scores, nil
}
