package schedule

import (
	"errors"
	"sort"

	"github.com/rohan/courtside/internal/teamgen"
)

// Match is one scheduled pairing between two generated teams, identified by
// their letters. Bye matches keep their round and match numbers but have no
// opposing team and are filtered out of display.
type Match struct {
	RoundNumber int    `json:"round_number"`
	MatchNumber int    `json:"match_number"`
	TeamA       string `json:"team_a"`
	TeamB       string `json:"team_b,omitempty"`
	Bye         bool   `json:"bye"`
}

// Result is a completed match as recorded by the scorekeeper.
type Result struct {
	TeamA       string `json:"team_a"`
	TeamB       string `json:"team_b"`
	ScoreA      int    `json:"score_a"`
	ScoreB      int    `json:"score_b"`
	RoundNumber int    `json:"round_number"`
	MatchNumber int    `json:"match_number"`
	Winner      string `json:"winner"`
}

// Standing is one team's aggregated line on the results screen.
type Standing struct {
	Letter        string `json:"letter"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
}

var ErrNotEnoughTeams = errors.New("at least two teams are required to build a schedule")

// Build produces the match schedule for a generated team set. Fixed formats
// play a single match; pickle and round-robin play a full round robin; quick
// knockout pairs teams for an opening elimination round. Odd team counts
// introduce bye matches.
func Build(teams []teamgen.Team, format teamgen.Format) ([]Match, error) {
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	letters := make([]string, len(teams))
	for i, t := range teams {
		letters[i] = t.Letter
	}

	switch format {
	case teamgen.FormatOneVsOne, teamgen.FormatTwoVsTwo:
		return []Match{{RoundNumber: 1, MatchNumber: 1, TeamA: letters[0], TeamB: letters[1]}}, nil
	case teamgen.FormatQuickKnockout:
		return knockoutRound(letters), nil
	default:
		return roundRobin(letters), nil
	}
}

// roundRobin schedules every pairing once using the circle method: one team
// stays fixed while the rest rotate each round. An odd team count adds a
// placeholder opponent whose pairings become byes.
func roundRobin(letters []string) []Match {
	rotation := make([]string, len(letters))
	copy(rotation, letters)
	if len(rotation)%2 == 1 {
		rotation = append(rotation, "")
	}

	n := len(rotation)
	rounds := n - 1
	matchNumber := 0
	var matches []Match
	for round := 1; round <= rounds; round++ {
		for i := 0; i < n/2; i++ {
			a, b := rotation[i], rotation[n-1-i]
			matchNumber++
			m := Match{RoundNumber: round, MatchNumber: matchNumber, TeamA: a, TeamB: b}
			if a == "" || b == "" {
				m.TeamA = a + b
				m.TeamB = ""
				m.Bye = true
			}
			matches = append(matches, m)
		}
		// Rotate all but the first position.
		last := rotation[n-1]
		for i := n - 1; i > 1; i-- {
			rotation[i] = rotation[i-1]
		}
		rotation[1] = last
	}
	return matches
}

// knockoutRound pairs teams in generation order for a first elimination
// round; a leftover team on an odd count advances on a bye.
func knockoutRound(letters []string) []Match {
	var matches []Match
	matchNumber := 0
	for i := 0; i+1 < len(letters); i += 2 {
		matchNumber++
		matches = append(matches, Match{
			RoundNumber: 1,
			MatchNumber: matchNumber,
			TeamA:       letters[i],
			TeamB:       letters[i+1],
		})
	}
	if len(letters)%2 == 1 {
		matchNumber++
		matches = append(matches, Match{
			RoundNumber: 1,
			MatchNumber: matchNumber,
			TeamA:       letters[len(letters)-1],
			Bye:         true,
		})
	}
	return matches
}

// Standings aggregates completed results into a per-team table ordered by
// wins, then points scored, then letter.
func Standings(results []Result) []Standing {
	byLetter := make(map[string]*Standing)
	line := func(letter string) *Standing {
		if s, ok := byLetter[letter]; ok {
			return s
		}
		s := &Standing{Letter: letter}
		byLetter[letter] = s
		return s
	}

	for _, r := range results {
		a, b := line(r.TeamA), line(r.TeamB)
		a.PointsFor += r.ScoreA
		a.PointsAgainst += r.ScoreB
		b.PointsFor += r.ScoreB
		b.PointsAgainst += r.ScoreA
		switch r.Winner {
		case r.TeamA:
			a.Wins++
			b.Losses++
		case r.TeamB:
			b.Wins++
			a.Losses++
		}
	}

	standings := make([]Standing, 0, len(byLetter))
	for _, s := range byLetter {
		standings = append(standings, *s)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		if standings[i].PointsFor != standings[j].PointsFor {
			return standings[i].PointsFor > standings[j].PointsFor
		}
		return standings[i].Letter < standings[j].Letter
	})
	return standings
}
