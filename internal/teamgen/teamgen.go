package teamgen

import (
	"errors"
	"math/rand"
	"time"
)

// Format determines how many teams are formed and how large each one is.
type Format string

const (
	FormatPickle        Format = "pickle"
	FormatRoundRobin    Format = "round-robin"
	FormatQuickKnockout Format = "quick-knockout"
	FormatOneVsOne      Format = "one-vs-one"
	FormatTwoVsTwo      Format = "two-vs-two"
)

// IsValid reports whether f is one of the supported game formats.
func (f Format) IsValid() bool {
	switch f {
	case FormatPickle, FormatRoundRobin, FormatQuickKnockout, FormatOneVsOne, FormatTwoVsTwo:
		return true
	}
	return false
}

var (
	ErrInsufficientPlayers = errors.New("not enough players to form teams")
	ErrInvalidPlayerCount  = errors.New("invalid player count for the selected format")
)

// Player is one roster entry as supplied by the room.
type Player struct {
	ID               string `json:"user_id,omitempty"`
	Name             string `json:"name"`
	Mobile           string `json:"mobile,omitempty"`
	IndividualPoints int    `json:"individual_points"`
	AvatarURL        string `json:"avatar_url,omitempty"`
}

// Slot is one player's participation record inside a single team. A player
// who covers two teams on an odd roster gets two slots, one per team, both
// marked PlaysTwice.
type Slot struct {
	PlayerID   string `json:"user_id,omitempty"`
	Name       string `json:"name"`
	Mobile     string `json:"mobile,omitempty"`
	Points     int    `json:"points"`
	Avatar     string `json:"avatar,omitempty"`
	PlaysTwice bool   `json:"plays_twice"`
}

// Team is one generated side, lettered in generation order.
type Team struct {
	Letter      string `json:"letter"`
	Color       string `json:"color"`
	Players     []Slot `json:"players"`
	TotalPoints int    `json:"total_points"`
}

// Display palette, rotated by team index.
var teamColors = []string{
	"#F94144", "#F3722C", "#F8961E", "#90BE6D", "#43AA8B", "#577590",
}

// Shuffle generates teams with a time-seeded randomness source. Each call
// reshuffles independently, so repeated calls on the same roster produce
// different allocations.
func Shuffle(players []Player, format Format) ([]Team, error) {
	return Generate(players, format, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Generate partitions players into teams for the given format using rng for
// every random choice. It returns ErrInsufficientPlayers for rosters smaller
// than two and ErrInvalidPlayerCount when a fixed-size format gets the wrong
// roster size. On error no teams are returned.
//
// Flexible formats with an odd roster produce one extra team pairing the
// leftover player with a randomly chosen already-assigned player; that
// player's slots in both teams are marked PlaysTwice, and their points count
// toward both teams' totals.
func Generate(players []Player, format Format, rng *rand.Rand) ([]Team, error) {
	if len(players) < 2 {
		return nil, ErrInsufficientPlayers
	}

	perTeam := 2
	switch format {
	case FormatOneVsOne:
		if len(players) != 2 {
			return nil, ErrInvalidPlayerCount
		}
		perTeam = 1
	case FormatTwoVsTwo:
		if len(players) != 4 {
			return nil, ErrInvalidPlayerCount
		}
	}

	shuffled := make([]Player, len(players))
	copy(shuffled, players)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assigned := len(shuffled) / perTeam * perTeam
	teams := make([]Team, 0, assigned/perTeam+1)
	for i := 0; i < assigned; i += perTeam {
		team := Team{
			Letter: letterFor(len(teams)),
			Color:  teamColors[len(teams)%len(teamColors)],
		}
		for _, p := range shuffled[i : i+perTeam] {
			team.Players = append(team.Players, slotFor(p))
		}
		teams = append(teams, team)
	}

	if assigned < len(shuffled) {
		// Odd roster: the last shuffled player is still unassigned. Pair
		// them with a random player from the assigned pool, who then plays
		// twice.
		leftover := shuffled[assigned]
		pick := rng.Intn(assigned)
		teams[pick/perTeam].Players[pick%perTeam].PlaysTwice = true

		dup := slotFor(shuffled[pick])
		dup.PlaysTwice = true
		extra := Team{
			Letter:  letterFor(len(teams)),
			Color:   teamColors[len(teams)%len(teamColors)],
			Players: []Slot{slotFor(leftover), dup},
		}
		teams = append(teams, extra)
	}

	for i := range teams {
		total := 0
		for _, s := range teams[i].Players {
			total += s.Points
		}
		teams[i].TotalPoints = total
	}

	return teams, nil
}

func slotFor(p Player) Slot {
	return Slot{
		PlayerID: p.ID,
		Name:     p.Name,
		Mobile:   p.Mobile,
		Points:   p.IndividualPoints,
		Avatar:   p.AvatarURL,
	}
}

// letterFor maps a zero-based team index to A, B, ... Z, AA, AB, ...
func letterFor(i int) string {
	letter := ""
	for i >= 0 {
		letter = string(rune('A'+i%26)) + letter
		i = i/26 - 1
	}
	return letter
}
