package memory

import (
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/team"
)

// Seed loads a small fixture dataset for local development without a
// database: two teams per game and a handful of linked players.
func Seed(store *Store) {
	teams := []team.Team{
		{ID: 1, GameID: 1, Name: "Meridian Esports", Tag: "MER"},
		{ID: 2, GameID: 1, Name: "Northlight", Tag: "NL"},
		{ID: 3, GameID: 2, Name: "Vanta Five", Tag: "VF"},
		{ID: 4, GameID: 2, Name: "Harbor Gaming", Tag: "HBR"},
	}
	for _, t := range teams {
		store.AddTeam(t)
	}

	players := []player.Player{
		{ID: 1, Nickname: "quietstorm", RealName: "Jonas Ek", RiotPUUID: "seed-puuid-1"},
		{ID: 2, Nickname: "drax", RealName: "Mika Laine", RiotPUUID: "seed-puuid-2"},
		{ID: 3, Nickname: "helix", RealName: "Ana Duarte", FaceitID: "seed-faceit-1"},
		{ID: 4, Nickname: "warden", RealName: "Tom Beck", FaceitID: "seed-faceit-2"},
	}
	for _, p := range players {
		store.AddPlayer(p)
	}
}
