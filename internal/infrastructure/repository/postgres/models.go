package postgres

import (
	"database/sql"
	"time"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/series"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/domain/transfer"
)

type matchRow struct {
	ID           int64          `db:"id"`
	SeriesID     sql.NullInt64  `db:"series_id"`
	Source       string         `db:"source"`
	ExternalID   sql.NullString `db:"external_id"`
	MapName      string         `db:"map_name"`
	PlayedAt     time.Time      `db:"played_at"`
	Completed    bool           `db:"completed"`
	WinnerTeamID sql.NullInt64  `db:"winner_team_id"`
}

func (r matchRow) toDomain() match.Match {
	return match.Match{
		ID:         r.ID,
		SeriesID:   r.SeriesID.Int64,
		Source:     match.Source(r.Source),
		ExternalID: r.ExternalID.String,
		MapName:    r.MapName,
		PlayedAt:   r.PlayedAt.UTC(),
		Completed:  r.Completed,
		WinnerTeam: r.WinnerTeamID.Int64,
	}
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt64(value int64) sql.NullInt64 {
	return sql.NullInt64{Int64: value, Valid: value > 0}
}

type statRow struct {
	ID           int64          `db:"id"`
	MatchID      int64          `db:"match_id"`
	PlayerID     sql.NullInt64  `db:"player_id"`
	TeamID       sql.NullInt64  `db:"team_id"`
	ExternalID   sql.NullString `db:"external_id"`
	ExternalName string         `db:"external_name"`
	Side         string         `db:"side"`
	Kills        int            `db:"kills"`
	Deaths       int            `db:"deaths"`
	Assists      int            `db:"assists"`
	Damage       int            `db:"damage"`
	Rounds       int            `db:"rounds"`
	Won          bool           `db:"won"`
}

func (r statRow) toDomain() playerstat.Row {
	return playerstat.Row{
		ID:           r.ID,
		MatchID:      r.MatchID,
		PlayerID:     r.PlayerID.Int64,
		TeamID:       r.TeamID.Int64,
		ExternalID:   r.ExternalID.String,
		ExternalName: r.ExternalName,
		Side:         r.Side,
		Kills:        r.Kills,
		Deaths:       r.Deaths,
		Assists:      r.Assists,
		Damage:       r.Damage,
		Rounds:       r.Rounds,
		Won:          r.Won,
	}
}

type matchLineRow struct {
	MatchID  int64     `db:"match_id"`
	MapName  string    `db:"map_name"`
	PlayedAt time.Time `db:"played_at"`
	Won      bool      `db:"won"`
	Kills    int       `db:"kills"`
	Deaths   int       `db:"deaths"`
	Assists  int       `db:"assists"`
	Damage   int       `db:"damage"`
	Rounds   int       `db:"rounds"`
}

func (r matchLineRow) toDomain() playerstat.MatchLine {
	return playerstat.MatchLine{
		MatchID:  r.MatchID,
		MapName:  r.MapName,
		PlayedAt: r.PlayedAt.UTC(),
		Won:      r.Won,
		Kills:    r.Kills,
		Deaths:   r.Deaths,
		Assists:  r.Assists,
		Damage:   r.Damage,
		Rounds:   r.Rounds,
	}
}

type seriesRow struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	TeamAID      int64     `db:"team_a_id"`
	TeamBID      int64     `db:"team_b_id"`
	BestOf       int       `db:"best_of"`
	StartedAt    time.Time `db:"started_at"`
}

func (r seriesRow) toDomain() series.Series {
	return series.Series{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		TeamAID:      r.TeamAID,
		TeamBID:      r.TeamBID,
		BestOf:       r.BestOf,
		StartedAt:    r.StartedAt.UTC(),
	}
}

type transferRow struct {
	ID          int64     `db:"id"`
	PlayerID    int64     `db:"player_id"`
	TeamID      int64     `db:"team_id"`
	PositionID  int64     `db:"position_id"`
	GameID      int64     `db:"game_id"`
	EffectiveAt time.Time `db:"effective_at"`
	RecordedAt  time.Time `db:"recorded_at"`
}

func (r transferRow) toDomain() transfer.Transfer {
	return transfer.Transfer{
		ID:          r.ID,
		PlayerID:    r.PlayerID,
		TeamID:      r.TeamID,
		PositionID:  r.PositionID,
		GameID:      r.GameID,
		EffectiveAt: r.EffectiveAt.UTC(),
		RecordedAt:  r.RecordedAt.UTC(),
	}
}

type teamRow struct {
	ID     int64  `db:"id"`
	GameID int64  `db:"game_id"`
	Name   string `db:"name"`
	Tag    string `db:"tag"`
}

func (r teamRow) toDomain() team.Team {
	return team.Team{ID: r.ID, GameID: r.GameID, Name: r.Name, Tag: r.Tag}
}

type playerRow struct {
	ID        int64          `db:"id"`
	Nickname  string         `db:"nickname"`
	RealName  sql.NullString `db:"real_name"`
	RiotPUUID sql.NullString `db:"riot_puuid"`
	FaceitID  sql.NullString `db:"faceit_id"`
}

func (r playerRow) toDomain() player.Player {
	return player.Player{
		ID:        r.ID,
		Nickname:  r.Nickname,
		RealName:  r.RealName.String,
		RiotPUUID: r.RiotPUUID.String,
		FaceitID:  r.FaceitID.String,
	}
}
