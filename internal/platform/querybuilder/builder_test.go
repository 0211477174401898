package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestSelect_WhereOrderLimit(t *testing.T) {
	t.Parallel()

	until := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := Select("id", "player_id", "team_id").
		From("transfers").
		Where(
			Eq("game_id", int64(7)),
			Lte("effective_at", until),
		).
		OrderBy("effective_at", "id").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "SELECT id, player_id, team_id FROM transfers WHERE game_id = $1 AND effective_at <= $2 ORDER BY effective_at, id LIMIT 50"
	if query != want {
		t.Fatalf("query mismatch:\n got=%s\nwant=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), until}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestSelect_InWithEmptyValuesNeverMatches(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").From("matches").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	if query != "SELECT id FROM matches WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsert_MultiRowWithSuffix(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("player_stat_rows").
		Columns("match_id", "kills").
		Values(int64(1), 20).
		Values(int64(1), 15).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	want := "INSERT INTO player_stat_rows (match_id, kills) VALUES ($1, $2), ($3, $4) RETURNING id"
	if query != want {
		t.Fatalf("query mismatch:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("args length: got=%d want=4", len(args))
	}
}

func TestInsertModel_UsesDBTags(t *testing.T) {
	t.Parallel()

	type row struct {
		PlayerID int64  `db:"player_id"`
		TeamID   int64  `db:"team_id"`
		Ignored  string `db:"-"`
		NoTag    string
	}

	query, args, err := InsertModel("transfers", row{PlayerID: 4, TeamID: 9}, "")
	if err != nil {
		t.Fatalf("InsertModel: %v", err)
	}
	if query != "INSERT INTO transfers (player_id, team_id) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if !reflect.DeepEqual(args, []any{int64(4), int64(9)}) {
		t.Fatalf("unexpected args: %v", args)
	}
}
