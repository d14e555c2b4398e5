package testsupport

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/nickblackbourn/nfl-process-mining/internal/pbp"
)

// Play describes one synthetic play-by-play row. Zero values render as the
// feed renders absent data: Down 0 becomes an empty cell, empty strings stay
// empty, and booleans become the 0/1 flags nflverse uses.
type Play struct {
	GameID           string
	GameDate         string
	Posteam          string
	Defteam          string
	Drive            int
	Qtr              int
	Down             int
	YardsToGo        int
	YardsGained      int
	PlayType         string
	SecondsRemaining int
	Touchdown        bool
	Interception     bool
	FumbleLost       bool
	FieldGoalResult  string
}

// feedColumns is the header of the synthetic feed: the contract columns plus
// a couple of extras, since real feeds carry hundreds of columns the
// transformation never touches.
func feedColumns() []string {
	return append([]string{"play_id"}, append(pbp.RequiredColumns(), "epa")...)
}

func feedRows(plays []Play) [][]string {
	rows := make([][]string, 0, len(plays))
	for i, p := range plays {
		down := ""
		if p.Down > 0 {
			down = strconv.Itoa(p.Down)
		}
		epa := "NA"
		if i%2 == 0 {
			epa = "0.5"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.GameID,
			p.GameDate,
			p.Posteam,
			p.Defteam,
			strconv.Itoa(p.Drive),
			strconv.Itoa(p.Qtr),
			down,
			strconv.Itoa(p.YardsToGo),
			strconv.Itoa(p.YardsGained),
			p.PlayType,
			strconv.Itoa(p.SecondsRemaining),
			flag(p.Touchdown),
			flag(p.Interception),
			flag(p.FumbleLost),
			p.FieldGoalResult,
			epa,
		})
	}
	return rows
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Feed builds a parsed play-by-play table from synthetic plays.
func Feed(plays ...Play) *pbp.Table {
	return &pbp.Table{Columns: feedColumns(), Rows: feedRows(plays)}
}

// FeedCSV renders synthetic plays as the CSV payload a feed server would
// deliver.
func FeedCSV(t testing.TB, plays ...Play) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(feedColumns()); err != nil {
		t.Fatalf("write feed header: %v", err)
	}
	for _, row := range feedRows(plays) {
		if err := w.Write(row); err != nil {
			t.Fatalf("write feed row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush feed: %v", err)
	}
	return buf.Bytes()
}

// SampleGame returns one synthetic game: three New England drives of four
// plays each, with two New York Jets plays in between that scoping must
// drop. Drive numbers are odd because the opponent owns the even ones.
func SampleGame() []Play {
	const (
		game = "2007_01_NE_NYJ"
		date = "2007-09-09"
	)
	ne := func(drive, qtr, down, toGo, gained int, playType string, secs int) Play {
		return Play{
			GameID: game, GameDate: date, Posteam: "NE", Defteam: "NYJ",
			Drive: drive, Qtr: qtr, Down: down, YardsToGo: toGo,
			YardsGained: gained, PlayType: playType, SecondsRemaining: secs,
		}
	}
	nyj := func(drive, qtr, down, toGo, gained int, playType string, secs int) Play {
		return Play{
			GameID: game, GameDate: date, Posteam: "NYJ", Defteam: "NE",
			Drive: drive, Qtr: qtr, Down: down, YardsToGo: toGo,
			YardsGained: gained, PlayType: playType, SecondsRemaining: secs,
		}
	}

	td := ne(1, 1, 1, 10, 5, "pass", 3420)
	td.Touchdown = true
	picked := ne(5, 2, 1, 10, 0, "pass", 1650)
	picked.Interception = true

	return []Play{
		ne(1, 1, 1, 10, 7, "pass", 3540),
		ne(1, 1, 2, 3, 12, "run", 3500),
		ne(1, 1, 1, 10, 25, "pass", 3460),
		td,
		nyj(2, 1, 1, 10, 3, "run", 3350),
		nyj(2, 1, 2, 7, 9, "pass", 3310),
		ne(3, 1, 1, 10, 4, "run", 3200),
		ne(3, 1, 2, 6, 0, "pass", 3160),
		ne(3, 1, 3, 6, 5, "pass", 3120),
		ne(3, 1, 4, 1, 0, "punt", 3080),
		ne(5, 2, 1, 10, 3, "run", 1800),
		ne(5, 2, 2, 7, 18, "pass", 1750),
		ne(5, 2, 3, 10, 11, "run", 1700),
		picked,
	}
}
