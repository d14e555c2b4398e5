package pbp

// Canonical nflverse column names involved in event derivation. The feed
// carries hundreds of columns; these are the ones the built-in ruleset and
// the output contract depend on.
const (
	ColGameID               = "game_id"
	ColGameDate             = "game_date"
	ColPosteam              = "posteam"
	ColDefteam              = "defteam"
	ColDrive                = "drive"
	ColQtr                  = "qtr"
	ColDown                 = "down"
	ColYardsToGo            = "ydstogo"
	ColYardsGained          = "yards_gained"
	ColPlayType             = "play_type"
	ColGameSecondsRemaining = "game_seconds_remaining"
	ColTouchdown            = "touchdown"
	ColInterception         = "interception"
	ColFumbleLost           = "fumble_lost"
	ColFieldGoalResult      = "field_goal_result"
)

// RequiredColumns lists the feed columns the transformation contract needs.
// Acquisition succeeds with any superset; a feed missing one of these fails
// before any rule runs.
func RequiredColumns() []string {
	return []string{
		ColGameID,
		ColGameDate,
		ColPosteam,
		ColDefteam,
		ColDrive,
		ColQtr,
		ColDown,
		ColYardsToGo,
		ColYardsGained,
		ColPlayType,
		ColGameSecondsRemaining,
		ColTouchdown,
		ColInterception,
		ColFumbleLost,
		ColFieldGoalResult,
	}
}
