package models

// Category describes one statistics page of the competition and the ids of
// the tables it carries. Table ids are prefixes: the site appends variable
// suffixes to them.
type Category struct {
	Key                string `json:"key"`
	URLSegment         string `json:"url_segment"`
	PlayerTableID      string `json:"player_table_id"`
	TeamForTableID     string `json:"team_for_table_id"`
	TeamAgainstTableID string `json:"team_against_table_id"`
	DisplayName        string `json:"display_name"`
}

// TableID returns the id prefix of the table holding the given role.
func (c Category) TableID(role Role) string {
	switch role {
	case RolePlayers:
		return c.PlayerTableID
	case RoleTeamsFor:
		return c.TeamForTableID
	case RoleTeamsAgainst:
		return c.TeamAgainstTableID
	default:
		return ""
	}
}
