package models

// DueCount pairs a user with the number of items awaiting review. Produced
// by the reminder scan query.
type DueCount struct {
	UserID string `db:"user_id" json:"userId"`
	Due    int    `db:"due" json:"due"`
}

// SourceUsage aggregates award-journal rows sharing a source tag, e.g. XP
// earned per chat partner.
type SourceUsage struct {
	Source   string `db:"source" json:"source"`
	Awards   int    `db:"awards" json:"awards"`
	XPEarned int64  `db:"xp_earned" json:"xpEarned"`
}
