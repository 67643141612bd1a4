package domain

// Actor is the user on whose behalf an operation runs.
type Actor struct {
	GuildID     string
	UserID      string
	DisplayName string
	IsAdmin     bool
}
