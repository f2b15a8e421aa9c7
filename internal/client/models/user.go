package models

// User is the identity record returned by the who-am-I endpoint. The client
// treats it as opaque beyond the fields it displays.
type User struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	DiscordID string `json:"discordId,omitempty"`
}
