package entity

import "fmt"

const BotParticipantID = "bot"

// Participant is one side of a session. ID is the opaque connection identity and stays server-side.
type Participant struct {
	ID          string `json:"-"`
	DisplayName string `json:"displayName"`
	Bot         bool   `json:"bot,omitempty"`
}

func NewBotParticipant(tier Tier) Participant {
	return Participant{
		ID:          BotParticipantID,
		DisplayName: fmt.Sprintf("AI (%s)", tier),
		Bot:         true,
	}
}

func (that Participant) IsBot() bool {
	return that.Bot
}
