// Package dm produces the next narrative turn for a player message, either
// from the scripted generator or from the OpenAI API with silent fallback.
package dm

import (
	"context"
)

// Character is the subset of a character sheet the narrators care about.
type Character struct {
	Name  string `json:"name"`
	Race  string `json:"race"`
	Class string `json:"class"`
	Level int    `json:"level"`
}

// Turn is one prior exchange in the conversation. Role is "player" or "dm";
// anything else is ignored when mapping history.
type Turn struct {
	Role    string `json:"type"`
	Content string `json:"content"`
}

// Request carries everything a narrator may use to produce a reply.
type Request struct {
	Message   string
	Character *Character
	History   []Turn
}

// Narrator produces a DM reply for a player action.
type Narrator interface {
	Reply(ctx context.Context, req Request) (string, error)
}
