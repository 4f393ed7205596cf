package dm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
)

// Scripted is the canned-response narrator. It classifies the player
// message by keyword and fills a template with the character's details. It
// never fails, which makes it the relay's fallback of last resort.
type Scripted struct{}

func NewScripted() *Scripted {
	return &Scripted{}
}

var castingClasses = map[string]bool{
	"wizard":   true,
	"sorcerer": true,
	"warlock":  true,
	"cleric":   true,
	"druid":    true,
	"bard":     true,
	"paladin":  true,
	"ranger":   true,
}

func (s *Scripted) Reply(ctx context.Context, req Request) (string, error) {
	ch := Character{Name: "Hero", Race: "adventurer", Class: "hero"}
	if req.Character != nil {
		if req.Character.Name != "" {
			ch.Name = req.Character.Name
		}
		if req.Character.Race != "" {
			ch.Race = req.Character.Race
		}
		if req.Character.Class != "" {
			ch.Class = req.Character.Class
		}
	}

	msg := strings.ToLower(req.Message)
	switch {
	case containsAny(msg, "attack", "fight", "strike"):
		return s.combat(ch), nil
	case containsAny(msg, "look", "examine", "inspect"):
		return s.perception(ch), nil
	case containsAny(msg, "search", "investigate"):
		return s.investigation(ch), nil
	case containsAny(msg, "cast", "spell", "magic"):
		return s.spellcasting(ch), nil
	default:
		return s.generic(ch, req.Message), nil
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (s *Scripted) combat(ch Character) string {
	variants := []string{
		"%s leaps into battle! The %s %s's weapon flashes in the torchlight. Roll a d20 for your attack!",
		"Steel rings against steel as %s presses the assault. Your training as a %s %s guides your strike. Roll a d20 for your attack!",
		"With a battle cry, %s charges forward! The %s %s meets the enemy head-on. Roll a d20 for your attack!",
	}
	return fmt.Sprintf(pick(variants), ch.Name, ch.Race, ch.Class)
}

func (s *Scripted) perception(ch Character) string {
	variants := []string{
		"%s takes a careful look around. You notice details others would miss: worn stones, faded markings, the faint smell of old smoke. The %s %s's instincts are sharp.",
		"As %s studies the surroundings, you notice something glinting in the shadows. Perhaps the %s %s should take a closer look.",
	}
	return fmt.Sprintf(pick(variants), ch.Name, ch.Race, ch.Class)
}

func (s *Scripted) investigation(ch Character) string {
	variants := []string{
		"%s begins a thorough investigation. The %s %s's search may uncover hidden passages, concealed traps, or forgotten treasure. Roll an Investigation check!",
		"Methodically, %s sifts through the area. There are clues here for a %s %s patient enough to uncover them. Roll an Investigation check!",
	}
	return fmt.Sprintf(pick(variants), ch.Name, ch.Race, ch.Class)
}

func (s *Scripted) spellcasting(ch Character) string {
	if !castingClasses[strings.ToLower(ch.Class)] {
		return fmt.Sprintf("%s gestures dramatically, but as a %s no magic answers the call. Perhaps steel will serve where sorcery cannot.", ch.Name, ch.Class)
	}
	variants := []string{
		"Arcane energy crackles around %s's fingertips! The %s %s shapes raw magic into form. Describe your spell and roll for it!",
		"%s speaks words of power, and the air hums with arcane force. The %s %s's magic takes hold. Describe your spell and roll for it!",
	}
	return fmt.Sprintf(pick(variants), ch.Name, ch.Race, ch.Class)
}

func (s *Scripted) generic(ch Character, action string) string {
	variants := []string{
		"As you %[2]s, the ancient stone walls seem to whisper secrets of ages past. %[1]s, what do you do next?",
		"The DM considers your approach. %[1]s, your instincts guide you as you %[2]s. What do you do next?",
		"Interesting choice! The environment shifts around %[1]s, and something catches your attention in the distance. What do you do next?",
	}
	return fmt.Sprintf(pick(variants), ch.Name, strings.TrimSpace(strings.ToLower(action)))
}

func pick(variants []string) string {
	return variants[rand.Intn(len(variants))]
}
