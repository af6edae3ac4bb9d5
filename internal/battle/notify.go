package battle

import (
	"fmt"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/roster"
)

// Kind classifies a notification for styling.
type Kind int

// Notification kinds.
const (
	KindInfo Kind = iota
	KindSuccess
	KindFailure
	KindWarning
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindWarning:
		return "warning"
	default:
		return "info"
	}
}

// Notification is a user-facing message.
type Notification struct {
	Kind    Kind
	Title   string
	Message string
}

func (n Notification) String() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + " " + n.Message
}

func outcomeNotification(out model.Outcome) Notification {
	name := roster.Name(out.Creature)
	if out.Caught {
		return Notification{
			Kind:    KindSuccess,
			Title:   fmt.Sprintf("Gotcha! %s was caught!", name),
			Message: fmt.Sprintf("Your %d-minute focus session succeeded (%.1f%% chance).", out.DurationMinutes, out.ChancePercent),
		}
	}
	return Notification{
		Kind:    KindFailure,
		Title:   fmt.Sprintf("Oh no! %s broke free!", name),
		Message: fmt.Sprintf("Your %d-minute focus session did not land the catch (%.1f%% chance). It is still nearby.", out.DurationMinutes, out.ChancePercent),
	}
}

func appearedNotification(id model.CreatureID) Notification {
	return Notification{
		Kind:    KindInfo,
		Title:   "A new wild Pokemon appeared!",
		Message: fmt.Sprintf("Wild %s wants to battle.", roster.Name(id)),
	}
}

func rerollNotification(id model.CreatureID, left int) Notification {
	n := appearedNotification(id)
	n.Message = fmt.Sprintf("Wild %s wants to battle. %d re-rolls left today.", roster.Name(id), left)
	return n
}

func rateLimitedNotification() Notification {
	return Notification{
		Kind:    KindWarning,
		Title:   "No re-rolls left today.",
		Message: fmt.Sprintf("You can find %d new Pokemon per day. Come back tomorrow.", DailyRerolls),
	}
}

func busyNotification() Notification {
	return Notification{
		Kind:    KindWarning,
		Title:   "Finish the battle first.",
		Message: "Re-rolling is not possible while a session is running.",
	}
}

func resetNotification() Notification {
	return Notification{Kind: KindInfo, Title: "Timer reset!"}
}
