package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/ytparty/internal/models"
)

// Card renders the profile card for s.
func (p *Palette) Card(s *models.Session) string {
	if s == nil {
		return p.Warn("Not logged in") + "\n" + p.Help("Run `ytparty login <id>` to start a session")
	}

	rows := []string{
		p.Title(fmt.Sprintf("%s (@%s)", s.DisplayName(), s.ID)),
		field("Role", roleLabel(s.Role)),
		field("Avatar", avatarLabel(s.Avatar)),
		field("Member since", dateLabel(s.CreatedAt)),
		field("Joined", dateLabel(s.JoinTime)),
		field("Sessions", fmt.Sprint(s.Stats.TotalSessions)),
		field("Time connected", (time.Duration(s.Stats.TotalTimeConnected) * time.Second).String()),
		field("Rating", fmt.Sprintf("%.1f", s.Stats.AverageRating)),
	}
	return p.card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Accounts renders one line per account, marking the one with currentID.
func (p *Palette) Accounts(accounts []models.Account, currentID string) string {
	if len(accounts) == 0 {
		return p.Help("No accounts")
	}

	var b strings.Builder
	b.WriteString(p.Title(fmt.Sprintf("Accounts (%d)", len(accounts))))
	b.WriteString("\n")
	for _, a := range accounts {
		marker := "  "
		if a.ID == currentID {
			marker = p.OK("*") + " "
		}
		fmt.Fprintf(&b, "%s%-20s %-20s %s\n", marker, a.ID, a.DisplayName(), roleLabel(a.Role))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Events renders the catalogue with each event's status and registration count.
func (p *Palette) Events(events []models.Event, registered map[string]int, now time.Time) string {
	if len(events) == 0 {
		return p.Help("No events")
	}

	var b strings.Builder
	b.WriteString(p.Title(fmt.Sprintf("Events (%d)", len(events))))
	b.WriteString("\n")
	for _, e := range events {
		fmt.Fprintf(&b, "%s  %s %s  %-24s %s  %d registered\n",
			e.ID, e.Date, e.Time, e.Title, p.eventStatus(&e, now), registered[e.ID])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Palette) eventStatus(e *models.Event, now time.Time) string {
	switch {
	case e.Active():
		return p.OK("live")
	case e.Past(now):
		return p.Help("past")
	default:
		return "scheduled"
	}
}

func field(label, value string) string {
	return fmt.Sprintf("%-15s %s", label+":", value)
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleSuperAdmin:
		return "super administrator"
	case models.RoleAdmin:
		return "administrator"
	default:
		return "participant"
	}
}

func avatarLabel(avatar string) string {
	switch {
	case avatar == "":
		return "none"
	case strings.HasPrefix(avatar, "data:"):
		mediaType, _, _ := strings.Cut(strings.TrimPrefix(avatar, "data:"), ";")
		return "uploaded " + mediaType
	default:
		return avatar
	}
}

func dateLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
