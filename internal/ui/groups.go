package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/sonoslink/internal/sonos"
)

// PlayerView is one player as displayed
type PlayerView struct {
	UUID string
	IP   string
	Name string // Nickname when one is configured, else zone name
}

// GroupView is one zone group as displayed: the coordinator first
type GroupView struct {
	Coordinator PlayerView
	Members     []PlayerView
}

// NameFunc maps a player's UUID and zone name to the name shown
type NameFunc func(uuid, name string) string

// ViewGroups converts discovered groups for display. names may be nil.
func ViewGroups(groups []*sonos.Device, names NameFunc) []GroupView {
	if names == nil {
		names = func(_, name string) string { return name }
	}
	view := func(d *sonos.Device) PlayerView {
		return PlayerView{UUID: d.UUID(), IP: d.IP(), Name: names(d.UUID(), d.Name())}
	}

	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		gv := GroupView{Coordinator: view(g)}
		for _, m := range g.Members() {
			gv.Members = append(gv.Members, view(m))
		}
		out = append(out, gv)
	}
	return out
}

// RenderGroups renders each group in a rounded box
func RenderGroups(groups []GroupView, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if len(groups) == 0 {
		return lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2).Render("No zone groups reported.")
	}

	boxes := make([]string, 0, len(groups))
	for _, g := range groups {
		lines := []string{
			GroupTitleStyle.Render(CoordinatorMarker+" "+g.Coordinator.Name) + "  " +
				AddressStyle.Render(fmt.Sprintf("%s  %s", g.Coordinator.IP, g.Coordinator.UUID)),
		}
		for _, m := range g.Members {
			lines = append(lines, MemberStyle.Render(MemberMarker+" "+m.Name)+"  "+
				AddressStyle.Render(fmt.Sprintf("%s  %s", m.IP, m.UUID)))
		}
		boxes = append(boxes, GroupBoxStyle(width).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// RenderGroupsCompact renders one unstyled line per group:
// "Kitchen (192.168.1.69) + Patio, Dining Room"
func RenderGroupsCompact(groups []GroupView) string {
	var b strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&b, "%s (%s)", g.Coordinator.Name, g.Coordinator.IP)
		if len(g.Members) > 0 {
			names := make([]string, len(g.Members))
			for i, m := range g.Members {
				names[i] = m.Name
			}
			fmt.Fprintf(&b, " + %s", strings.Join(names, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
