package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/sonoslink/internal/discovery"
)

// RenderResponders renders one line per discovery responder, followed by its
// hostname and TXT metadata when it advertised over mDNS
func RenderResponders(responders []*discovery.Responder, width int) string {
	if len(responders) == 0 {
		return lipgloss.NewStyle().Foreground(MutedColor).PaddingLeft(2).Render("No players answered.")
	}

	var lines []string
	for _, r := range responders {
		title := r.Instance
		if title == "" {
			title = r.IP
		}
		lines = append(lines, GroupTitleStyle.Render(CoordinatorMarker+" "+title)+"  "+
			AddressStyle.Render(fmt.Sprintf("%s  via %s", r.BaseURL(), r.Source)))
		if r.Hostname != "" {
			lines = append(lines, MemberStyle.Render(MemberMarker+" host "+r.Hostname))
		}
		for _, k := range sortedKeys(r.Metadata) {
			lines = append(lines, MemberStyle.Render(fmt.Sprintf("%s %s=%s", MemberMarker, k, r.GetMetadata(k))))
		}
	}
	return GroupBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderRespondersCompact renders one unstyled line per responder
func RenderRespondersCompact(responders []*discovery.Responder) string {
	var b strings.Builder
	for _, r := range responders {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
