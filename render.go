package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-i2p/go-onion/lib/config"
	"github.com/go-i2p/go-onion/lib/crypto/rsa"
	"github.com/go-i2p/go-onion/lib/directory"
	"github.com/go-i2p/go-onion/lib/keys"
	"github.com/go-i2p/go-onion/lib/router"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hopStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderNodeBanner(r *router.Router) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("go-onion %s", r.Role())),
		fmt.Sprintf("listening on %s", r.Addr()),
	}
	if r.Role() != router.RoleDirectory {
		lines = append(lines, fmt.Sprintf("node id %d", r.ID()))
	}
	if ks := r.Keystore(); ks != nil {
		lines = append(lines, mutedStyle.Render("key "+ks.KeyID()))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderCircuit draws the path a message took: entry -> middle -> exit -> recipient.
func renderCircuit(ids []int, addressing config.Addressing, recipient int) string {
	parts := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		parts = append(parts, hopStyle.Render(strconv.Itoa(id))+mutedStyle.Render(":"+addressing.NextHop(id)))
	}
	parts = append(parts, titleStyle.Render(fmt.Sprintf("user %d", recipient)))
	return "circuit " + strings.Join(parts, mutedStyle.Render(" -> "))
}

// renderNodes draws the directory as a table of id, address and key fingerprint.
func renderNodes(nodes []directory.Node, addressing config.Addressing) string {
	if len(nodes) == 0 {
		return mutedStyle.Render("no nodes registered")
	}

	cols := [3][]string{
		{headerStyle.Render("ID")},
		{headerStyle.Render("ADDRESS")},
		{headerStyle.Render("FINGERPRINT")},
	}
	for _, n := range nodes {
		fp := "invalid key"
		if pub, err := rsa.ImportPublicKey(n.PublicKey); err == nil {
			fp = keys.Fingerprint(pub)
		}
		cols[0] = append(cols[0], cellStyle.Render(strconv.Itoa(n.NodeID)))
		cols[1] = append(cols[1], cellStyle.Render(addressing.NodeAddress(n.NodeID)))
		cols[2] = append(cols[2], cellStyle.Render(fp))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, cols[0]...),
		lipgloss.JoinVertical(lipgloss.Left, cols[1]...),
		lipgloss.JoinVertical(lipgloss.Left, cols[2]...),
	) + "\n" + mutedStyle.Render(fmt.Sprintf("%d nodes", len(nodes)))
}
