// Package ui provides the add-account view.
package ui

import (
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/urixen-org/mclaunch/internal/core"
)

// AccountModel is a minimal offline-profile creation form. Credential
// exchange (device-code OAuth against an identity provider) is handled by
// whatever supplies an args.Authorization upstream; this screen only
// covers the self-contained "play offline" account path.
type AccountModel struct {
	width, height int
	nameInput     textinput.Model
	err           error
}

// NewAccountModel creates the add-account form.
func NewAccountModel() *AccountModel {
	ti := textinput.New()
	ti.Placeholder = "Steve"
	ti.CharLimit = 16
	ti.Width = 30
	ti.Focus()

	return &AccountModel{nameInput: ti}
}

// SetSize updates dimensions.
func (m *AccountModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init implements tea.Model.
func (m *AccountModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *AccountModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }
		case "enter":
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				m.err = fmt.Errorf("enter a username")
				return m, nil
			}
			acc := &core.Account{
				ID:   offlineUUID(name),
				Name: name,
				Type: core.AccountTypeOffline,
			}
			return m, func() tea.Msg { return AccountAdded{Account: acc} }
		}
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *AccountModel) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Render("Add Offline Account")

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#626262")).
		Render("[Enter] Add • [Esc] Back")

	var errLine string
	if m.err != nil {
		errLine = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Render(m.err.Error())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		inputStyle.Render(m.nameInput.View()),
		errLine,
		"",
		help,
	)
}

// offlineUUID reproduces vanilla Minecraft's offline-mode player UUID:
// an MD5 name-based UUID (RFC 4122 version 3) over "OfflinePlayer:<name>".
func offlineUUID(name string) string {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // RFC 4122 variant
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}
