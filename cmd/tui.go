// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/Thermoquad/cryptoauth/pkg/transcript"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const maxLogEntries = 50

// Focus states
const (
	focusCommandList = iota
	focusArgsInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// commandItem is a frame command in the picker list
type commandItem struct {
	cmd frameCommand
}

func (c commandItem) Title() string       { return c.cmd.Name }
func (c commandItem) Description() string { return c.cmd.Help }
func (c commandItem) FilterValue() string { return c.cmd.Name }

type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// builderModel is the Bubble Tea model for the interactive frame builder
type builderModel struct {
	commandList list.Model
	argsInput   textinput.Model
	focused     int

	// Last build result for the current command and arguments
	packet   *atca.Packet
	buildErr error

	// Optional connection for sending frames
	link     *link
	connInfo string
	sending  bool
	stats    *transcript.Statistics
	log      []logEntry

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type exchangeMsg struct {
	packet *atca.Packet
	result *exchangeResult
	err    error
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive frame builder",
	Long: `Pick a command, type its arguments and watch the frame update as you type.

When --port or --url is given, ctrl+s sends the current frame and shows the
decoded reply.

Keys:
  tab        switch between command list and arguments
  enter      select command
  ctrl+s     send frame (with a connection)
  q, ctrl+c  quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	var conn Connection
	var connInfo string
	if portName != "" || wsURL != "" {
		var err error
		conn, connInfo, err = OpenConnection()
		if err != nil {
			return fmt.Errorf("failed to open connection: %w", err)
		}
		defer conn.Close()
	}

	p := tea.NewProgram(initialBuilderModel(conn, connInfo), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialBuilderModel(conn Connection, connInfo string) builderModel {
	items := make([]list.Item, 0, len(frameCommands))
	for _, name := range frameCommandNames() {
		items = append(items, commandItem{frameCommands[name]})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	commandList := list.New(items, delegate, 36, 20)
	commandList.Title = "Commands"
	commandList.SetShowStatusBar(false)
	commandList.SetShowHelp(false)
	commandList.SetFilteringEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "arguments"
	ti.CharLimit = 256
	ti.Width = 48

	m := builderModel{
		commandList: commandList,
		argsInput:   ti,
		focused:     focusCommandList,
		connInfo:    connInfo,
		stats:       transcript.NewStatistics(),
		width:       80,
		height:      24,
	}
	if conn != nil {
		m.link = newLink(conn)
	}
	m.rebuild()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m builderModel) Init() tea.Cmd {
	return nil
}

func (m builderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.commandList.SetHeight(max(msg.Height-6, 5))

	case exchangeMsg:
		m.sending = false
		m.handleExchange(msg)
	}
	return m, nil
}

func (m builderModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.focused == focusCommandList {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab", "shift+tab":
		m.setFocus(1 - m.focused)
		return m, nil

	case "enter":
		if m.focused == focusCommandList {
			m.setFocus(focusArgsInput)
			return m, nil
		}

	case "ctrl+s":
		return m.send()
	}

	var cmd tea.Cmd
	if m.focused == focusArgsInput {
		m.argsInput, cmd = m.argsInput.Update(msg)
	} else {
		m.commandList, cmd = m.commandList.Update(msg)
	}
	m.rebuild()
	return m, cmd
}

func (m *builderModel) setFocus(f int) {
	m.focused = f
	if f == focusArgsInput {
		m.argsInput.Focus()
	} else {
		m.argsInput.Blur()
	}
}

// selected returns the highlighted command
func (m *builderModel) selected() (frameCommand, bool) {
	item, ok := m.commandList.SelectedItem().(commandItem)
	if !ok {
		return frameCommand{}, false
	}
	return item.cmd, true
}

// rebuild builds the frame for the current command and arguments
func (m *builderModel) rebuild() {
	c, ok := m.selected()
	if !ok {
		m.packet, m.buildErr = nil, fmt.Errorf("no command selected")
		return
	}
	m.argsInput.Placeholder = c.Usage
	m.packet, m.buildErr = buildFrame(c.Name, strings.Fields(m.argsInput.Value()))
}

func (m builderModel) send() (tea.Model, tea.Cmd) {
	if m.link == nil {
		m.addLogEntry("No connection: start with --port or --url to send", true)
		return m, nil
	}
	if m.packet == nil || m.sending {
		return m, nil
	}
	m.sending = true
	p, l, timeout := m.packet, m.link, replyTimeout
	return m, func() tea.Msg {
		res, err := l.exchange(p, timeout)
		return exchangeMsg{packet: p, result: res, err: err}
	}
}

func (m *builderModel) handleExchange(msg exchangeMsg) {
	err := msg.err
	var reply []byte
	var elapsed time.Duration
	if msg.result != nil {
		reply, elapsed = msg.result.Reply, msg.result.Duration
		if err == nil {
			err = msg.result.Err
		}
	}
	m.stats.Update(transcript.NewRecord(msg.packet, reply, err, elapsed))

	name := atca.FormatOpCode(msg.packet.OpCode())
	if err != nil {
		m.addLogEntry(fmt.Sprintf("%s: %v", name, err), true)
		return
	}
	m.addLogEntry(fmt.Sprintf("%s -> %s (%s)", name, atca.FormatHex(msg.result.Data), elapsed.Round(time.Millisecond)), false)
}

func (m *builderModel) addLogEntry(message string, isError bool) {
	m.log = append(m.log, logEntry{timestamp: time.Now(), message: message, isError: isError})
	if len(m.log) > maxLogEntries {
		m.log = m.log[len(m.log)-maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m builderModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	s.WriteString(titleStyle.Render("CRYPTOAUTH BUILDER"))
	conn := "offline"
	if m.link != nil {
		conn = m.connInfo
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf(" | %s | tab: switch | ctrl+s: send | q: quit", conn)))
	s.WriteString("\n\n")

	listBox := boxStyle
	inputBox := boxStyle
	if m.focused == focusCommandList {
		listBox = focusedBoxStyle
	} else {
		inputBox = focusedBoxStyle
	}

	var right strings.Builder
	right.WriteString(inputBox.Render(labelStyle.Render("Args: ") + m.argsInput.View()))
	right.WriteString("\n")

	var frame strings.Builder
	if m.buildErr != nil {
		frame.WriteString(errorStyle.Render(m.buildErr.Error()))
	} else {
		frame.WriteString(labelStyle.Render("Frame: "))
		frame.WriteString(valueStyle.Render(atca.FormatHex(m.packet.Bytes())))
		frame.WriteString("\n\n")
		frame.WriteString(atca.FormatPacket(m.packet))
		frame.WriteString(fmt.Sprintf("  Reply: %d bytes", m.packet.ResponseSize()))
	}
	right.WriteString(boxStyle.Width(max(m.width-44, 40)).Render(frame.String()))

	if m.link != nil || len(m.log) > 0 {
		right.WriteString("\n")
		var log strings.Builder
		log.WriteString(labelStyle.Render(fmt.Sprintf("Exchanges: %d  Errors: %d",
			m.stats.TotalExchanges, m.stats.TotalExchanges-m.stats.Succeeded)))
		if m.sending {
			log.WriteString(headerStyle.Render("  sending..."))
		}
		for _, e := range m.log {
			line := fmt.Sprintf("\n[%s] %s", e.timestamp.Format("15:04:05"), e.message)
			if e.isError {
				line = errorStyle.Render(line)
			}
			log.WriteString(line)
		}
		right.WriteString(boxStyle.Render(log.String()))
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listBox.Render(m.commandList.View()), " ", right.String()))
	s.WriteString("\n")
	return s.String()
}
