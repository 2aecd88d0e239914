// Package tui is an interactive terminal view for browsing monthly stats.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ArionMiles/spendlens/pkg/navigator"
	"github.com/ArionMiles/spendlens/pkg/report"
)

// Controller is the navigation surface the view drives.
type Controller interface {
	Start(ctx context.Context) bool
	GoToPreviousMonth(ctx context.Context) bool
	GoToNextMonth(ctx context.Context) bool
	RefreshData(ctx context.Context) bool
	Wait()
	State() navigator.State
	FormattedMonth() string
	IsCurrentMonth() bool
}

var (
	colorText     = lipgloss.Color("#cdd6f4")
	colorSubtext0 = lipgloss.Color("#a6adc8")
	colorOverlay1 = lipgloss.Color("#7f849c")
	colorSurface1 = lipgloss.Color("#45475a")
	colorBlue     = lipgloss.Color("#89b4fa")
	colorGreen    = lipgloss.Color("#a6e3a1")
	colorPeach    = lipgloss.Color("#fab387")
	colorRed      = lipgloss.Color("#f38ba8")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 2).
			MarginRight(1)
	helpStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle = lipgloss.NewStyle().Foreground(colorRed)
	busyStyle  = lipgloss.NewStyle().Foreground(colorPeach)
)

// loadedMsg reports that the controller finished a load.
type loadedMsg struct{}

// Model is the Bubble Tea model for the month browser.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	amounts  report.AmountFormatter
	currency string
}

// New creates the browser model.
func New(ctx context.Context, ctrl Controller, locale, currency string) Model {
	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		amounts:  report.NewAmountFormatter(locale),
		currency: currency,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	if m.ctrl.Start(m.ctx) {
		return m.waitForLoad
	}
	return nil
}

func (m Model) waitForLoad() tea.Msg {
	m.ctrl.Wait()
	return loadedMsg{}
}

// Update handles key presses and load completions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return m, nil
	case tea.KeyMsg:
		var started bool
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			started = m.ctrl.GoToPreviousMonth(m.ctx)
		case "right", "l":
			started = m.ctrl.GoToNextMonth(m.ctx)
		case "r":
			started = m.ctrl.RefreshData(m.ctx)
		}
		if started {
			return m, m.waitForLoad
		}
	}
	return m, nil
}

// View renders the current state.
func (m Model) View() string {
	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("‹  " + m.ctrl.FormattedMonth() + "  ›"))
	if m.ctrl.IsCurrentMonth() {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGreen).Render("  (this month)"))
	}
	b.WriteString("\n\n")

	switch {
	case st.Loading:
		b.WriteString(busyStyle.Render("Loading…") + "\n\n")
	case st.Error != "":
		b.WriteString(errorStyle.Render("Could not load data: "+st.Error) + "\n")
		b.WriteString(helpStyle.Render("Press r to retry.") + "\n\n")
	}

	data := st.Data
	cards := []string{m.card("Monthly total", m.money(data.MonthlyTotal))}
	if data.ShowDailyCard {
		cards = append(cards, m.card("Today", m.money(data.DailyTotal)))
	}
	cards = append(cards, m.card("Expenses", fmt.Sprintf("%d", data.ExpenseCount)))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n")

	b.WriteString(labelStyle.Render("Budget ") +
		report.ProgressBar(data.MonthlyProgress, 30) + " " +
		valueStyle.Render(m.amounts.Percent(data.MonthlyProgress)) + "\n\n")

	b.WriteString(labelStyle.Render("Top categories") + "\n")
	if len(data.TopCategories) == 0 {
		b.WriteString(helpStyle.Render("  no spending") + "\n")
	}
	for i, c := range data.TopCategories {
		fmt.Fprintf(&b, "  %d. %-16s %s\n", i+1, c.Name, valueStyle.Render(m.money(c.Amount)))
	}

	b.WriteString("\n" + helpStyle.Render("←/h previous • →/l next • r refresh • q quit") + "\n")
	return b.String()
}

func (m Model) card(label, value string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func (m Model) money(d decimal.Decimal) string {
	return m.amounts.Format(d) + " " + m.currency
}
