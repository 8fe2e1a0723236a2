package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/identity"
	"github.com/predictpark/predictpark/internal/swipe"
	"github.com/predictpark/predictpark/pkg/format"
)

// 卡片最大水平偏移（单元格）
const maxShift = 16

func (m *Model) View() string {
	var body string
	switch m.screen() {
	case screenConfigError:
		body = m.viewConfigError()
	case screenIdentityLoading:
		body = mutedStyle.Render("Loading session...")
	case screenSignIn:
		body = m.viewSignIn()
	case screenLoading:
		body = mutedStyle.Render("Loading markets...")
	case screenAllDone:
		body = m.viewAllDone()
	default:
		body = m.viewDeck()
	}

	parts := []string{m.viewHeader(), ""}
	if banner := m.viewErrorBanner(); banner != "" {
		parts = append(parts, banner, "")
	}
	parts = append(parts, body, "", helpStyle.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) viewHeader() string {
	left := headerStyle.Render(m.opts.SiteName)
	var pos string
	if m.screen() == screenDeck {
		i, n := m.deck.Position()
		pos = mutedStyle.Render(fmt.Sprintf("  %d / %d", i+1, n))
	}
	var user string
	if m.opts.Identity != nil {
		if u := m.opts.Identity.User(); u != nil {
			user = mutedStyle.Render(fmt.Sprintf("  %s [%s]", u.DisplayName(), u.LoginKind()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, pos, user)
}

func (m *Model) viewConfigError() string {
	err := m.opts.ConfigErr
	if err == nil {
		err = identity.ErrMissingAppID
	}
	msg := "Configuration error\n\n" + err.Error()
	if errors.Is(err, identity.ErrMissingAppID) {
		msg += "\n\nSet PREDICTPARK_APP_ID (or PRIVY_APP_ID) and restart."
	}
	return blockStyle.Render(msg)
}

func (m *Model) viewSignIn() string {
	lines := []string{
		titleStyle.Render("Welcome to " + m.opts.SiteName),
		mutedStyle.Render("Swipe right for UP, left for DOWN."),
		"",
	}
	if m.busy {
		lines = append(lines, mutedStyle.Render("Signing in..."))
	} else {
		lines = append(lines, "Press i to sign in")
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewAllDone() string {
	_, n := m.deck.Position()
	msg := "You've seen all markets!"
	if n == 0 {
		msg = "No markets match the current filters."
	}
	return cardStyle.Render(titleStyle.Render(msg) + "\n\n" + "Press r to start over")
}

func (m *Model) viewErrorBanner() string {
	var msgs []string
	if m.opts.Query != nil {
		if err := m.opts.Query.State().Err; err != nil {
			msgs = append(msgs, "Failed to refresh markets: "+err.Error())
		}
	}
	if m.authErr != nil {
		msgs = append(msgs, m.authErr.Error())
	}
	if m.recordErr != nil {
		msgs = append(msgs, "Failed to record decision: "+m.recordErr.Error())
	}
	if len(msgs) == 0 {
		return ""
	}
	return errorStyle.Render(strings.Join(msgs, " | "))
}

func (m *Model) viewDeck() string {
	cur, ok := m.deck.Current()
	if !ok {
		return ""
	}
	t := m.interp.Transform()
	pending := m.deck.Pending()

	style := cardStyle
	if m.interp.Dragging() {
		style = dragCardStyle
	}
	card := style.Render(m.cardBody(cur, t, pending))
	if next, ok := m.deck.Next(); ok {
		card = lipgloss.JoinVertical(lipgloss.Center, card,
			peekStyle.Render(format.Truncate("Next: "+next.Title, 48)))
	}

	shift := int(math.Round(t.TranslateX / cellScaleX))
	if pending == swipe.Right {
		shift = maxShift
	} else if pending == swipe.Left {
		shift = -maxShift
	}
	if shift > maxShift {
		shift = maxShift
	}
	if shift < -maxShift {
		shift = -maxShift
	}
	return lipgloss.NewStyle().MarginLeft(maxShift + shift).Render(card)
}

func (m *Model) cardBody(mk domain.Market, t swipe.Transform, pending swipe.Direction) string {
	var lines []string

	if stamp := indicator(t, pending); stamp != "" {
		lines = append(lines, stamp, "")
	}
	if mk.CryptoAsset != "" {
		lines = append(lines, badgeStyle.Render(mk.CryptoAsset))
	}
	lines = append(lines,
		titleStyle.Render(mk.Title),
		mutedStyle.Render(format.Truncate(mk.Description, 100)),
		"",
		upStyle.Render(format.Probability(mk.Up.Probability))+mutedStyle.Render(" chance UP"),
		fmt.Sprintf("%s %s    %s %s",
			upStyle.Render("YES"), format.Currency(mk.Up.Price),
			downStyle.Render("NO"), format.Currency(mk.Down.Price)),
		"",
		mutedStyle.Render(fmt.Sprintf("24h Vol %s   Liquidity %s",
			format.CompactCurrency(mk.Volume24h), format.CompactCurrency(mk.Liquidity))),
	)
	if !mk.ClosesAt.IsZero() {
		lines = append(lines, mutedStyle.Render("Closes "+format.RelativeTime(mk.ClosesAt, m.now)))
	}
	return strings.Join(lines, "\n")
}

// indicator 拖拽中按强度显示方向，已提交时显示最终方向
func indicator(t swipe.Transform, pending swipe.Direction) string {
	dir := pending
	strength := 1.0
	if dir == 0 {
		dir = t.Indicator
		strength = t.Strength
	}
	const width = 10
	filled := int(math.Round(strength * width))
	if filled < 0 || filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch dir {
	case swipe.Right:
		return upStyle.Render("▲ UP " + bar)
	case swipe.Left:
		return downStyle.Render("▼ DOWN " + bar)
	}
	return ""
}

func (m *Model) helpLine() string {
	switch m.screen() {
	case screenConfigError, screenIdentityLoading, screenLoading:
		return "q quit"
	case screenSignIn:
		return "i sign in • q quit"
	case screenAllDone:
		return "r restart • o sign out • q quit"
	}
	help := "←/a DOWN • →/d UP • u undo • "
	if m.opts.Query != nil {
		help += "r refresh • "
	}
	return help + "o sign out • q quit"
}
