package ui

import (
	"fmt"
	"strings"
)

func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBar(m.theme.Surface)

	left := []string{styles.Logo.Render("Blogen")}
	if m.view == ViewPosts || m.view == ViewCompose {
		left = append(left, bg.text(m.listingLabel(), styles.Text))
		if info := m.snapshot.PageInfo; info.TotalPages > 0 {
			left = append(left, bg.text(fmt.Sprintf("page %d/%d", info.PageNumber+1, info.TotalPages), styles.MutedText))
		}
	}

	var right []string
	if m.snapshot.IsOffline() {
		right = append(right, styles.BadgeStyle("offline").Render("offline"))
	}
	if m.listing != "" && m.view == ViewPosts {
		right = append(right, styles.BadgeStyle("search").Render("filtered"))
	}
	if user := m.currentUser(); user.ID != 0 {
		right = append(right, bg.text(user.UserName, styles.AccentText))
		if m.isAdmin() {
			right = append(right, styles.BadgeStyle("admin").Render("admin"))
		}
	}
	return bg.line(left, right, m.width)
}

// listingLabel names what the thread list currently shows.
func (m Model) listingLabel() string {
	if m.listing != "" {
		return m.listing
	}
	var cat int64
	if m.acts != nil {
		cat = m.acts.CurrentCategory()
	}
	return categoryLabel(m.categories, cat)
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBar(m.theme.Surface)

	var text string
	switch {
	case m.busy != "":
		text = bg.text(m.busy+"...", styles.InfoText)
	case m.banner != "":
		style := styles.Text
		switch m.bannerKind {
		case bannerError:
			style = styles.DangerText
		case bannerSuccess:
			style = styles.SuccessText
		}
		text = bg.text(m.banner, style)
	default:
		text = bg.text(m.footerHints(), styles.MutedText)
	}

	parts := []string{text}
	if snap := m.snapshot; snap.ConsecutiveFailures > 0 && m.view == ViewPosts && m.busy == "" {
		parts = append(parts, bg.text(fmt.Sprintf("(%d failed refreshes)", snap.ConsecutiveFailures), styles.WarningText))
	}
	return bg.line(parts, nil, m.width)
}

func (m Model) footerHints() string {
	var hints []string
	switch m.view {
	case ViewPosts:
		if m.searching {
			return "enter search · esc cancel"
		}
		hints = []string{"j/k move", "n new", "R reply", "/ search", "f category", "c categories"}
		if m.listing != "" {
			hints = append(hints, "esc all posts")
		}
	case ViewCategories:
		hints = []string{"j/k move", "enter filter", "esc back"}
	default:
		return ""
	}
	hints = append(hints, "? help", "q quit")
	return strings.Join(hints, " · ")
}
