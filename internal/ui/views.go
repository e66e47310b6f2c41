package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bodyHeight is the space between the header and footer lines.
func (m Model) bodyHeight() int {
	return clamp(m.height-2, 1, m.height)
}

// centered places a form panel in the middle of the body.
func (m Model) centered(content string) string {
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) fieldLabel(label string, focused bool) string {
	styles := m.theme.Styles()
	if focused {
		return styles.AccentText.Bold(true).Render(label)
	}
	return styles.MutedText.Render(label)
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Logo.Render("Blogen"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Sign in to continue"))
	b.WriteString("\n\n")

	labels := [2]string{"User name", "Password"}
	for i := range m.login.fields {
		b.WriteString(m.fieldLabel(labels[i], i == m.login.focusIdx))
		b.WriteString("\n")
		b.WriteString(m.login.fields[i].View())
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("enter sign in · ctrl+n create account · ctrl+c quit"))

	return m.centered(styles.FocusedPanel.Width(52).Padding(1, 2).Render(b.String()))
}

func (m Model) renderSignup() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Logo.Render("Create account"))
	b.WriteString("\n\n")

	for i := range m.signup.fields {
		b.WriteString(m.fieldLabel(signupLabels[i], i == m.signup.focusIdx))
		b.WriteString("\n")
		b.WriteString(m.signup.fields[i].View())
		b.WriteString("\n")

		switch {
		case m.signup.errors[i] != "":
			b.WriteString(styles.DangerText.Render(m.signup.errors[i]))
		case i == signupUserName && m.signup.checkedName != "" && m.signup.checkedName == m.signup.userName():
			if m.signup.userCheck.Valid {
				b.WriteString(styles.SuccessText.Render(m.signup.userCheck.Feedback()))
			} else {
				b.WriteString(styles.DangerText.Render(m.signup.userCheck.Feedback()))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("ctrl+s submit · tab next field · esc back to sign in"))

	return m.centered(styles.FocusedPanel.Width(56).Padding(1, 2).Render(b.String()))
}

func (m Model) renderCompose() string {
	styles := m.theme.Styles()
	f := m.compose
	errs := make(map[string]string, len(f.errors))
	for _, fe := range f.errors {
		errs[fe.Field] = fe.Message
	}

	var b strings.Builder
	b.WriteString(styles.Logo.Render(f.heading))
	b.WriteString("\n\n")

	b.WriteString(m.fieldLabel("Title", f.focusIdx == composeTitle))
	b.WriteString("\n")
	b.WriteString(f.title.View())
	b.WriteString("\n")
	if e := errs["Title"]; e != "" {
		b.WriteString(styles.DangerText.Render(e))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.fieldLabel("Text", f.focusIdx == composeBody))
	b.WriteString("\n")
	b.WriteString(f.body.View())
	b.WriteString("\n")
	if e := errs["Text"]; e != "" {
		b.WriteString(styles.DangerText.Render(e))
		b.WriteString("\n")
	}

	if f.mode == composeThread {
		b.WriteString("\n")
		b.WriteString(m.fieldLabel("Category", f.focusIdx == composeCategory))
		b.WriteString("\n")
		b.WriteString(m.renderCategoryChoice())
		b.WriteString("\n")
		if e := errs["Category"]; e != "" {
			b.WriteString(styles.DangerText.Render(e))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("ctrl+s post · tab next field · esc discard"))

	width := clamp(m.width-4, 30, 124)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.FocusedPanel.Width(width).Render(b.String()))
}

func (m Model) renderCategoryChoice() string {
	styles := m.theme.Styles()
	f := m.compose
	if len(f.categories) == 0 {
		return styles.MutedText.Render("Loading categories...")
	}
	cat, ok := f.selectedCategory()
	if !ok {
		return styles.MutedText.Render("‹ Select a category ›")
	}
	text := fmt.Sprintf("‹ %s ›  %d/%d", cat.Name, f.catIdx+1, len(f.categories))
	if f.focusIdx == composeCategory {
		return styles.Selected.Render(text)
	}
	return styles.Text.Render(text)
}

func (m Model) renderCategories() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Logo.Render("Categories"))
	if info, ok := m.acts.Categories().PageInfo(); ok && info.TotalPages > 1 {
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("  page %d of %d", info.PageNumber+1, info.TotalPages)))
	}
	b.WriteString("\n\n")

	if len(m.categories) == 0 {
		b.WriteString(styles.MutedText.Render("No categories yet"))
		b.WriteString("\n")
	}
	width := clamp(m.width-12, 20, 60)
	for i, c := range m.categories {
		line := padRight(truncate(c.Name, width-8), width-8) + styles.FaintText.Render(fmt.Sprintf("#%d", c.ID))
		if c.ID == m.prefs.Category {
			line = "● " + line
		} else {
			line = "  " + line
		}
		if i == m.catSelected {
			line = styles.Selected.Width(width).Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.category.active {
		b.WriteString("\n")
		label := "New category"
		if m.category.editingID != 0 {
			label = "Rename category"
		}
		b.WriteString(m.fieldLabel(label, true))
		b.WriteString("\n")
		b.WriteString(m.category.input.View())
		b.WriteString("\n")
		if m.category.err != "" {
			b.WriteString(styles.DangerText.Render(m.category.err))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	hint := "enter filter posts · esc back"
	if m.isAdmin() {
		hint = "enter filter posts · a add · e rename · esc back"
	}
	b.WriteString(styles.FaintText.Render(hint))

	return m.centered(styles.FocusedPanel.Width(width+4).Padding(1, 2).Render(b.String()))
}
