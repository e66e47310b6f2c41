package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/render"
)

// row is one line of the thread list: a thread or one of its replies.
type row struct {
	post     blogen.Post
	threadID int64
	reply    bool
}

// flattenRows lists each thread followed by its replies, in cache order.
func flattenRows(posts []blogen.Post) []row {
	rows := make([]row, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, row{post: p, threadID: p.ID})
		for _, c := range p.Children {
			rows = append(rows, row{post: c, threadID: p.ID, reply: true})
		}
	}
	return rows
}

// canModify reports whether user may edit or delete post.
func canModify(user blogen.User, admin bool, post blogen.Post) bool {
	if admin {
		return true
	}
	return user.ID != 0 && post.User.ID == user.ID
}

func (m Model) rows() []row {
	return flattenRows(m.snapshot.Posts)
}

func (m Model) selectedRow() (row, bool) {
	rows := m.rows()
	if m.selected < 0 || m.selected >= len(rows) {
		return row{}, false
	}
	return rows[m.selected], true
}

func (m Model) selectedPost() (blogen.Post, bool) {
	r, ok := m.selectedRow()
	return r.post, ok
}

func (m *Model) selectPost(id int64) {
	for i, r := range m.rows() {
		if r.post.ID == id {
			m.selected = i
			m.updateDetail()
			return
		}
	}
}

func (m Model) handlePostsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.confirmDelete != 0 {
		id := m.confirmDelete
		m.confirmDelete = 0
		if msg.String() == "y" || msg.String() == "Y" {
			m.busy = "Deleting"
			return m, m.deletePostCmd(id)
		}
		m.setBanner("Delete cancelled", bannerInfo)
		return m, nil
	}

	rows := m.rows()
	info := m.snapshot.PageInfo

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1, len(rows))
		return m, m.fetchAuthorCmd()

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1, len(rows))
		return m, m.fetchAuthorCmd()

	case key.Matches(msg, m.keys.Top):
		m.selected = 0
		m.updateDetail()
		return m, m.fetchAuthorCmd()

	case key.Matches(msg, m.keys.Bottom):
		m.selected = clamp(len(rows)-1, 0, len(rows)-1)
		m.updateDetail()
		return m, m.fetchAuthorCmd()

	case key.Matches(msg, m.keys.NextPage):
		if !info.HasNext() {
			return m, nil
		}
		m.busy = "Loading page"
		return m, m.goToPageCmd(info.PageNumber + 1)

	case key.Matches(msg, m.keys.PrevPage):
		if !info.HasPrev() {
			return m, nil
		}
		m.busy = "Loading page"
		return m, m.goToPageCmd(info.PageNumber - 1)

	case key.Matches(msg, m.keys.Refresh):
		m.busy = "Reloading"
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Escape):
		if m.listing == "" {
			return m, nil
		}
		m.busy = "Loading posts"
		return m, m.listPostsCmd(0, m.prefs.Category)

	case key.Matches(msg, m.keys.CycleCategory):
		m.prefs.Category = nextCategory(m.categories, m.prefs.Category)
		m.busy = "Loading posts"
		return m, tea.Batch(m.listPostsCmd(0, m.prefs.Category), savePrefsCmd(m.prefsPath, m.prefs))

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.MyPosts):
		m.busy = "Loading posts"
		return m, m.listUserPostsCmd(m.currentUser())

	case key.Matches(msg, m.keys.ViewLogs):
		m.switchView(ViewLogs)
		m.busy = "Reading log"
		return m, readLogsCmd(m.logPath)

	case key.Matches(msg, m.keys.ViewCategories):
		m.switchView(ViewCategories)
		m.catSelected = clamp(m.catSelected, 0, len(m.categories)-1)
		return m, m.listCategoriesCmd(0)

	case key.Matches(msg, m.keys.NewPost):
		return m.openCompose(composeThread, row{})

	case key.Matches(msg, m.keys.Reply):
		r, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		return m.openCompose(composeReply, r)

	case key.Matches(msg, m.keys.Edit):
		r, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		if !canModify(m.currentUser(), m.isAdmin(), r.post) {
			m.setBanner("You can only edit your own posts", bannerError)
			return m, nil
		}
		return m.openCompose(composeEdit, r)

	case key.Matches(msg, m.keys.Delete):
		post, ok := m.selectedPost()
		if !ok {
			return m, nil
		}
		if !canModify(m.currentUser(), m.isAdmin(), post) {
			m.setBanner("You can only delete your own posts", bannerError)
			return m, nil
		}
		m.confirmDelete = post.ID
		what := "post"
		if len(post.Children) > 0 {
			what = "thread and " + pluralize(len(post.Children), "reply", "replies")
		}
		m.setBanner(fmt.Sprintf("Delete %s %q? y/N", what, truncate(post.Title, 40)), bannerError)
		return m, nil

	case msg.String() == "J":
		m.detail.HalfViewDown()
		return m, nil

	case msg.String() == "K":
		m.detail.HalfViewUp()
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.searchInput.Value())
		m.searching = false
		m.searchInput.Blur()
		if text == "" {
			return m, nil
		}
		m.busy = "Searching"
		return m, m.searchPostsCmd(text)
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) moveSelection(delta, count int) {
	if count == 0 {
		m.selected = 0
		return
	}
	m.selected = clamp(m.selected+delta, 0, count-1)
	m.detail.GotoTop()
	m.updateDetail()
}

// nextCategory cycles All -> first category -> ... -> last -> All.
func nextCategory(cats []blogen.Category, current int64) int64 {
	if current == blogen.AllCategories {
		if len(cats) == 0 {
			return blogen.AllCategories
		}
		return cats[0].ID
	}
	for i, c := range cats {
		if c.ID == current && i+1 < len(cats) {
			return cats[i+1].ID
		}
	}
	return blogen.AllCategories
}

func categoryLabel(cats []blogen.Category, id int64) string {
	if id == blogen.AllCategories || id == 0 {
		return "All categories"
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return fmt.Sprintf("Category #%d", id)
}

// Rendering

func (m Model) detailSize() (int, int) {
	h := clamp(m.height-4, 1, m.height)
	if m.width < LayoutCompactWidth {
		return m.width - 4, clamp(h/2-2, 1, h)
	}
	listWidth := int(float64(m.width) * LayoutListShare)
	return clamp(m.width-listWidth-4, 10, m.width), clamp(h-2, 1, h)
}

func (m Model) renderPosts() string {
	styles := m.theme.Styles()
	bodyHeight := clamp(m.height-2, 1, m.height)

	if m.searching {
		bodyHeight--
	}

	var list string
	if len(m.snapshot.Posts) == 0 {
		msg := "No posts on this page"
		if !m.snapshot.Loaded {
			msg = "Loading posts..."
		}
		list = styles.MutedText.Render(msg)
	} else {
		list = m.renderThreadList(m.listWidth()-2, bodyHeight-2)
	}

	var body string
	if m.width < LayoutCompactWidth {
		listPanel := styles.FocusedPanel.Width(m.width - 2).Height(bodyHeight/2 - 2).Render(list)
		detailPanel := styles.Panel.Width(m.width - 2).Render(m.detail.View())
		body = lipgloss.JoinVertical(lipgloss.Left, listPanel, detailPanel)
	} else {
		listPanel := styles.FocusedPanel.Width(m.listWidth()).Height(bodyHeight - 2).Render(list)
		detailPanel := styles.Panel.Width(m.detail.Width).Height(bodyHeight - 2).Render(m.detail.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
	}
	if m.searching {
		body = lipgloss.JoinVertical(lipgloss.Left, styles.AccentText.Render("/ ")+m.searchInput.View(), body)
	}
	return body
}

func (m Model) listWidth() int {
	if m.width < LayoutCompactWidth {
		return m.width - 4
	}
	return int(float64(m.width)*LayoutListShare) - 2
}

// renderThreadList draws the rows, scrolled so the selection is visible.
func (m Model) renderThreadList(width, height int) string {
	styles := m.theme.Styles()
	rows := m.rows()
	if height < 1 {
		height = 1
	}
	start := 0
	if m.selected >= height {
		start = m.selected - height + 1
	}
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}

	user := m.currentUser()
	now := m.now()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		r := rows[i]
		prefix := "● "
		if r.reply {
			prefix = "  └ "
		}
		meta := r.post.User.UserName
		if age := humanizeAge(r.post.ParsedCreated(), now); age != "" {
			meta += " · " + age
		}
		if !r.reply && len(r.post.Children) > 0 {
			meta += " · " + pluralize(len(r.post.Children), "reply", "replies")
		}
		title := r.post.Title
		if title == "" {
			title = render.Excerpt(r.post.Text, maxTitleWidth)
		}
		room := width - len([]rune(prefix)) - len([]rune(meta)) - 3
		line := prefix + padRight(truncate(title, clamp(room, 8, maxTitleWidth)), clamp(room, 8, maxTitleWidth)) + "  " + meta

		switch {
		case i == m.selected:
			line = styles.Selected.Width(width).Render(line)
		case r.reply:
			line = styles.MutedText.Render(line)
		case r.post.User.ID == user.ID && user.ID != 0:
			line = styles.AccentText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// updateDetail renders the selected post into the detail viewport.
func (m *Model) updateDetail() {
	if m.detail.Width <= 0 {
		return
	}
	post, ok := m.selectedPost()
	if !ok {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(m.renderDetail(post, m.detail.Width))
}

func (m Model) renderDetail(post blogen.Post, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Width(width).Render(post.Title))
	b.WriteString("\n")

	author := post.User.UserName
	if u, ok := m.authors[post.User.ID]; ok {
		author = u.DisplayName() + " (@" + u.UserName + ")"
	}
	meta := []string{author}
	if post.Category.Name != "" {
		meta = append(meta, post.Category.Name)
	}
	if created := post.ParsedCreated(); !created.IsZero() {
		meta = append(meta, created.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString(styles.MutedText.Width(width).Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	var badges []string
	if post.IsReply() {
		badges = append(badges, styles.BadgeStyle("reply").Render("reply"))
	}
	if user := m.currentUser(); user.ID != 0 && post.User.ID == user.ID {
		badges = append(badges, styles.BadgeStyle("you").Render("yours"))
	}
	if len(badges) > 0 {
		b.WriteString(strings.Join(badges, " "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Text.Width(width).Render(render.PlainText(post.Text)))

	if post.ImageURL != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render("image: " + post.ImageURL))
	}
	if n := len(post.Children); n > 0 {
		b.WriteString("\n\n")
		b.WriteString(styles.FaintText.Render(pluralize(n, "reply", "replies") + " below"))
	}
	return b.String()
}
