package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RachelRYuan/Blogen/internal/validate"
)

// typing reports whether keystrokes belong to a text input.
func (m Model) typing() bool {
	switch {
	case m.searching:
		return true
	case m.view == ViewLogin, m.view == ViewSignup, m.view == ViewCompose:
		return true
	case m.view == ViewCategories && m.category.active:
		return true
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}

	if !m.typing() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.CycleTheme):
			m.prefs.Theme = NextTheme(m.theme.Name)
			m.theme = GetTheme(m.prefs.Theme)
			m.updateDetail()
			m.setBanner("Theme: "+m.theme.Name, bannerInfo)
			return m, savePrefsCmd(m.prefsPath, m.prefs)
		case key.Matches(msg, m.keys.Logout):
			if !m.authenticated() {
				return m, nil
			}
			m.busy = "Signing out"
			return m, m.logoutCmd()
		}
	}

	switch m.view {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewSignup:
		return m.handleSignupKey(msg)
	case ViewCompose:
		return m.handleComposeKey(msg)
	case ViewCategories:
		return m.handleCategoriesKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handlePostsKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Signup):
		m.switchView(ViewSignup)
		m.signup.focusIdx = 0
		return m, m.signup.focus()

	case key.Matches(msg, m.keys.NextField), msg.Type == tea.KeyDown:
		return m, m.login.move(1)

	case key.Matches(msg, m.keys.PrevField), msg.Type == tea.KeyUp:
		return m, m.login.move(-1)

	case key.Matches(msg, m.keys.Confirm, m.keys.Submit):
		username, password := m.login.values()
		if m.login.focusIdx == 0 && password == "" {
			return m, m.login.move(1)
		}
		if username == "" || password == "" {
			m.setBanner("Please enter your user name and password", bannerError)
			return m, nil
		}
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Signing in"
		return m, m.loginCmd(username, password)
	}
	return m, m.login.update(msg)
}

func (m Model) handleSignupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewLogin)
		return m, m.login.focus()

	case key.Matches(msg, m.keys.NextField), msg.Type == tea.KeyDown:
		return m, m.signup.move(1)

	case key.Matches(msg, m.keys.PrevField), msg.Type == tea.KeyUp:
		return m, m.signup.move(-1)

	case key.Matches(msg, m.keys.Submit),
		key.Matches(msg, m.keys.Confirm) && m.signup.focusIdx == signupFieldCount-1:
		if !m.signup.validate() {
			m.setBanner("Please fix the highlighted fields", bannerError)
			return m, nil
		}
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Creating account"
		return m, m.signupCmd(m.signup.request())

	case key.Matches(msg, m.keys.Confirm):
		return m, m.signup.move(1)
	}

	before := m.signup.userName()
	cmd := m.signup.update(msg)
	if m.signup.focusIdx == signupUserName {
		if name := m.signup.userName(); name != before {
			m.signup.checkedName = ""
			m.signup.userCheck = validate.Result{}
			if name != "" {
				cmd = tea.Batch(cmd, debounceUserNameCmd(name))
			}
		}
	}
	return m, cmd
}

// openCompose prepares the compose form for a new thread, a reply to the
// thread containing r, or an edit of r.
func (m Model) openCompose(mode composeMode, r row) (tea.Model, tea.Cmd) {
	f := newComposeForm(mode, m.width, m.height)
	switch mode {
	case composeReply:
		title := threadTitle(m, r.threadID)
		f.parentID = r.threadID
		f.categoryID = r.post.Category.ID
		f.heading = "Reply to " + truncate(title, maxTitleWidth)
		if !strings.HasPrefix(title, "Re: ") {
			title = "Re: " + title
		}
		f.title.SetValue(title)
		f.focusIdx = composeBody
	case composeEdit:
		f.postID = r.post.ID
		f.categoryID = r.post.Category.ID
		f.heading = "Edit post"
		f.title.SetValue(r.post.Title)
		f.body.SetValue(r.post.Text)
	default:
		f.heading = "New thread"
		if m.prefs.Category > 0 {
			f.categoryID = m.prefs.Category
		}
	}
	f.syncCategories(m.categories)
	m.compose = f
	m.switchView(ViewCompose)

	cmds := []tea.Cmd{m.compose.focus()}
	if mode == composeThread && len(m.categories) == 0 {
		cmds = append(cmds, m.listCategoriesCmd(0))
	}
	return m, tea.Batch(cmds...)
}

func threadTitle(m Model, threadID int64) string {
	for _, p := range m.snapshot.Posts {
		if p.ID == threadID {
			return p.Title
		}
	}
	return ""
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewPosts)
		m.setBanner("Discarded", bannerInfo)
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		return m, m.compose.move(1)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.compose.move(-1)

	case key.Matches(msg, m.keys.Submit):
		req := m.compose.request()
		m.compose.errors = validate.PostForm(req, m.compose.mode != composeThread)
		if len(m.compose.errors) > 0 {
			m.setBanner(m.compose.errors[0].Error(), bannerError)
			return m, nil
		}
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Saving"
		return m, m.savePostCmd(m.compose, req)
	}

	if m.compose.focusIdx == composeCategory {
		switch msg.String() {
		case "left", "h", "up", "k":
			m.compose.cycleCategory(-1)
		case "right", "l", "down", "j", " ":
			m.compose.cycleCategory(1)
		}
		return m, nil
	}
	return m, m.compose.update(msg)
}

func (m Model) handleCategoriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.category.active {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.category.close()
			return m, nil
		case key.Matches(msg, m.keys.Confirm, m.keys.Submit):
			name := m.category.name()
			if res := validate.TextLength(name, 1, 64); !res.Valid {
				m.category.err = res.InvalidFeedback
				return m, nil
			}
			m.category.err = ""
			m.busy = "Saving category"
			if m.category.editingID != 0 {
				return m, m.updateCategoryCmd(m.category.editingID, name)
			}
			return m, m.createCategoryCmd(name)
		}
		return m, m.category.update(msg)
	}

	info, paged := m.acts.Categories().PageInfo()
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.switchView(ViewPosts)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.catSelected = clamp(m.catSelected-1, 0, len(m.categories)-1)

	case key.Matches(msg, m.keys.Down):
		m.catSelected = clamp(m.catSelected+1, 0, len(m.categories)-1)

	case key.Matches(msg, m.keys.NextPage):
		if paged && info.HasNext() {
			m.catSelected = 0
			return m, m.listCategoriesCmd(info.PageNumber + 1)
		}

	case key.Matches(msg, m.keys.PrevPage):
		if paged && info.HasPrev() {
			m.catSelected = 0
			return m, m.listCategoriesCmd(info.PageNumber - 1)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.listCategoriesCmd(info.PageNumber)

	case key.Matches(msg, m.keys.AddCategory):
		if !m.isAdmin() {
			m.setBanner("Only administrators can add categories", bannerError)
			return m, nil
		}
		return m, m.category.open(0, "")

	case key.Matches(msg, m.keys.Edit):
		if !m.isAdmin() {
			m.setBanner("Only administrators can rename categories", bannerError)
			return m, nil
		}
		if m.catSelected < len(m.categories) {
			c := m.categories[m.catSelected]
			return m, m.category.open(c.ID, c.Name)
		}

	case key.Matches(msg, m.keys.Confirm):
		if m.catSelected >= len(m.categories) {
			return m, nil
		}
		m.prefs.Category = m.categories[m.catSelected].ID
		m.switchView(ViewPosts)
		m.busy = "Loading posts"
		return m, tea.Batch(m.listPostsCmd(0, m.prefs.Category), savePrefsCmd(m.prefsPath, m.prefs))
	}
	return m, nil
}
