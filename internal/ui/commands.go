package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RachelRYuan/Blogen/internal/actions"
	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/logtail"
	"github.com/RachelRYuan/Blogen/internal/prefs"
	"github.com/RachelRYuan/Blogen/internal/validate"
)

// Messages

type tickMsg time.Time

type redirectMsg struct {
	route   actions.Route
	message string
}

type loginMsg struct{ err error }

type logoutMsg struct{}

type signupMsg struct {
	user blogen.User
	err  error
}

type userNameDebounceMsg struct{ name string }

type userNameMsg struct {
	name   string
	result validate.Result
}

type pageMsg struct {
	label string
	err   error
}

type categoriesMsg struct{ err error }

type categorySavedMsg struct {
	category blogen.Category
	created  bool
	err      error
}

type postSavedMsg struct {
	mode composeMode
	post blogen.Post
	err  error
}

type postDeletedMsg struct {
	id  int64
	err error
}

type userInfoMsg struct {
	id   int64
	user blogen.User
	err  error
}

type prefsSavedMsg struct{ err error }

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// call runs fn with a per-request deadline derived from the model context.
func (m Model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	parent, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	sessions := m.sessions
	return m.call(func(ctx context.Context) tea.Msg {
		_, err := sessions.Login(ctx, username, password)
		return loginMsg{err: err}
	})
}

func (m Model) logoutCmd() tea.Cmd {
	sessions := m.sessions
	return m.call(func(ctx context.Context) tea.Msg {
		sessions.Logout(ctx)
		return logoutMsg{}
	})
}

func (m Model) signupCmd(req blogen.SignupRequest) tea.Cmd {
	accounts := m.accounts
	return m.call(func(ctx context.Context) tea.Msg {
		if accounts == nil {
			return signupMsg{err: fmt.Errorf("signup is not available")}
		}
		user, err := accounts.Signup(ctx, req)
		return signupMsg{user: user, err: err}
	})
}

// debounceUserNameCmd waits before checking so typing does not send a
// request per keystroke.
func debounceUserNameCmd(name string) tea.Cmd {
	return tea.Tick(UserNameCheckDelay, func(time.Time) tea.Msg {
		return userNameDebounceMsg{name: name}
	})
}

func (m Model) checkUserNameCmd(name string) tea.Cmd {
	if m.accounts == nil || name != strings.TrimSpace(m.signup.fields[signupUserName].Value()) {
		return nil
	}
	accounts := m.accounts
	return m.call(func(ctx context.Context) tea.Msg {
		return userNameMsg{name: name, result: validate.CheckUserName(ctx, accounts, name)}
	})
}

func (m Model) listPostsCmd(page int, categoryID int64) tea.Cmd {
	acts := m.acts
	return m.call(func(ctx context.Context) tea.Msg {
		return pageMsg{err: acts.ListPosts(ctx, page, categoryID)}
	})
}

func (m Model) listUserPostsCmd(user blogen.User) tea.Cmd {
	acts := m.acts
	label := "Posts by " + user.UserName
	return m.call(func(ctx context.Context) tea.Msg {
		return pageMsg{label: label, err: acts.ListPostsByUser(ctx, user.ID, 0, blogen.AllCategories)}
	})
}

func (m Model) searchPostsCmd(text string) tea.Cmd {
	acts := m.acts
	label := fmt.Sprintf("Search: %q", text)
	return m.call(func(ctx context.Context) tea.Msg {
		return pageMsg{label: label, err: acts.SearchPosts(ctx, text, searchLimit)}
	})
}

func (m Model) goToPageCmd(page int) tea.Cmd {
	acts, label := m.acts, m.listing
	return m.call(func(ctx context.Context) tea.Msg {
		return pageMsg{label: label, err: acts.GoToPage(ctx, page)}
	})
}

func (m Model) refreshCmd() tea.Cmd {
	acts, label := m.acts, m.listing
	return m.call(func(ctx context.Context) tea.Msg {
		return pageMsg{label: label, err: acts.Refresh(ctx)}
	})
}

func (m Model) listCategoriesCmd(page int) tea.Cmd {
	acts := m.acts
	return m.call(func(ctx context.Context) tea.Msg {
		return categoriesMsg{err: acts.ListCategories(ctx, page)}
	})
}

func (m Model) createCategoryCmd(name string) tea.Cmd {
	acts := m.acts
	return m.call(func(ctx context.Context) tea.Msg {
		cat, err := acts.CreateCategory(ctx, name)
		return categorySavedMsg{category: cat, created: true, err: err}
	})
}

func (m Model) updateCategoryCmd(id int64, name string) tea.Cmd {
	acts := m.acts
	return m.call(func(ctx context.Context) tea.Msg {
		cat, err := acts.UpdateCategory(ctx, id, name)
		return categorySavedMsg{category: cat, err: err}
	})
}

func (m Model) savePostCmd(form composeForm, req blogen.PostRequest) tea.Cmd {
	acts := m.acts
	mode, parentID, postID := form.mode, form.parentID, form.postID
	return m.call(func(ctx context.Context) tea.Msg {
		var (
			post blogen.Post
			err  error
		)
		switch mode {
		case composeEdit:
			post, err = acts.UpdatePost(ctx, postID, req)
		case composeReply:
			post, err = acts.CreatePost(ctx, parentID, req)
		default:
			post, err = acts.CreatePost(ctx, 0, req)
		}
		return postSavedMsg{mode: mode, post: post, err: err}
	})
}

func (m Model) deletePostCmd(id int64) tea.Cmd {
	acts := m.acts
	return m.call(func(ctx context.Context) tea.Msg {
		return postDeletedMsg{id: id, err: acts.DeletePost(ctx, id)}
	})
}

// fetchAuthorCmd loads the profile of the selected post's author when it is
// not known yet.
func (m Model) fetchAuthorCmd() tea.Cmd {
	post, ok := m.selectedPost()
	if !ok || post.User.ID == 0 {
		return nil
	}
	if _, known := m.authors[post.User.ID]; known {
		return nil
	}
	acts, id := m.acts, post.User.ID
	return m.call(func(ctx context.Context) tea.Msg {
		user, err := acts.FetchUserInfo(ctx, id)
		return userInfoMsg{id: id, user: user, err: err}
	})
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Read(path, logTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

func savePrefsCmd(path string, p prefs.Prefs) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}
