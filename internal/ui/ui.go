package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/RachelRYuan/Blogen/internal/actions"
	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/logtail"
	"github.com/RachelRYuan/Blogen/internal/prefs"
	"github.com/RachelRYuan/Blogen/internal/session"
	"github.com/RachelRYuan/Blogen/internal/state"
	"github.com/RachelRYuan/Blogen/internal/validate"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewPosts
	ViewCompose
	ViewCategories
	ViewLogs
)

// Accounts is the unauthenticated part of the API used by the signup form.
type Accounts interface {
	validate.UserNameChecker
	Signup(ctx context.Context, req blogen.SignupRequest) (blogen.User, error)
}

var _ Accounts = (*blogen.Client)(nil)

// Options configures the UI.
type Options struct {
	Context        context.Context
	Actions        *actions.Actions
	Sessions       *session.Manager
	Accounts       Accounts
	Navigator      *Navigator
	Logger         *zap.Logger
	Prefs          prefs.Prefs
	PrefsPath      string
	LogPath        string
	RequestTimeout time.Duration
	// Banner is shown on the first screen, e.g. why a saved session was
	// not restored.
	Banner string
}

// Navigator turns status-driven redirects from the actions layer into
// messages for the running program. It is safe for concurrent use.
type Navigator struct {
	ch chan redirectMsg
}

// NewNavigator returns a Navigator with a small buffer.
func NewNavigator() *Navigator {
	return &Navigator{ch: make(chan redirectMsg, 8)}
}

// Redirect implements actions.Navigator. When the buffer is full the
// redirect is dropped; one pending redirect is enough to move the UI.
func (n *Navigator) Redirect(route actions.Route, message string) {
	select {
	case n.ch <- redirectMsg{route: route, message: message}:
	default:
	}
}

var _ actions.Navigator = (*Navigator)(nil)

func (n *Navigator) wait(ctx context.Context) tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-n.ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

type bannerKind int

const (
	bannerInfo bannerKind = iota
	bannerSuccess
	bannerError
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	acts      *actions.Actions
	sessions  *session.Manager
	accounts  Accounts
	nav       *Navigator
	logger    *zap.Logger
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	timeout   time.Duration
	keys      keyMap

	// UI state
	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool
	busy     string
	now      func() time.Time

	banner     string
	bannerKind bannerKind

	// Cached data
	snapshot   state.Snapshot
	categories []blogen.Category
	authors    map[int64]blogen.User

	// Posts view
	selected int
	// listing labels a search or user listing; empty means the category
	// filter is in effect.
	listing       string
	searching     bool
	searchInput   textinput.Model
	confirmDelete int64
	detail        viewport.Model

	// Categories view
	catSelected int

	// Logs view
	logEntries []logtail.Entry
	logView    viewport.Model

	// Forms
	login    loginForm
	signup   signupForm
	compose  composeForm
	category categoryForm
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	search := textinput.New()
	search.Placeholder = "Search posts..."
	search.CharLimit = 100

	m := Model{
		ctx:         ctx,
		acts:        opts.Actions,
		sessions:    opts.Sessions,
		accounts:    opts.Accounts,
		nav:         opts.Navigator,
		logger:      logger.With(zap.String("component", "ui")),
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		timeout:     timeout,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		view:        ViewLogin,
		now:         time.Now,
		authors:     make(map[int64]blogen.User),
		searchInput: search,
		detail:      viewport.New(0, 0),
		logView:     viewport.New(0, 0),
		login:       newLoginForm(),
		signup:      newSignupForm(),
		category:    newCategoryForm(),
	}
	if m.authenticated() {
		m.view = ViewPosts
	}
	if opts.Banner != "" {
		m.setBanner(opts.Banner, bannerInfo)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(DefaultUIInterval),
		m.nav.wait(m.ctx),
	}
	if m.view == ViewLogin {
		cmds = append(cmds, m.login.focus())
	} else {
		cmds = append(cmds, m.initialLoad()...)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		m.refreshFromCaches()
		return m, tickCmd(DefaultUIInterval)

	case redirectMsg:
		return m.handleRedirect(msg)

	case loginMsg:
		return m.handleLogin(msg)

	case logoutMsg:
		m.busy = ""
		m.resetCaches()
		m.switchView(ViewLogin)
		m.setBanner("Signed out", bannerInfo)
		return m, m.login.focus()

	case signupMsg:
		return m.handleSignup(msg)

	case userNameMsg:
		m.signup.applyUserNameCheck(msg)
		return m, nil

	case userNameDebounceMsg:
		return m, m.checkUserNameCmd(msg.name)

	case pageMsg:
		return m.handlePage(msg)

	case categoriesMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.refreshFromCaches()
		m.compose.syncCategories(m.categories)
		return m, nil

	case categorySavedMsg:
		return m.handleCategorySaved(msg)

	case postSavedMsg:
		return m.handlePostSaved(msg)

	case postDeletedMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setBanner("Post deleted", bannerSuccess)
		}
		m.refreshFromCaches()
		return m, nil

	case userInfoMsg:
		if msg.err == nil {
			m.authors[msg.id] = msg.user
			m.updateDetail()
		}
		return m, nil

	case logsMsg:
		m.busy = ""
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.logEntries = msg.entries
		m.updateLogView()
		m.logView.GotoBottom()
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.logger.Warn("save prefs failed", zap.Error(msg.err))
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

// updateInputs forwards non-key messages such as cursor blinks to the
// focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.searching:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.view == ViewLogin:
		cmd = m.login.update(msg)
	case m.view == ViewSignup:
		cmd = m.signup.update(msg)
	case m.view == ViewCompose:
		cmd = m.compose.update(msg)
	case m.view == ViewCategories && m.category.active:
		cmd = m.category.update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	switch m.view {
	case ViewLogin:
		body = m.renderLogin()
	case ViewSignup:
		body = m.renderSignup()
	case ViewCompose:
		body = m.renderCompose()
	case ViewCategories:
		body = m.renderCategories()
	case ViewLogs:
		body = m.renderLogs()
	default:
		body = m.renderPosts()
	}
	return fmt.Sprintf("%s\n%s\n%s", m.renderHeader(), body, m.renderFooter())
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Actions == nil || opts.Sessions == nil {
		return fmt.Errorf("ui requires actions and a session manager")
	}
	if opts.Context == nil {
		opts.Context = ctx
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) authenticated() bool {
	return m.sessions != nil && m.sessions.Session().IsAuthenticated()
}

func (m Model) currentUser() blogen.User {
	if m.sessions == nil {
		return blogen.User{}
	}
	return m.sessions.Session().User()
}

func (m Model) isAdmin() bool {
	return m.sessions != nil && m.sessions.Session().IsAdmin()
}

func (m *Model) setBanner(text string, kind bannerKind) {
	m.banner = text
	m.bannerKind = kind
}

func (m *Model) setError(err error) {
	m.setBanner(errorText(err), bannerError)
}

func (m *Model) switchView(v View) {
	m.view = v
	m.showHelp = false
	m.searching = false
	m.searchInput.Blur()
	m.confirmDelete = 0
}

// refreshFromCaches re-reads the shared caches. The refresher and
// in-flight commands write to them outside the Bubble Tea loop.
func (m *Model) refreshFromCaches() {
	if m.acts == nil {
		return
	}
	snap := m.acts.Posts().Snapshot()
	if snap.Version != m.snapshot.Version || snap.ConsecutiveFailures != m.snapshot.ConsecutiveFailures {
		m.snapshot = snap
		m.selected = clamp(m.selected, 0, len(flattenRows(snap.Posts))-1)
		m.updateDetail()
	}
	m.categories = m.acts.Categories().Categories()
}

func (m *Model) resetCaches() {
	m.snapshot = state.Snapshot{}
	m.selected = 0
	m.authors = make(map[int64]blogen.User)
}

func (m *Model) resize() {
	w, h := m.detailSize()
	m.detail.Width = w
	m.detail.Height = h
	m.compose.resize(m.width, m.height)
	m.logView.Width = clamp(m.width-4, 1, m.width)
	m.logView.Height = clamp(m.height-6, 1, m.height)
	m.updateDetail()
	m.updateLogView()
}

func (m Model) handleRedirect(msg redirectMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	cmds := []tea.Cmd{m.nav.wait(m.ctx)}
	if msg.route == actions.RouteLogin {
		m.switchView(ViewLogin)
		m.login.reset(m.currentUser().UserName)
		cmds = append(cmds, m.login.focus())
	}
	m.setBanner(msg.message, bannerError)
	return m, tea.Batch(cmds...)
}

func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.login.fields[1].SetValue("")
		if apiErr := blogen.AsAPIError(msg.err); apiErr != nil && apiErr.Code == 401 {
			m.setBanner("Invalid user name or password", bannerError)
		} else {
			m.setError(msg.err)
		}
		return m, nil
	}
	m.login.reset("")
	m.resetCaches()
	m.switchView(ViewPosts)
	m.setBanner("Welcome, "+m.currentUser().DisplayName(), bannerSuccess)
	return m, tea.Batch(m.initialLoad()...)
}

func (m Model) handleSignup(msg signupMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	name := msg.user.UserName
	m.signup = newSignupForm()
	m.switchView(ViewLogin)
	m.login.reset(name)
	m.setBanner("Account created, please log in", bannerSuccess)
	return m, m.login.focus()
}

func (m Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.listing = msg.label
	m.selected = 0
	m.detail.GotoTop()
	m.refreshFromCaches()
	m.updateDetail()
	return m, m.fetchAuthorCmd()
}

func (m Model) handlePostSaved(msg postSavedMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.refreshFromCaches()
	m.switchView(ViewPosts)
	switch msg.mode {
	case composeEdit:
		m.setBanner("Post updated", bannerSuccess)
	case composeReply:
		m.setBanner("Reply posted", bannerSuccess)
	default:
		m.setBanner("Thread posted", bannerSuccess)
	}
	m.selectPost(msg.post.ID)
	return m, nil
}

func (m Model) handleCategorySaved(msg categorySavedMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.category.close()
	m.refreshFromCaches()
	if msg.created {
		m.setBanner("Category "+msg.category.Name+" added", bannerSuccess)
		m.catSelected = len(m.categories) - 1
	} else {
		m.setBanner("Category renamed to "+msg.category.Name, bannerSuccess)
	}
	return m, nil
}

// initialLoad fetches the first page and the category list.
func (m *Model) initialLoad() []tea.Cmd {
	m.busy = "Loading posts"
	return []tea.Cmd{
		m.listPostsCmd(0, m.prefs.Category),
		m.listCategoriesCmd(0),
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	if apiErr := blogen.AsAPIError(err); apiErr != nil {
		return apiErr.Message
	}
	if blogen.IsTransport(err) {
		return "Cannot reach the Blogen server"
	}
	return err.Error()
}
