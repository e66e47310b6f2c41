package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RachelRYuan/Blogen/internal/blogen"
	"github.com/RachelRYuan/Blogen/internal/validate"
)

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

// focusOnly focuses inputs[idx] and blurs the rest.
func focusOnly(inputs []textinput.Model, idx int) tea.Cmd {
	var cmd tea.Cmd
	for i := range inputs {
		if i == idx {
			cmd = inputs[i].Focus()
			continue
		}
		inputs[i].Blur()
	}
	return cmd
}

// Login

type loginForm struct {
	fields   [2]textinput.Model // user name, password
	focusIdx int
}

func newLoginForm() loginForm {
	password := newInput("Password", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	return loginForm{fields: [2]textinput.Model{newInput("User name", 64), password}}
}

func (f *loginForm) focus() tea.Cmd {
	return focusOnly(f.fields[:], f.focusIdx)
}

func (f *loginForm) move(delta int) tea.Cmd {
	f.focusIdx = (f.focusIdx + delta + len(f.fields)) % len(f.fields)
	return f.focus()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focusIdx], cmd = f.fields[f.focusIdx].Update(msg)
	return cmd
}

// reset clears the password and prefills the user name.
func (f *loginForm) reset(username string) {
	f.fields[0].SetValue(username)
	f.fields[1].SetValue("")
	f.focusIdx = 0
	if username != "" {
		f.focusIdx = 1
	}
}

func (f loginForm) values() (string, string) {
	return strings.TrimSpace(f.fields[0].Value()), f.fields[1].Value()
}

// Signup

const (
	signupFirstName = iota
	signupLastName
	signupUserName
	signupEmail
	signupPassword
	signupFieldCount
)

var signupLabels = [signupFieldCount]string{"First name", "Last name", "User name", "Email", "Password"}

// signupFieldNames maps validate.FieldError.Field to an input index.
var signupFieldNames = map[string]int{
	"FirstName": signupFirstName,
	"LastName":  signupLastName,
	"UserName":  signupUserName,
	"Email":     signupEmail,
	"Password":  signupPassword,
}

type signupForm struct {
	fields      [signupFieldCount]textinput.Model
	focusIdx    int
	errors      [signupFieldCount]string
	userCheck   validate.Result
	checkedName string
}

func newSignupForm() signupForm {
	var f signupForm
	for i, label := range signupLabels {
		f.fields[i] = newInput(label, 128)
	}
	f.fields[signupPassword].EchoMode = textinput.EchoPassword
	f.fields[signupPassword].EchoCharacter = '•'
	return f
}

func (f *signupForm) focus() tea.Cmd {
	return focusOnly(f.fields[:], f.focusIdx)
}

func (f *signupForm) move(delta int) tea.Cmd {
	f.focusIdx = (f.focusIdx + delta + signupFieldCount) % signupFieldCount
	return f.focus()
}

func (f *signupForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focusIdx], cmd = f.fields[f.focusIdx].Update(msg)
	return cmd
}

func (f signupForm) userName() string {
	return strings.TrimSpace(f.fields[signupUserName].Value())
}

func (f signupForm) request() blogen.SignupRequest {
	return blogen.SignupRequest{
		FirstName: strings.TrimSpace(f.fields[signupFirstName].Value()),
		LastName:  strings.TrimSpace(f.fields[signupLastName].Value()),
		UserName:  f.userName(),
		Email:     strings.TrimSpace(f.fields[signupEmail].Value()),
		Password:  f.fields[signupPassword].Value(),
	}
}

// validate records per-field errors and reports whether the form may be
// submitted. A taken or unchecked user name blocks submission.
func (f *signupForm) validate() bool {
	f.errors = [signupFieldCount]string{}
	for _, fe := range validate.Signup(f.request()) {
		if idx, ok := signupFieldNames[fe.Field]; ok {
			f.errors[idx] = fe.Message
		}
	}
	if f.errors[signupUserName] == "" && f.checkedName == f.userName() && !f.userCheck.Valid {
		f.errors[signupUserName] = f.userCheck.InvalidFeedback
	}
	for _, e := range f.errors {
		if e != "" {
			return false
		}
	}
	return true
}

func (f *signupForm) applyUserNameCheck(msg userNameMsg) {
	if msg.name != f.userName() {
		return
	}
	f.checkedName = msg.name
	f.userCheck = msg.result
}

// Compose

type composeMode int

const (
	composeThread composeMode = iota
	composeReply
	composeEdit
)

const (
	composeTitle = iota
	composeBody
	composeCategory
)

type composeForm struct {
	mode       composeMode
	parentID   int64
	postID     int64
	heading    string
	title      textinput.Model
	body       textarea.Model
	categories []blogen.Category
	catIdx     int
	categoryID int64
	focusIdx   int
	errors     []validate.FieldError
}

func newComposeForm(mode composeMode, width, height int) composeForm {
	body := textarea.New()
	body.Placeholder = "Write your post (markdown)"
	body.ShowLineNumbers = false
	body.CharLimit = validate.DefaultMaxLength
	f := composeForm{
		mode:  mode,
		title: newInput("Title", validate.DefaultMaxLength),
		body:  body,
	}
	f.resize(width, height)
	return f
}

func (f *composeForm) resize(width, height int) {
	w := clamp(width-8, 20, 120)
	f.title.Width = w
	f.body.SetWidth(w)
	f.body.SetHeight(clamp(height-14, 3, 20))
}

func (f composeForm) fieldCount() int {
	if f.mode == composeThread {
		return 3
	}
	return 2
}

func (f *composeForm) focus() tea.Cmd {
	f.title.Blur()
	f.body.Blur()
	switch f.focusIdx {
	case composeTitle:
		return f.title.Focus()
	case composeBody:
		return f.body.Focus()
	}
	return nil
}

func (f *composeForm) move(delta int) tea.Cmd {
	n := f.fieldCount()
	f.focusIdx = (f.focusIdx + delta + n) % n
	return f.focus()
}

func (f *composeForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focusIdx {
	case composeTitle:
		f.title, cmd = f.title.Update(msg)
	case composeBody:
		f.body, cmd = f.body.Update(msg)
	}
	return cmd
}

// syncCategories refreshes the choices, keeping the current choice. Replies
// and edits keep the category they were opened with.
func (f *composeForm) syncCategories(cats []blogen.Category) {
	f.categories = cats
	f.catIdx = -1
	if f.mode != composeThread {
		return
	}
	for i, c := range cats {
		if c.ID == f.categoryID {
			f.catIdx = i
			return
		}
	}
	f.categoryID = 0
}

func (f *composeForm) cycleCategory(delta int) {
	if len(f.categories) == 0 {
		return
	}
	n := len(f.categories)
	if f.catIdx < 0 {
		f.catIdx = 0
	} else {
		f.catIdx = (f.catIdx + delta + n) % n
	}
	f.categoryID = f.categories[f.catIdx].ID
}

func (f composeForm) selectedCategory() (blogen.Category, bool) {
	if f.catIdx < 0 || f.catIdx >= len(f.categories) {
		return blogen.Category{}, false
	}
	return f.categories[f.catIdx], true
}

func (f composeForm) request() blogen.PostRequest {
	return blogen.PostRequest{
		Title:      strings.TrimSpace(f.title.Value()),
		Text:       strings.TrimSpace(f.body.Value()),
		CategoryID: f.categoryID,
	}
}

// Category

type categoryForm struct {
	active    bool
	editingID int64
	input     textinput.Model
	err       string
}

func newCategoryForm() categoryForm {
	return categoryForm{input: newInput("Category name", 64)}
}

func (f *categoryForm) open(id int64, name string) tea.Cmd {
	f.active = true
	f.editingID = id
	f.err = ""
	f.input.SetValue(name)
	f.input.CursorEnd()
	return f.input.Focus()
}

func (f *categoryForm) close() {
	f.active = false
	f.editingID = 0
	f.err = ""
	f.input.Blur()
	f.input.SetValue("")
}

func (f *categoryForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f categoryForm) name() string {
	return strings.TrimSpace(f.input.Value())
}
