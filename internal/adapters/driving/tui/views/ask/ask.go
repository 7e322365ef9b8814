// Package ask provides the upload and question view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoSession indicates that no session was provided.
var ErrNoSession = errors.New("session is required")

// Field identifies which input has focus.
type Field int

const (
	FieldPath Field = iota
	FieldQuestion
)

// View lets the user process a PDF and ask questions about it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	path      *input.Field
	question  *input.Field
	sources   *list.SourceList
	statusbar *status.Bar
	spinner   spinner.Model

	session driving.Session
	ctx     context.Context

	focus       Field
	answer      string
	notFound    bool
	showSources bool
	err         error

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, session driving.Session) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:      s,
		keymap:      km,
		path:        input.NewPathField(s),
		question:    input.NewQuestionField(s),
		sources:     list.NewSourceList(s),
		statusbar:   status.NewBar(s, km),
		spinner:     sp,
		session:     session,
		ctx:         context.Background(),
		showSources: true,
		width:       80,
		height:      24,
	}
	v.path.Focus()
	return v
}

// WithContext sets the context used for uploads and questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view, restoring the last answer from the session so
// that returning to the view never asks again.
func (v *View) Init() tea.Cmd {
	if v.session != nil {
		if file := v.session.CurrentFile(); file != "" && v.path.Value() == "" {
			v.path.SetValue(file)
		}
		if result := v.session.LastResult(); result != nil {
			v.setResult(result)
		}
	}
	return v.path.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.statusbar.Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.statusbar.SetSpinner(v.spinner.View())
		return v, cmd

	case messages.UploadCompleted:
		v.handleUploadCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case v.statusbar.Busy():
		// One operation at a time; keys other than esc wait.
		return v, nil

	case keymap.Matches(keyStr, v.keymap.SwitchField):
		if v.focus == FieldPath {
			v.setFocus(FieldQuestion)
		} else {
			v.setFocus(FieldPath)
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Submit):
		if v.focus == FieldPath {
			return v, v.submitUpload()
		}
		return v, v.submitQuestion()

	case keymap.Matches(keyStr, v.keymap.ToggleSources):
		v.showSources = !v.showSources
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Expand):
		v.sources.Toggle()
		return v, nil

	case msg.Type == tea.KeyUp:
		v.sources.MoveUp()
		return v, nil

	case msg.Type == tea.KeyDown:
		v.sources.MoveDown()
		return v, nil
	}

	var cmd tea.Cmd
	if v.focus == FieldPath {
		v.path, cmd = v.path.Update(msg)
	} else {
		v.question, cmd = v.question.Update(msg)
	}
	return v, cmd
}

func (v *View) setFocus(f Field) {
	v.focus = f
	if f == FieldPath {
		v.question.Blur()
		v.path.Focus()
		return
	}
	v.path.Blur()
	v.question.Focus()
}

// submitUpload processes the file in the path field.
func (v *View) submitUpload() tea.Cmd {
	if v.session == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoSession} }
	}

	path := strings.TrimSpace(v.path.Value())
	v.clearResult()
	v.statusbar.SetState(status.StateProcessing)
	v.statusbar.SetMessage("")

	session, ctx := v.session, v.ctx
	upload := func() tea.Msg {
		result, err := session.Upload(ctx, path)
		return messages.UploadCompleted{Path: path, Result: result, Err: err}
	}
	return tea.Batch(upload, v.spinner.Tick)
}

// submitQuestion answers the question field.
func (v *View) submitQuestion() tea.Cmd {
	if v.session == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoSession} }
	}

	question := v.question.Value()
	v.clearResult()
	v.statusbar.SetState(status.StateAnswering)
	v.statusbar.SetMessage("")

	session, ctx := v.session, v.ctx
	ask := func() tea.Msg {
		result, err := session.Ask(ctx, question)
		return messages.AnswerCompleted{Question: question, Result: result, Err: err}
	}
	return tea.Batch(ask, v.spinner.Tick)
}

func (v *View) handleUploadCompleted(msg messages.UploadCompleted) {
	v.statusbar.SetSpinner("")
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.statusbar.SetState(status.StateReady)
	switch {
	case msg.Result == nil || !msg.Result.Processed:
		v.statusbar.SetMessage("Document already processed")
	case msg.Result.Report != nil:
		v.statusbar.SetMessage(fmt.Sprintf("Document processed successfully (%d chunks)", msg.Result.Report.Chunks))
	default:
		v.statusbar.SetMessage("Document processed successfully")
	}
	v.setFocus(FieldQuestion)
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	v.statusbar.SetSpinner("")
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.setResult(msg.Result)
}

func (v *View) setResult(result *domain.AnswerResult) {
	v.answer = result.Answer
	v.notFound = result.IsNotFound()
	v.sources.SetSources(result.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessage("")
}

func (v *View) clearResult() {
	v.answer = ""
	v.notFound = false
	v.err = nil
	v.sources.SetSources(nil)
}

// setError shows err as a warning when the user can fix it and as an
// error otherwise.
func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetSpinner("")
	if domain.ClassifyError(err) == domain.ErrorClassInput {
		v.statusbar.SetState(status.StateWarning)
	} else {
		v.statusbar.SetState(status.StateError)
	}
	v.statusbar.SetMessage(domain.UserMessage(err))
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections,
		v.styles.Title.Render("docqa"),
		v.styles.Muted.Render("Ask questions about a PDF document"),
		"",
		v.path.View(),
		v.question.View(),
		"",
	)

	if v.answer != "" {
		sections = append(sections, v.styles.Subtitle.Render("Answer"))
		if v.notFound {
			sections = append(sections, v.styles.Warning.Render(v.wrap(v.answer)))
		} else {
			sections = append(sections, v.styles.Answer.Render(v.wrap(v.answer)))
		}
		sections = append(sections, "")
	}

	if v.showSources && v.sources.Count() > 0 {
		sections = append(sections, v.sources.View(), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) wrap(text string) string {
	return lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(text)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.path.SetWidth(width)
	v.question.SetWidth(width)
	v.sources.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset clears inputs and output and focuses the path field.
func (v *View) Reset() {
	v.path.Reset()
	v.question.Reset()
	v.clearResult()
	v.statusbar.Clear()
	v.setFocus(FieldPath)
}

// Focus returns the focused field.
func (v *View) Focus() Field {
	return v.focus
}

// Answer returns the displayed answer.
func (v *View) Answer() string {
	return v.answer
}

// Sources returns the displayed source chunks.
func (v *View) Sources() []domain.SourceView {
	return v.sources.Sources()
}

// SourcesVisible reports whether the source panel is shown.
func (v *View) SourcesVisible() bool {
	return v.showSources
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// SetPath sets the path field.
func (v *View) SetPath(path string) {
	v.path.SetValue(path)
}

// SetQuestion sets the question field.
func (v *View) SetQuestion(question string) {
	v.question.SetValue(question)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
