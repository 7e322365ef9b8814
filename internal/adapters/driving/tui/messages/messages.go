// Package messages holds the tea.Msg types passed between the TUI views.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ViewType names a screen of the TUI.
type ViewType int

// Screens. ViewAsk holds both the file input and the question input.
const (
	ViewMenu ViewType = iota
	ViewAsk
	ViewSettings
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:     "menu",
	ViewAsk:      "ask",
	ViewSettings: "settings",
	ViewHelp:     "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ViewChanged switches the active screen.
type ViewChanged struct {
	View ViewType
}

// UploadRequested asks for the file at Path to be processed.
type UploadRequested struct {
	Path string
}

// UploadCompleted carries the outcome of processing a file.
type UploadCompleted struct {
	Path   string
	Result *driving.UploadResult
	Err    error
}

// QuestionSubmitted asks for Question to be answered.
type QuestionSubmitted struct {
	Question string
}

// AnswerCompleted carries the outcome of answering a question.
type AnswerCompleted struct {
	Question string
	Result   *domain.AnswerResult
	Err      error
}

// ErrorOccurred reports an error not tied to a completed upload or answer.
type ErrorOccurred struct {
	Err error
}

// Quit exits the TUI.
type Quit struct{}

// SettingsLoaded carries the settings read for the settings view.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved reports the outcome of writing Key.
type SettingsSaved struct {
	Key string
	Err error
}
