// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoSettingsService indicates the view was built without a settings service.
var ErrNoSettingsService = errors.New("settings service not available")

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionChain
	SectionEmbedding
	SectionLLM
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"

	keyChain = "llm.chain"
)

// overviewItems is the number of editable rows in the overview.
const overviewItems = 3

var chainTypes = []domain.ChainType{domain.ChainStuff, domain.ChainChat}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error

	section      Section
	selected     int // selection within current section
	focusedField int // 1 when the API key input has focus

	embeddingAPIKeyInput textinput.Model
	llmAPIKeyInput       textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:               s,
		settingsService:      settingsService,
		section:              SectionOverview,
		embeddingAPIKeyInput: newAPIKeyInput(),
		llmAPIKeyInput:       newAPIKeyInput(),
	}
}

func newAPIKeyInput() textinput.Model {
	in := textinput.New()
	in.Placeholder = "Enter API key"
	in.EchoMode = textinput.EchoPassword
	in.CharLimit = 256
	return in
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: ErrNoSettingsService}
		}
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.backToOverview()
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.backToOverview()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionChain:
		return v.handleChainKeys(msg)
	case SectionEmbedding:
		return v.handleProviderKeys(msg, domain.AllEmbeddingProviders(), &v.embeddingAPIKeyInput, v.setEmbeddingProvider)
	case SectionLLM:
		return v.handleProviderKeys(msg, domain.AllLLMProviders(), &v.llmAPIKeyInput, v.setLLMProvider)
	}

	return v, nil
}

// moveCursor handles up/down within a list of n rows and reports whether
// msg was a movement key.
func (v *View) moveCursor(msg tea.KeyMsg, n int) bool {
	switch msg.String() {
	case "up", "k":
		v.selected = max(v.selected-1, 0)
	case keyDown, "j":
		v.selected = min(v.selected+1, n-1)
	default:
		return false
	}
	return true
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.moveCursor(msg, overviewItems) {
		return v, nil
	}
	switch msg.String() {
	case keyEnter:
		if v.settings == nil {
			return v, nil
		}
		switch v.selected {
		case 0:
			v.section = SectionEmbedding
			v.selected = indexOf(domain.AllEmbeddingProviders(), v.settings.Embedding.Provider)
		case 1:
			v.section = SectionLLM
			v.selected = indexOf(domain.AllLLMProviders(), v.settings.LLM.Provider)
		case 2:
			v.section = SectionChain
			v.selected = indexOf(chainTypes, v.settings.LLM.Chain)
		}
	}
	return v, nil
}

func (v *View) handleChainKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == keyEnter {
		return v, v.setChain(chainTypes[v.selected])
	}
	v.moveCursor(msg, len(chainTypes))
	return v, nil
}

// handleProviderKeys drives both provider lists. Providers that need an API
// key move focus to the key input before saving.
func (v *View) handleProviderKeys(
	msg tea.KeyMsg,
	providers []domain.AIProvider,
	apiKey *textinput.Model,
	save func(domain.AIProvider, string) tea.Cmd,
) (*View, tea.Cmd) {
	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			apiKey.Blur()
			return v, nil
		case keyEnter:
			return v, save(providers[v.selected], apiKey.Value())
		default:
			var cmd tea.Cmd
			*apiKey, cmd = apiKey.Update(msg)
			return v, cmd
		}
	}

	if v.moveCursor(msg, len(providers)) {
		return v, nil
	}
	switch msg.String() {
	case keyTab:
		if providers[v.selected].RequiresAPIKey() {
			v.focusedField = 1
			return v, apiKey.Focus()
		}
	case keyEnter:
		provider := providers[v.selected]
		if provider.RequiresAPIKey() {
			v.focusedField = 1
			return v, apiKey.Focus()
		}
		return v, save(provider, "")
	}
	return v, nil
}

func (v *View) setChain(chain domain.ChainType) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: keyChain, Err: ErrNoSettingsService}
		}
		return messages.SettingsSaved{Key: keyChain, Err: svc.Set(keyChain, string(chain))}
	}
}

func (v *View) setEmbeddingProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: "embedding.provider", Err: ErrNoSettingsService}
		}
		model := domain.DefaultEmbeddingModels()[provider]
		return messages.SettingsSaved{Key: "embedding.provider", Err: svc.SetEmbeddingProvider(provider, model, apiKey)}
	}
}

func (v *View) setLLMProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Key: "llm.provider", Err: ErrNoSettingsService}
		}
		model := domain.DefaultLLMModels()[provider]
		return messages.SettingsSaved{Key: "llm.provider", Err: svc.SetLLMProvider(provider, model, apiKey)}
	}
}

func (v *View) backToOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.embeddingAPIKeyInput.SetValue("")
	v.embeddingAPIKeyInput.Blur()
	v.llmAPIKeyInput.SetValue("")
	v.llmAPIKeyInput.Blur()
}

func indexOf[T comparable](items []T, want T) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionChain:
		b.WriteString(v.renderChainSelect())
	case SectionEmbedding:
		b.WriteString(v.renderProviderSelect("Select Embedding Provider", domain.AllEmbeddingProviders(),
			v.settings.Embedding.Provider, domain.DefaultEmbeddingModels(), v.embeddingAPIKeyInput))
	case SectionLLM:
		b.WriteString(v.renderProviderSelect("Select LLM Provider", domain.AllLLMProviders(),
			v.settings.LLM.Provider, domain.DefaultLLMModels(), v.llmAPIKeyInput))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder
	s := v.settings

	items := []struct {
		label  string
		value  string
		status string
	}{
		{
			label:  "Embedding Provider",
			value:  fmt.Sprintf("%s (%s)", s.Embedding.Provider.Description(), s.Embedding.Model),
			status: v.configuredStatus(s.Embedding.IsConfigured()),
		},
		{
			label:  "LLM Provider",
			value:  fmt.Sprintf("%s (%s)", s.LLM.Provider.Description(), s.LLM.Model),
			status: v.configuredStatus(s.LLM.IsConfigured()),
		},
		{
			label: "Answer Chain",
			value: string(s.LLM.Chain),
		},
	}

	for i, item := range items {
		text := item.label + ": " + item.value
		if item.status != "" {
			text += " " + item.status
		}
		b.WriteString(v.row(i == v.selected, text))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf(
		"Retrieval: k=%d  Chunking: %d/%d  Vector store: %s",
		s.Retrieval.K, s.Chunking.Size, s.Chunking.Overlap, s.VectorStore.Backend)))
	b.WriteString("\n\n")

	if v.settingsService != nil {
		if err := v.settingsService.Validate(); err != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
		} else {
			b.WriteString(v.styles.Success.Render("Configuration is valid"))
		}
	}

	return b.String()
}

// row renders one list line with the cursor marker when selected.
func (v *View) row(selected bool, text string) string {
	if selected {
		return v.styles.Selected.Render("> "+text) + "\n"
	}
	return v.styles.Normal.Render("  "+text) + "\n"
}

func (v *View) currentMarker(current bool) string {
	if !current {
		return ""
	}
	return v.styles.Success.Render(" (current)")
}

func (v *View) configuredStatus(ok bool) string {
	if ok {
		return v.styles.Success.Render("[configured]")
	}
	return v.styles.Warning.Render("[needs API key]")
}

func (v *View) renderChainSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select Answer Chain"))
	b.WriteString("\n\n")

	descriptions := map[domain.ChainType]string{
		domain.ChainStuff: "One prompt with the context stuffed in",
		domain.ChainChat:  "System instructions plus a user question",
	}

	for i, chain := range chainTypes {
		b.WriteString(v.row(i == v.selected, string(chain)+v.currentMarker(chain == v.settings.LLM.Chain)))
		b.WriteString(v.styles.Muted.Render("    "+descriptions[chain]) + "\n")
	}

	return b.String()
}

func (v *View) renderProviderSelect(
	title string,
	providers []domain.AIProvider,
	current domain.AIProvider,
	models map[domain.AIProvider]string,
	apiKey textinput.Model,
) string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")

	for i, provider := range providers {
		selected := i == v.selected && v.focusedField == 0
		b.WriteString(v.row(selected, provider.Description()+v.currentMarker(provider == current)))
		if model, ok := models[provider]; ok {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", model)))
			b.WriteString("\n")
		}
	}

	if providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(apiKey.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [esc] back")
	case SectionChain:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] back")
	case SectionEmbedding, SectionLLM:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Selected returns the selection within the active section.
func (v *View) Selected() int {
	return v.selected
}

// Settings returns the loaded settings, or nil.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the last load or save error.
func (v *View) Err() error {
	return v.err
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.backToOverview()
	v.err = nil
}
