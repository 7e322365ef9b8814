package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewAsk, "ask"},
		{ViewSettings, "settings"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Values(t *testing.T) {
	assert.Equal(t, ViewType(0), ViewMenu, "menu is the zero value")
	assert.NotEqual(t, ViewAsk, ViewSettings)
}

func TestUploadCompleted(t *testing.T) {
	msg := UploadCompleted{
		Path:   "/tmp/a.pdf",
		Result: &driving.UploadResult{Processed: true, Report: &domain.IngestReport{Chunks: 3}},
	}

	assert.Equal(t, "/tmp/a.pdf", msg.Path)
	assert.True(t, msg.Result.Processed)
	assert.Equal(t, 3, msg.Result.Report.Chunks)
	assert.NoError(t, msg.Err)
}

func TestAnswerCompleted(t *testing.T) {
	err := errors.New("boom")
	msg := AnswerCompleted{Question: "q", Err: err}

	assert.Nil(t, msg.Result)
	assert.ErrorIs(t, msg.Err, err)

	found := AnswerCompleted{Question: "q", Result: domain.NotFoundResult()}
	assert.True(t, found.Result.IsNotFound())
}

func TestSettingsMessages(t *testing.T) {
	settings := domain.DefaultAppSettings()
	loaded := SettingsLoaded{Settings: &settings}
	assert.Equal(t, domain.DefaultRetrievalK, loaded.Settings.Retrieval.K)

	saved := SettingsSaved{Key: "retrieval.k"}
	assert.Equal(t, "retrieval.k", saved.Key)
	assert.NoError(t, saved.Err)
}
