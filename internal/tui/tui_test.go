package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/sped-tables/internal/config"
	"github.com/handiism/sped-tables/internal/download"
)

func TestLogBuffer(t *testing.T) {
	b := &logBuffer{}
	for i := 0; i < 15; i++ {
		b.add(download.ProgressEvent{Message: fmt.Sprint(i), Level: download.LevelInfo})
	}
	b.add(download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose})

	got := b.snapshot()
	if len(got) != 10 {
		t.Fatalf("kept %d entries, want 10", len(got))
	}
	if got[0].Message != "5" || got[9].Message != "14" {
		t.Errorf("entries = %v, want 5..14", got)
	}

	b.verbose = true
	b.add(download.ProgressEvent{Message: "shown", Level: download.LevelVerbose})
	if got := b.snapshot(); got[len(got)-1].Message != "shown" {
		t.Errorf("verbose event not kept: %v", got)
	}
}

func TestModel_EnterWithoutVariants(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Variants = nil
	m := NewModel(settings)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if updated.(Model).state != StateInput {
		t.Errorf("state = %v, want StateInput", updated.(Model).state)
	}
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	updated, _ = updated.(Model).Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	got := updated.(Model)

	if !got.abortOnError {
		t.Error("ctrl+a should enable abort on error")
	}
	if !got.verbose {
		t.Error("ctrl+v should enable verbose output")
	}
}

func TestModel_ViewInput(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	if v := m.View(); v == "" {
		t.Error("empty view")
	}
	if m.textInput.Value() != "SpedFiscal, SpedPisCofins, SpedContabil, SpedEcf" {
		t.Errorf("input = %q", m.textInput.Value())
	}
}
