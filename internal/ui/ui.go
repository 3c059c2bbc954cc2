package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lidify/internal/services"
	"github.com/desertthunder/lidify/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ArtistListView ViewState = iota
	ConfirmView
	MigrateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.MigrationEngine
	cfg    tasks.RunConfig
	width  int
	height int

	artists    []services.SourceArtist
	albums     []services.SourceAlbum
	selected   map[string]bool
	artistList list.Model

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.MigrationResult
	err          error

	help help.Model
	keys keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type migrationCompleteMsg struct {
	result *tasks.MigrationResult
	err    error
}

// NewModel creates a new TUI model over an extracted library snapshot.
func NewModel(ctx context.Context, engine *tasks.MigrationEngine, cfg tasks.RunConfig, artists []services.SourceArtist, albums []services.SourceAlbum) *Model {
	selected := make(map[string]bool, len(artists))
	for _, a := range artists {
		selected[a.ID] = true
	}

	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{artist: a, selected: true}
	}
	artistList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	artistList.Title = "Followed Artists"

	return &Model{
		ctx:        ctx,
		view:       ArtistListView,
		engine:     engine,
		cfg:        cfg,
		artists:    artists,
		albums:     albums,
		selected:   selected,
		artistList: artistList,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.artistList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ArtistListView:
			return m.handleArtistListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case migrationCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ArtistListView:
		return m.renderArtistList()
	case ConfirmView:
		return m.renderConfirm()
	case MigrateView:
		return m.renderMigrate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleArtistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.artistList.SelectedItem().(artistItem); ok {
			m.selected[item.artist.ID] = !m.selected[item.artist.ID]
			m.syncListItems()
		}
		return m, nil
	case key.Matches(msg, m.keys.all):
		// Flip everything off if everything is on, otherwise select all
		allOn := true
		for _, a := range m.artists {
			if !m.selected[a.ID] {
				allOn = false
				break
			}
		}
		for _, a := range m.artists {
			m.selected[a.ID] = !allOn
		}
		m.syncListItems()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.selectedCount() > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.artistList, cmd = m.artistList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = ArtistListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = MigrateView
		return m, m.startMigration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ArtistListView
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == ArtistListView {
		m.artistList, cmd = m.artistList.Update(msg)
	}
	return m, cmd
}

// syncListItems rebuilds the list items so selection markers render.
func (m *Model) syncListItems() {
	items := make([]list.Item, len(m.artists))
	for i, a := range m.artists {
		items[i] = artistItem{artist: a, selected: m.selected[a.ID]}
	}
	m.artistList.SetItems(items)
}

func (m *Model) selectedCount() int {
	count := 0
	for _, on := range m.selected {
		if on {
			count++
		}
	}
	return count
}

func (m *Model) selectedArtists() []services.SourceArtist {
	var out []services.SourceArtist
	for _, a := range m.artists {
		if m.selected[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

func (m *Model) startMigration() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan
	artists := m.selectedArtists()

	go func() {
		result, err := m.engine.Run(m.ctx, progressChan, artists, m.albums, m.cfg)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return migrationCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return migrationCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderArtistList() string {
	header := styles.title.Render(fmt.Sprintf("Select artists to migrate (%d/%d)", m.selectedCount(), len(m.artists)))
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", header, m.artistList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Migrate %d artists to Lidarr?", m.selectedCount()))
	info := fmt.Sprintf("\nMonitor policy: %s\nRoot folder: %s\n", m.cfg.Policy, m.cfg.RootFolderPath)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderMigrate() string {
	title := styles.title.Render("Migrating Library")

	var phase string
	switch m.progress.Phase {
	case tasks.Preflight:
		phase = "Checking Lidarr configuration..."
	case tasks.ResolveArtist:
		phase = fmt.Sprintf("Resolving artists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.MonitorAlbums:
		phase = "Waiting for albums..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Migration failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Migration Complete")
	info := fmt.Sprintf(
		"\nAdded: %d\nAlready present: %d\nFailed: %d\nSkipped: %d",
		m.result.Added, m.result.Exists, m.result.Failed, m.result.Skipped,
	)

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render("Failed artists:"))
		for _, outcome := range m.result.Outcomes {
			if outcome.Status == tasks.StatusFailed {
				failed += fmt.Sprintf("\n  • %s: %s", outcome.Artist, outcome.Message)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
