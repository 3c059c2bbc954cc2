// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for library migration:
//  1. [ArtistListView] : Browse the extracted artists and toggle which to migrate
//  2. [ConfirmView] : Review the selection and monitoring policy
//  3. [MigrateView] : Monitor real-time progress updates
//  4. [ResultView] : Display per-artist outcomes and run totals
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the MigrationEngine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
