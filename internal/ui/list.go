package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lidify/internal/services"
)

var _ list.Item = artistItem{}

// artistItem wraps [services.SourceArtist] to implement [list.Item],
// carrying its selection state for rendering.
type artistItem struct {
	artist   services.SourceArtist
	selected bool
}

func (i artistItem) FilterValue() string { return i.artist.Name }

func (i artistItem) Title() string {
	if i.selected {
		return fmt.Sprintf("[x] %s", i.artist.Name)
	}
	return fmt.Sprintf("[ ] %s", i.artist.Name)
}

func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return "no genres"
	}
	return strings.Join(i.artist.Genres, ", ")
}
