package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/continuum/internal/formatter"
	"github.com/desertthunder/continuum/internal/models"
)

var (
	_ list.Item = mixItem{}
)

// mixItem wraps a [models.EnrichedTrack] in mix order to implement [list.Item].
type mixItem struct {
	pos   int
	track models.EnrichedTrack
}

func (i mixItem) FilterValue() string { return i.track.Line() }
func (i mixItem) Title() string       { return fmt.Sprintf("%d. %s", i.pos, i.track.Line()) }
func (i mixItem) Description() string {
	desc := fmt.Sprintf("%s • %.0f BPM", i.track.KeyName(), i.track.Tempo)
	if i.track.DurationMS > 0 {
		desc = fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(time.Duration(i.track.DurationMS)*time.Millisecond))
	}
	return desc
}

func mixItems(mix models.Mix) []list.Item {
	items := make([]list.Item, len(mix))
	for i, track := range mix {
		items[i] = mixItem{pos: i + 1, track: track}
	}
	return items
}
