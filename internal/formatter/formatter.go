// package formatter renders top-tracks lookups for terminal output
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/oferko1/toptracks/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// Table renders the response as a numbered, styled track listing.
func Table(resp *models.TopTracksResponse) string {
	var b strings.Builder

	header := fmt.Sprintf("%s  [%s]", resp.Artist.Name, resp.Market)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d tracks", resp.TrackCount)))
	b.WriteString("\n\n")

	for i, track := range resp.Tracks {
		b.WriteString(trackLine(i+1, track))
		b.WriteString("\n")
	}

	return b.String()
}

// Text renders the response without styling, for non-TTY output.
func Text(resp *models.TopTracksResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s [%s]\n", resp.Artist.Name, resp.Market)
	fmt.Fprintf(&b, "%d tracks\n\n", resp.TrackCount)

	for i, track := range resp.Tracks {
		b.WriteString(trackLine(i+1, track))
		b.WriteString("\n")
	}

	return b.String()
}

func trackLine(n int, track models.Track) string {
	title := orNA(track.Title)

	popularity := ""
	if track.Popularity != nil {
		popularity = fmt.Sprintf(" (popularity %d)", *track.Popularity)
	}

	artists := ""
	if len(track.Artists) > 0 {
		artists = " - " + strings.Join(track.Artists, ", ")
	}

	return fmt.Sprintf("%2d. %s%s%s", n, title, artists, popularity)
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "n/a"
	}
	return *s
}
