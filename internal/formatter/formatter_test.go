package formatter

import (
	"strings"
	"testing"

	"github.com/oferko1/toptracks/internal/models"
)

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func sampleResponse() *models.TopTracksResponse {
	return &models.TopTracksResponse{
		Artist:     models.Artist{Name: "Dua Lipa", ID: "a1"},
		Market:     "US",
		TrackCount: 2,
		Tracks: []models.Track{
			{Title: strptr("Levitating"), Artists: []string{"Dua Lipa", "DaBaby"}, Popularity: intptr(88)},
			{Title: nil, Artists: []string{}},
		},
	}
}

func TestText(t *testing.T) {
	out := Text(sampleResponse())

	for _, want := range []string{"Dua Lipa [US]", "2 tracks", "Levitating", "Dua Lipa, DaBaby", "(popularity 88)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}

	if !strings.Contains(out, "n/a") {
		t.Errorf("expected missing titles to render as n/a:\n%s", out)
	}
}

func TestTable(t *testing.T) {
	out := Table(sampleResponse())

	// styling may or may not emit escape codes depending on the terminal,
	// so only assert on content
	for _, want := range []string{"Dua Lipa", "2 tracks", "Levitating"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestTextEmpty(t *testing.T) {
	out := Text(&models.TopTracksResponse{
		Artist: models.Artist{Name: "Nobody", ID: "x"},
		Market: "GB",
		Tracks: []models.Track{},
	})

	if !strings.Contains(out, "0 tracks") {
		t.Errorf("expected a zero track count:\n%s", out)
	}
}
