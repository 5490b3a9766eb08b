// package models defines the client-facing response shapes for the top-tracks
// service and the normalization from upstream catalog records onto them.
package models

import "github.com/oferko1/toptracks/internal/catalog"

// Artist identifies the resolved artist in a successful response.
type Artist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Track is the stable projection of an upstream track record. Optional fields
// are pointers so missing upstream values render as explicit nulls rather
// than being omitted.
type Track struct {
	Title       *string  `json:"title"`
	ID          *string  `json:"id"`
	Artists     []string `json:"artists"`
	PreviewURL  *string  `json:"preview_url"`
	Popularity  *int     `json:"popularity"`
	ExternalURL *string  `json:"external_url"`
}

// TopTracksResponse is the success body for /top-tracks.
type TopTracksResponse struct {
	Artist     Artist  `json:"artist"`
	Market     string  `json:"market"`
	TrackCount int     `json:"trackCount"`
	Tracks     []Track `json:"tracks"`
}

// ErrorEnvelope is the failure body for every error path. Status and Details
// are populated only for upstream failures and unexpected errors.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

// NormalizeTrack projects a raw catalog track onto the stable response shape.
// Total: absent upstream fields become nulls, contributing artist names keep
// their upstream order, and the artists list is empty rather than null when
// none are listed.
func NormalizeTrack(raw catalog.Track) Track {
	artists := make([]string, len(raw.Artists))
	for i, a := range raw.Artists {
		artists[i] = a.Name
	}

	track := Track{
		Title:      raw.Name,
		ID:         raw.ID,
		Artists:    artists,
		PreviewURL: raw.PreviewURL,
		Popularity: raw.Popularity,
	}

	if u, ok := raw.ExternalURLs["spotify"]; ok {
		track.ExternalURL = &u
	}

	return track
}

// NormalizeTracks maps a track listing in order.
func NormalizeTracks(raw []catalog.Track) []Track {
	tracks := make([]Track, len(raw))
	for i, t := range raw {
		tracks[i] = NormalizeTrack(t)
	}
	return tracks
}
