package magnetcache

import (
	"encoding/json"
	"time"
)

// CacheEntry is the outcome of one fetch attempt that reached the source.
// An empty Identifier is a confirmed "not found".
type CacheEntry struct {
	Query      string
	Identifier string
	SearchURL  string
	FetchedAt  time.Time
}

func (e CacheEntry) Found() bool {
	return e.Identifier != ""
}

// entryDTO is the stored form. Field names match records written by
// earlier tooling, which lack fetched_at.
type entryDTO struct {
	MovieName  string     `json:"movie_name"`
	MagnetLink *string    `json:"magnet_link"`
	SearchURL  string     `json:"search_url,omitempty"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
}

func encodeEntry(entry CacheEntry) ([]byte, error) {
	dto := entryDTO{
		MovieName: entry.Query,
		SearchURL: entry.SearchURL,
	}
	if entry.Identifier != "" {
		link := entry.Identifier
		dto.MagnetLink = &link
	}
	if !entry.FetchedAt.IsZero() {
		fetchedAt := entry.FetchedAt.UTC()
		dto.FetchedAt = &fetchedAt
	}
	return json.Marshal(dto)
}

func decodeEntry(raw []byte) (CacheEntry, error) {
	var dto entryDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return CacheEntry{}, err
	}
	entry := CacheEntry{
		Query:     dto.MovieName,
		SearchURL: dto.SearchURL,
	}
	if dto.MagnetLink != nil {
		entry.Identifier = *dto.MagnetLink
	}
	if dto.FetchedAt != nil {
		entry.FetchedAt = *dto.FetchedAt
	}
	return entry, nil
}
