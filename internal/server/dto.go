package server

import (
	"bytes"
	"encoding/json"

	"github.com/rohmanhakim/magnet-resolver/internal/report"
)

type singleRequest struct {
	MovieTitle string    `json:"movieTitle"`
	Year       yearField `json:"year,omitempty"`
	Quality    string    `json:"quality,omitempty"`
}

// yearField accepts a JSON number, a string, or null.
type yearField string

func (y *yearField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = yearField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = yearField(n.String())
	return nil
}

type singleResponse struct {
	MovieTitle string  `json:"movieTitle"`
	MagnetLink *string `json:"magnetLink"`
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Status     string  `json:"status"`
}

type listRequest struct {
	LetterboxdURL string `json:"letterboxdUrl"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Stream event types.
const (
	EventProgress   = "progress"
	EventMovieFound = "movie_found"
	EventComplete   = "complete"
	EventError      = "error"
)

type streamEvent struct {
	Type       string              `json:"type"`
	Current    int                 `json:"current,omitempty"`
	Total      int                 `json:"total,omitempty"`
	MovieTitle string              `json:"movieTitle,omitempty"`
	Phase      string              `json:"phase,omitempty"`
	Movie      *report.MovieResult `json:"movie,omitempty"`
	Summary    *batchTotals        `json:"summary,omitempty"`
	Message    string              `json:"message,omitempty"`
}

type batchTotals struct {
	RunID           string   `json:"runId"`
	Candidates      int      `json:"candidates"`
	Cached          int      `json:"cached"`
	Fetched         int      `json:"fetched"`
	Found           int      `json:"found"`
	Errors          int      `json:"errors"`
	Timeouts        int      `json:"timeouts"`
	NotAttempted    []string `json:"notAttempted"`
	DeadlineReached bool     `json:"deadlineReached"`
}
