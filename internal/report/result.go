package report

import (
	"encoding/json"

	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
)

// ResultLinePrefix marks a machine-readable result on the progress stream.
const ResultLinePrefix = "MOVIE_RESULT: "

// MovieResult is the wire shape of one resolved title. MagnetLink is null
// when no link was found.
type MovieResult struct {
	Title      string  `json:"title"`
	MagnetLink *string `json:"magnetLink"`
	Found      bool    `json:"found"`
	Status     string  `json:"status"`
	Error      string  `json:"error,omitempty"`
}

func FromFetchResult(result resolver.FetchResult) MovieResult {
	var link *string
	if result.Found && result.Identifier != "" {
		identifier := result.Identifier
		link = &identifier
	}
	return MovieResult{
		Title:      result.Title,
		MagnetLink: link,
		Found:      link != nil,
		Status:     string(result.Status),
		Error:      result.ErrorDetail,
	}
}

// ResultLine renders result as a single MOVIE_RESULT line without the trailing newline.
func ResultLine(result resolver.FetchResult) (string, error) {
	payload, err := json.Marshal(FromFetchResult(result))
	if err != nil {
		return "", err
	}
	return ResultLinePrefix + string(payload), nil
}
