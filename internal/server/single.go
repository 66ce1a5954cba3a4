package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rohmanhakim/magnet-resolver/internal/report"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/pkg/timeutil"
)

func (s *Server) handleSingle(w http.ResponseWriter, r *http.Request) {
	var req singleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	title := strings.TrimSpace(req.MovieTitle)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Movie title is required"})
		return
	}

	query := title
	if year := strings.TrimSpace(string(req.Year)); year != "" {
		query = title + " " + year
	}

	// the lookup outlives a disconnected client so joined callers still get the result
	resolveCtx := context.WithoutCancel(r.Context())
	result, err := timeutil.RunWithTimeout(r.Context(), s.singleTimeout, func() resolver.FetchResult {
		return s.single.Resolve(resolveCtx, query, req.Quality)
	})
	if err != nil {
		if errors.Is(err, timeutil.ErrTimedOut) {
			writeJSON(w, http.StatusRequestTimeout, errorResponse{Error: "Request timed out after " + s.singleTimeout.String()})
			return
		}
		s.logger.Debug().Err(err).Str("title", query).Msg("client went away")
		return
	}

	movie := report.FromFetchResult(result)
	writeJSON(w, http.StatusOK, singleResponse{
		MovieTitle: title,
		MagnetLink: movie.MagnetLink,
		Success:    movie.Found,
		Message:    singleMessage(result),
		Status:     movie.Status,
	})
}

func singleMessage(result resolver.FetchResult) string {
	switch {
	case result.Found:
		return "Magnet link found"
	case result.ErrorDetail != "":
		return result.ErrorDetail
	default:
		return "No magnet link found"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
