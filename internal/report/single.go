package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
)

var (
	foundColor   = color.New(color.FgGreen)
	missingColor = color.New(color.FgYellow)
	failedColor  = color.New(color.FgRed, color.Bold)
	cachedColor  = color.New(color.FgHiBlack)
)

// WriteSingle prints the outcome of a single-query lookup on one line.
func WriteSingle(w io.Writer, result resolver.FetchResult) error {
	var err error
	switch {
	case result.Status == resolver.StatusError:
		_, err = failedColor.Fprintf(w, "🔥 Error for %s: %s", result.Title, result.ErrorDetail)
	case result.Status == resolver.StatusTimeout:
		_, err = failedColor.Fprintf(w, "⏰ Timeout for %s (%s)", result.Title, result.ErrorDetail)
	case result.Found:
		_, err = fmt.Fprintf(w, "%s → %s", result.Title, foundColor.Sprint(result.Identifier))
	default:
		_, err = missingColor.Fprintf(w, "❌ No magnet found for: %s", result.Title)
	}
	if err != nil {
		return err
	}
	if result.Status == resolver.StatusCached {
		if _, err := cachedColor.Fprint(w, " (cached)"); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}
