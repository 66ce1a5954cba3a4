package metadata

import (
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Page fetch timings and status codes
- Cache lookups (hit or miss) and their latency
- Per-item outcomes of a batch
- Terminal batch statistics

Metadata is write-only.
No component may read metadata to influence resolution decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		sizeByte int,
	)

	RecordCacheLookup(
		key string,
		hit bool,
		duration time.Duration,
	)

	RecordItemOutcome(
		title string,
		status string,
		duration time.Duration,
	)

	RecordArtifact(
		kind ArtifactKind,
		path string,
		attrs []Attribute,
	)
}

type BatchFinalizer interface {
	RecordFinalBatchStats(
		sourceUrl string,
		stats BatchStats,
		duration time.Duration,
	)
}

/*
Recorder writes structured events through zerolog.
Ordering guarantees:
- Events are written synchronously in the order they are received.
- Events from concurrent HTTP requests interleave; run_id tells them apart.
*/
type Recorder struct {
	logger zerolog.Logger
	runId  string
}

func NewRecorder(logger zerolog.Logger, runId string) Recorder {
	return Recorder{
		logger: logger.With().Str("run_id", runId).Logger(),
		runId:  runId,
	}
}

func (r *Recorder) RunId() string {
	return r.runId
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	event := r.logger.Warn().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", cause.String())
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	event.Msg(details)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	sizeByte int,
) {
	r.logger.Debug().
		Str(string(AttrURL), fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Int("size_byte", sizeByte).
		Msg("page fetched")
}

func (r *Recorder) RecordCacheLookup(
	key string,
	hit bool,
	duration time.Duration,
) {
	r.logger.Debug().
		Str(string(AttrCacheKey), key).
		Bool("hit", hit).
		Dur("duration", duration).
		Msg("cache lookup")
}

func (r *Recorder) RecordItemOutcome(
	title string,
	status string,
	duration time.Duration,
) {
	r.logger.Info().
		Str(string(AttrTitle), title).
		Str(string(AttrStatus), status).
		Dur("duration", duration).
		Msg("item resolved")
}

func (r *Recorder) RecordArtifact(
	kind ArtifactKind,
	path string,
	attrs []Attribute,
) {
	event := r.logger.Info().
		Str("kind", string(kind)).
		Str(string(AttrPath), path)
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	event.Msg("artifact written")
}

/*
RecordFinalBatchStats records the terminal summary of a list resolution.

Contract:
  - MUST be called exactly once per batch, after the fetch phase ended.
  - Recorded stats MUST NOT influence control flow.
*/
func (r *Recorder) RecordFinalBatchStats(
	sourceUrl string,
	stats BatchStats,
	duration time.Duration,
) {
	r.logger.Info().
		Str(string(AttrURL), sourceUrl).
		Int("candidates", stats.Candidates).
		Int("cached", stats.Cached).
		Int("fetched", stats.Fetched).
		Int("found", stats.Found).
		Int("errors", stats.Errors).
		Int("timeouts", stats.Timeouts).
		Int("not_attempted", stats.NotAttempted).
		Dur("duration", duration).
		Msg("batch finished")
}

// NoopSink, struct that implements MetadataSink and BatchFinalizer but does nothing
// Tests can decide whether to inject Recorder or NoopSink

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, sizeByte int) {
}

func (n *NoopSink) RecordCacheLookup(key string, hit bool, duration time.Duration) {}

func (n *NoopSink) RecordItemOutcome(title string, status string, duration time.Duration) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalBatchStats(sourceUrl string, stats BatchStats, duration time.Duration) {
}
