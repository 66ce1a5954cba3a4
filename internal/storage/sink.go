package storage

import (
	"errors"
	"net/url"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"github.com/rohmanhakim/magnet-resolver/pkg/fileutil"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
	"github.com/rohmanhakim/magnet-resolver/pkg/urlutil"
)

/*
Responsibilities
- Persist one report per batch as Markdown and HTML
- Ensure deterministic filenames

Output Characteristics
- Stable directory layout: <outputDir>/<hash12(canonical source url)>.{md,html}
- Idempotent writes
- Overwrite-safe reruns
*/

type Sink interface {
	Write(
		outputDir string,
		summary orchestrator.BatchSummary,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
	now          func() time.Time
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
		now:          time.Now,
	}
}

// WithClock fixes the report timestamp.
func (s LocalSink) WithClock(now func() time.Time) LocalSink {
	s.now = now
	return s
}

func (s *LocalSink) Write(
	outputDir string,
	summary orchestrator.BatchSummary,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, storageError := write(outputDir, summary, hashAlgo, s.now())
	if storageError != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			storageError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, summary.SourceURL),
				metadata.NewAttr(metadata.AttrPath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}

	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, summary.SourceURL),
	}
	s.metadataSink.RecordArtifact(metadata.ArtifactReportMarkdown, writeResult.MarkdownPath(), attrs)
	s.metadataSink.RecordArtifact(metadata.ArtifactReportHTML, writeResult.HTMLPath(), attrs)
	return writeResult, nil
}

func write(
	outputDir string,
	summary orchestrator.BatchSummary,
	hashAlgo hashutil.HashAlgo,
	generatedAt time.Time,
) (WriteResult, *StorageError) {
	urlHash, storageError := reportName(summary.SourceURL, hashAlgo)
	if storageError != nil {
		return WriteResult{}, storageError
	}

	if err := fileutil.EnsureDir(outputDir); err != nil {
		var fileErr *fileutil.FileError
		retryable := errors.As(err, &fileErr) && fileErr.Retryable
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     ErrCausePathError,
			Path:      outputDir,
		}
	}

	md := renderMarkdown(summary, generatedAt)
	markdownPath := filepath.Join(outputDir, urlHash+".md")
	if storageError := writeFile(markdownPath, md); storageError != nil {
		return WriteResult{}, storageError
	}

	htmlPath := filepath.Join(outputDir, urlHash+".html")
	if storageError := writeFile(htmlPath, renderHTML(md)); storageError != nil {
		return WriteResult{}, storageError
	}

	return NewWriteResult(urlHash, markdownPath, htmlPath), nil
}

// reportName hashes the canonical form of the source URL and keeps the
// first 12 hex characters.
func reportName(sourceUrl string, hashAlgo hashutil.HashAlgo) (string, *StorageError) {
	identity := sourceUrl
	if parsed, err := url.Parse(sourceUrl); err == nil {
		canonical := urlutil.Canonicalize(*parsed)
		identity = canonical.String()
	}

	hash, err := hashutil.HashBytes([]byte(identity), hashAlgo)
	if err != nil {
		return "", &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}
	return hash[:12], nil
}

func writeFile(path string, data []byte) *StorageError {
	err := fileutil.WriteFileAtomic(path, data)
	if err == nil {
		return nil
	}
	cause := ErrCauseWriteFailure
	retryable := false
	var fileErr *fileutil.FileError
	if errors.As(err, &fileErr) {
		retryable = fileErr.Retryable
		if fileErr.Cause == fileutil.ErrCausePathError {
			cause = ErrCausePathError
		}
	}
	return &StorageError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
		Path:      path,
	}
}
