package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/internal/storage"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSummary(sourceUrl string) orchestrator.BatchSummary {
	return orchestrator.BatchSummary{
		RunID:     "run-1",
		SourceURL: sourceUrl,
		Candidates: []orchestrator.Candidate{
			{Title: "Heat", Position: 1},
			{Title: "Alien | Director's Cut", Position: 2},
			{Title: "Ran", Position: 3},
		},
		Results: []resolver.FetchResult{
			{Title: "Heat", Identifier: "magnet:?xt=urn:btih:heat", Found: true, Status: resolver.StatusCached},
			{Title: "Alien | Director's Cut", Status: resolver.StatusError, ErrorDetail: "fetcher error: 5xx"},
		},
		Cached:       1,
		Errors:       1,
		Found:        1,
		NotAttempted: []string{"Ran"},
	}
}

func newSink(mock *metadataSinkMock) storage.LocalSink {
	return storage.NewLocalSink(mock).WithClock(func() time.Time { return fixedNow })
}

func TestLocalSink_Write_Success(t *testing.T) {
	tests := []struct {
		name     string
		hashAlgo hashutil.HashAlgo
	}{
		{name: "sha256", hashAlgo: hashutil.HashAlgoSHA256},
		{name: "blake3", hashAlgo: hashutil.HashAlgoBLAKE3},
		{name: "md5", hashAlgo: hashutil.HashAlgoMD5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			mock := &metadataSinkMock{}
			sink := newSink(mock)
			sourceUrl := "https://letterboxd.com/someone/list/favourites/"

			result, err := sink.Write(dir, testSummary(sourceUrl), tt.hashAlgo)
			require.NoError(t, err)

			expected, hashErr := hashutil.HashBytes([]byte("https://letterboxd.com/someone/list/favourites"), tt.hashAlgo)
			require.NoError(t, hashErr)
			assert.Equal(t, expected[:12], result.URLHash())
			assert.Equal(t, filepath.Join(dir, expected[:12]+".md"), result.MarkdownPath())
			assert.Equal(t, filepath.Join(dir, expected[:12]+".html"), result.HTMLPath())

			md, readErr := os.ReadFile(result.MarkdownPath())
			require.NoError(t, readErr)
			assert.Contains(t, string(md), "- Source: <"+sourceUrl+">")
			assert.Contains(t, string(md), "- Generated: 2026-03-01T12:00:00Z")
			assert.Contains(t, string(md), "| 1 | Heat | cached | [link](magnet:?xt=urn:btih:heat) |")
			assert.Contains(t, string(md), `| 2 | Alien \| Director's Cut | error | fetcher error: 5xx |`)
			assert.Contains(t, string(md), "## Not attempted\n\n- Ran\n")

			page, readErr := os.ReadFile(result.HTMLPath())
			require.NoError(t, readErr)
			assert.Contains(t, string(page), "<table>")
			assert.Contains(t, string(page), "<title>Magnet report</title>")

			require.Len(t, mock.artifacts, 2)
			assert.Equal(t, metadata.ArtifactReportMarkdown, mock.artifacts[0].kind)
			assert.Equal(t, result.MarkdownPath(), mock.artifacts[0].path)
			assert.Equal(t, metadata.ArtifactReportHTML, mock.artifacts[1].kind)
			assert.Equal(t, sourceUrl, findAttrValue(mock.artifacts[0].attrs, metadata.AttrURL))
			assert.Empty(t, mock.errors)
		})
	}
}

func TestLocalSink_Write_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	sink := newSink(&metadataSinkMock{})
	summary := testSummary("https://letterboxd.com/someone/list/favourites/")

	first, err := sink.Write(dir, summary, hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	firstBytes, _ := os.ReadFile(first.MarkdownPath())

	second, err := sink.Write(dir, summary, hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	secondBytes, _ := os.ReadFile(second.MarkdownPath())

	assert.Equal(t, first.MarkdownPath(), second.MarkdownPath())
	assert.Equal(t, firstBytes, secondBytes)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestLocalSink_Write_CanonicalSourceShareName(t *testing.T) {
	dir := t.TempDir()
	sink := newSink(&metadataSinkMock{})

	a, err := sink.Write(dir, testSummary("https://LetterBoxd.com/someone/list/favourites/?page=1#top"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	b, err := sink.Write(dir, testSummary("https://letterboxd.com/someone/list/favourites"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)

	assert.Equal(t, a.URLHash(), b.URLHash())
}

func TestLocalSink_Write_UnsupportedHash(t *testing.T) {
	mock := &metadataSinkMock{}
	sink := newSink(mock)

	_, err := sink.Write(t.TempDir(), testSummary("https://letterboxd.com/x/list/y/"), hashutil.HashAlgo("crc32"))
	require.Error(t, err)

	var storageErr *storage.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, storage.ErrCauseHashComputationFailed, storageErr.Cause)
	require.Len(t, mock.errors, 1)
	assert.Equal(t, metadata.CauseUnknown, mock.errors[0])
	assert.Empty(t, mock.artifacts)
}

func TestLocalSink_Write_OutputDirIsAFile(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "reports")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	mock := &metadataSinkMock{}
	sink := newSink(mock)

	_, err := sink.Write(blocker, testSummary("https://letterboxd.com/x/list/y/"), hashutil.HashAlgoSHA256)
	require.Error(t, err)

	var storageErr *storage.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, storage.ErrCausePathError, storageErr.Cause)
	assert.Equal(t, blocker, storageErr.Path)
	require.Len(t, mock.errors, 1)
	assert.Equal(t, metadata.CauseStorageFailure, mock.errors[0])
	assert.Equal(t, blocker, findAttrValue(mock.errAttrs[0], metadata.AttrPath))
}

func TestLocalSink_Write_EmptyBatch(t *testing.T) {
	dir := t.TempDir()
	sink := newSink(&metadataSinkMock{})

	result, err := sink.Write(dir, orchestrator.BatchSummary{SourceURL: "https://letterboxd.com/x/list/empty/"}, hashutil.HashAlgoSHA256)
	require.NoError(t, err)

	md, readErr := os.ReadFile(result.MarkdownPath())
	require.NoError(t, readErr)
	assert.False(t, strings.Contains(string(md), "| # |"))
	assert.Contains(t, string(md), "Candidates: 0")
}
