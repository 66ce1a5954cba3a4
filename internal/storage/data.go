package storage

// Persistence

type WriteResult struct {
	urlHash      string // identity (filename without extension)
	markdownPath string
	htmlPath     string
}

func NewWriteResult(
	urlHash string,
	markdownPath string,
	htmlPath string,
) WriteResult {
	return WriteResult{
		urlHash:      urlHash,
		markdownPath: markdownPath,
		htmlPath:     htmlPath,
	}
}

func (w *WriteResult) URLHash() string {
	return w.urlHash
}

func (w *WriteResult) MarkdownPath() string {
	return w.markdownPath
}

func (w *WriteResult) HTMLPath() string {
	return w.htmlPath
}
