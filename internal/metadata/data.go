package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for caching, continuation, or abort decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport or remote availability: DNS, resets, browser crash, 5xx.

# CausePolicyDisallow
  - The source refused us: 403, 429, list host not on the allowlist.

# CauseContentInvalid
  - Content was fetched but could not be used: non-HTML, unparsable markup.

# CauseStorageFailure
  - Cache backend or report file I/O failed.

# CauseTimeout
  - A page load, per-item or global budget ran out.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseTimeout
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL      AttributeKey = "url"
	AttrHost     AttributeKey = "host"
	AttrTitle    AttributeKey = "title"
	AttrQuery    AttributeKey = "query"
	AttrCacheKey AttributeKey = "cache_key"
	AttrBackend  AttributeKey = "backend"
	AttrStatus   AttributeKey = "status"
	AttrExcerpt  AttributeKey = "excerpt"
	AttrPath     AttributeKey = "path"
	AttrMessage  AttributeKey = "message"
)

// BatchStats is the terminal summary of one list resolution.
type BatchStats struct {
	Candidates   int
	Cached       int
	Fetched      int
	Found        int
	Errors       int
	Timeouts     int
	NotAttempted int
}

type ArtifactKind string

const (
	ArtifactReportMarkdown ArtifactKind = "report_markdown"
	ArtifactReportHTML     ArtifactKind = "report_html"
)
