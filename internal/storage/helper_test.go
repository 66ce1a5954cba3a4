package storage_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
)

type artifactEvent struct {
	kind  metadata.ArtifactKind
	path  string
	attrs []metadata.Attribute
}

// metadataSinkMock records artifact and error events.
type metadataSinkMock struct {
	metadata.NoopSink
	mu        sync.Mutex
	artifacts []artifactEvent
	errors    []metadata.ErrorCause
	errAttrs  [][]metadata.Attribute
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, artifactEvent{kind: kind, path: path, attrs: attrs})
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, cause)
	m.errAttrs = append(m.errAttrs, attrs)
}

func findAttrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
