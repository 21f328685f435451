package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.SnapshotNormaliser = (*Normaliser)(nil)

// Placeholder is what the source publishes when a field has no value yet.
const Placeholder = domain.MissingValue

// sourceDateLayout is the day-first layout used on the source pages.
const sourceDateLayout = "02/01/2006"

// Normaliser cleans crawled records before they reach the version sync.
type Normaliser struct {
	fillMissingHash bool
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithFillMissingHash enables computing a content hash for records without one.
func WithFillMissingHash(enabled bool) Option {
	return func(n *Normaliser) {
		n.fillMissingHash = enabled
	}
}

// New creates a new snapshot normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise returns a copy of doc with its dates in yyyy-mm-dd form,
// placeholders removed and, if enabled, a fingerprint filled in.
// Failed records are returned untouched.
func (n *Normaliser) Normalise(doc domain.DocumentSnapshot) domain.DocumentSnapshot {
	if doc.Failed() {
		return doc
	}

	if doc.UpdatedAt != nil {
		if date := NormaliseDate(*doc.UpdatedAt); date != "" {
			doc.UpdatedAt = &date
		} else {
			doc.UpdatedAt = nil
		}
	}
	doc.IssuedDate = NormaliseDate(doc.IssuedDate)
	doc.EffectiveDate = NormaliseDate(doc.EffectiveDate)

	if n.fillMissingHash && doc.ContentHash == "" {
		doc.ContentHash = Fingerprint(doc)
		logger.Debug("Filled content hash for %s", doc.URL)
	}

	return doc
}

// NormaliseDate converts a dd/mm/yyyy date to yyyy-mm-dd.
// ISO dates and instants pass through, the placeholder becomes empty, and
// anything else is returned trimmed but otherwise unchanged.
func NormaliseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == Placeholder {
		return ""
	}
	if t, err := time.Parse(sourceDateLayout, s); err == nil {
		return t.Format(time.DateOnly)
	}
	return s
}

// Fingerprint returns the hex SHA-256 of the canonical JSON of the
// descriptive fields and raw payload of doc. Object keys are sorted.
func Fingerprint(doc domain.DocumentSnapshot) string {
	content := make(map[string]any, 9)
	for k, v := range doc.DescriptiveFields() {
		content[k] = v
	}

	if len(doc.RawData) > 0 {
		var raw any
		if err := json.Unmarshal(doc.RawData, &raw); err == nil {
			content[domain.ColRawData] = raw
		} else {
			content[domain.ColRawData] = string(doc.RawData)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Strings and decoded JSON values always encode.
	_ = enc.Encode(content)

	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:])
}
