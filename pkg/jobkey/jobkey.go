// Package jobkey owns the job identifier scheme and the storage key schema
// shared by the upload and generation stages. Every key under the uploads
// bucket is derived here and nowhere else, so the naming convention can
// evolve in one place without silently breaking a stage.
package jobkey

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SchemeVersion identifies the key layout below. Bump it if the layout
// changes so stages deployed against different versions can be told apart.
const SchemeVersion = 1

// Bucket is the single logical container holding all pipeline artifacts.
const Bucket = "uploads"

// Variant selects which generation backend produced an output artifact.
type Variant string

const (
	VariantStandard  Variant = "standard"
	VariantFineTuned Variant = "fine-tuned"
)

// Valid reports whether v is a known generation variant.
func (v Variant) Valid() bool {
	return v == VariantStandard || v == VariantFineTuned
}

var (
	mintMu   sync.Mutex
	lastTick int64
)

// Mint returns a new job identifier: the current timestamp in nanoseconds
// since the Unix epoch, formatted as a decimal string. Identifiers are
// strictly increasing within a process. Two processes minting on the exact
// same tick can still collide; the blast radius is one overwritten
// submission, which is accepted rather than paying for a distributed
// uniqueness service.
func Mint() string {
	mintMu.Lock()
	defer mintMu.Unlock()

	tick := time.Now().UnixNano()
	if tick <= lastTick {
		tick = lastTick + 1
	}
	lastTick = tick
	return strconv.FormatInt(tick, 10)
}

// Valid reports whether jobID has the shape of a minted identifier.
func Valid(jobID string) bool {
	if jobID == "" {
		return false
	}
	for _, r := range jobID {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CVKey returns the storage key for a submitted CV. The original filename is
// preserved (sanitized) so the document type survives the round trip.
func CVKey(jobID, filename string) string {
	return CVPrefix(jobID) + SanitizeFilename(filename)
}

// CVPrefix returns the listing prefix under which exactly one CV object
// lives for the given job. The generation stage locates the CV by listing
// this prefix, which is what lets it recover the original filename from the
// job identifier alone.
func CVPrefix(jobID string) string {
	return "cv/cv-" + jobID + "-"
}

// JobOfferKey returns the storage key for the submitted job-offer text.
func JobOfferKey(jobID string) string {
	return "joboffer/jobOffer-" + jobID + ".txt"
}

// GeneratedKey returns the deterministic, variant-qualified key for a
// generated CV. Re-invoking the same variant for the same job overwrites
// the object at this key.
func GeneratedKey(jobID string, variant Variant) string {
	return fmt.Sprintf("generated/%s/%s.pdf", variant, jobID)
}

// ParseCVKey is the inverse of CVKey: it extracts the job identifier and
// original filename from a CV object key.
func ParseCVKey(key string) (jobID, filename string, err error) {
	rest, ok := strings.CutPrefix(key, "cv/cv-")
	if !ok {
		return "", "", fmt.Errorf("not a cv key: %q", key)
	}
	jobID, filename, ok = strings.Cut(rest, "-")
	if !ok || !Valid(jobID) || filename == "" {
		return "", "", fmt.Errorf("malformed cv key: %q", key)
	}
	return jobID, filename, nil
}

// SanitizeFilename strips any path components and maps characters outside
// [A-Za-z0-9._] to underscores so the filename is safe as a key segment.
// Hyphens are rewritten too: they delimit the jobID inside CV keys.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
