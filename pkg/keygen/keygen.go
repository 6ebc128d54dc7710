// Package keygen builds object keys for uploads.
//
// Two strategies are supported:
//   - StrategyHash (default): a time-partitioned, digest-derived key of the
//     form {env}/{yyyy}/{mm}/{shard}/{token}.{ext}. Keys are effectively
//     unique without an existence probe.
//   - StrategyOriginal: a sanitized version of the original filename joined
//     under an optional prefix. Human readable, no partitioning, and a
//     correspondingly higher collision risk.
package keygen

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Strategy selects how an upload's object key is constructed.
type Strategy string

const (
	// StrategyHash derives the key from a digest over the filename,
	// generation timestamp, and fresh randomness.
	StrategyHash Strategy = "hash"

	// StrategyOriginal keeps the (sanitized) original filename.
	StrategyOriginal Strategy = "original"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyHash || s == StrategyOriginal
}

// shardLen is the number of hex characters in the shard prefix segment.
// tokenLen is the number of hex characters in the digest-derived base name.
const (
	shardLen = 16
	tokenLen = 40
)

// Params configures a single key generation.
type Params struct {
	// Filename is the original upload filename. May be empty, which
	// produces an extensionless key.
	Filename string

	// Env is the deployment environment tag (e.g. dev, stage, prod).
	// It becomes the first key segment under the hash strategy.
	Env string

	// Prefix optionally namespaces the key under a logical folder.
	// For the hash strategy it is spliced immediately after the env
	// segment, preserving the time/shard partitioning below it.
	Prefix string

	// Now overrides the generation timestamp. Zero means time.Now().
	Now time.Time

	// ContentHash, when set, replaces the digest-derived token as the
	// base name. Callers integrating content addressing supply the
	// object's own content digest here.
	ContentHash string
}

// Generate produces a hash-strategy object key.
//
// The key is {env}/{yyyy}/{mm}/{shard}/{token}.{ext} where shard and token
// are prefixes of a SHA-256 digest over the filename, the RFC 3339 UTC
// timestamp, and 32 bytes of fresh randomness. Collisions are
// cryptographically negligible; existing keys are never probed.
func Generate(p Params) (string, error) {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("keygen: read random: %w", err)
	}

	base := p.Filename + "\n" + now.Format(time.RFC3339) + "\n" + hex.EncodeToString(random)
	digest := sha256.Sum256([]byte(base))
	digestHex := hex.EncodeToString(digest[:])

	shard := digestHex[:shardLen]
	token := p.ContentHash
	if token == "" {
		token = digestHex[:tokenLen]
	}

	name := token
	if ext := Ext(p.Filename); ext != "" {
		name = token + "." + ext
	}

	segments := make([]string, 0, 5)
	segments = append(segments, p.Env)
	if pfx := trimPrefix(p.Prefix); pfx != "" {
		segments = append(segments, pfx)
	}
	segments = append(segments,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		shard,
		name,
	)

	return strings.Join(segments, "/"), nil
}

// OriginalKey produces an original-strategy key: the sanitized filename,
// joined under prefix when one is given. No time or shard partitioning.
func OriginalKey(filename, prefix string) string {
	base := Sanitize(filename)
	if pfx := trimPrefix(prefix); pfx != "" {
		return pfx + "/" + base
	}
	return base
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize makes a filename safe for use as a key segment. Path separators
// and control characters become '_'; whitespace runs collapse to a single
// '-'. This is the only defense against directory traversal leaking into
// original-strategy keys.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r == '/' || r == '\\' || (r >= 0x00 && r <= 0x1f) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return whitespaceRun.ReplaceAllString(b.String(), "-")
}

// Ext returns the lowercased extension of filename without the dot.
// Empty if there is no dot, or the dot is the final character.
func Ext(filename string) string {
	dot := strings.LastIndexByte(filename, '.')
	if dot == -1 || dot == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[dot+1:])
}

// trimPrefix normalizes a caller-supplied prefix: surrounding whitespace and
// any trailing slash are dropped. Empty or whitespace-only means no prefix.
func trimPrefix(prefix string) string {
	return strings.TrimSuffix(strings.TrimSpace(prefix), "/")
}
