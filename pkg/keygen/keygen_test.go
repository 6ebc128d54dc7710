package keygen

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_KeyShape(t *testing.T) {
	key, err := Generate(Params{Filename: "photo.PNG", Env: "dev"})
	require.NoError(t, err)

	shape := regexp.MustCompile(`^dev/\d{4}/\d{2}/[0-9a-f]{16}/[0-9a-f]{40}\.png$`)
	assert.Regexp(t, shape, key)
}

func TestGenerate_UsesUTCPartition(t *testing.T) {
	// 2024-12-31 23:30 in UTC+10 is already January 2025 locally, but the
	// key must partition on the UTC year/month.
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2025, time.January, 1, 9, 30, 0, 0, loc)

	key, err := Generate(Params{Filename: "a.txt", Env: "prod", Now: now})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "prod/2024/12/"), "key %q should partition on UTC time", key)
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		key, err := Generate(Params{Filename: "same.bin", Env: "dev"})
		require.NoError(t, err)
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key after %d generations: %s", i, key)
		}
		seen[key] = struct{}{}
	}
}

func TestGenerate_NoExtension(t *testing.T) {
	key, err := Generate(Params{Filename: "README", Env: "dev"})
	require.NoError(t, err)

	last := key[strings.LastIndexByte(key, '/')+1:]
	assert.NotContains(t, last, ".")
	assert.Len(t, last, tokenLen)
}

func TestGenerate_EmptyFilename(t *testing.T) {
	key, err := Generate(Params{Filename: "", Env: "dev"})
	require.NoError(t, err)
	assert.Regexp(t, `^dev/\d{4}/\d{2}/[0-9a-f]{16}/[0-9a-f]{40}$`, key)
}

func TestGenerate_PrefixSplice(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"plain", "avatars", "dev/avatars/"},
		{"trailing slash trimmed", "avatars/", "dev/avatars/"},
		{"nested", "team/icons", "dev/team/icons/"},
		{"blank ignored", "   ", "dev/2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Generate(Params{Filename: "x.jpg", Env: "dev", Prefix: tt.prefix})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, tt.want), "key %q should start with %q", key, tt.want)
		})
	}
}

func TestGenerate_ContentHashOverride(t *testing.T) {
	key, err := Generate(Params{
		Filename:    "photo.png",
		Env:         "dev",
		ContentHash: "feedfacefeedfacefeedfacefeedfacefeedface",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "/feedfacefeedfacefeedfacefeedfacefeedface.png"))
}

func TestOriginalKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		prefix   string
		want     string
	}{
		{"plain", "photo.png", "", "photo.png"},
		{"with prefix", "photo.png", "uploads", "uploads/photo.png"},
		{"prefix trailing slash", "photo.png", "uploads/", "uploads/photo.png"},
		{"path separators replaced", `a/b\c.txt`, "", "a_b_c.txt"},
		{"whitespace collapsed", "my file.txt", "", "my-file.txt"},
		{"whitespace run", "my   file.txt", "", "my-file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OriginalKey(tt.filename, tt.prefix))
		})
	}
}

func TestSanitize_ControlCharacters(t *testing.T) {
	got := Sanitize("evil\x00name\x1f.txt")
	assert.NotContains(t, got, "\x00")
	assert.NotContains(t, got, "\x1f")
	assert.Equal(t, "evil_name_.txt", got)
}

func TestExt(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"photo.PNG", "png"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"trailing.", ""},
		{"", ""},
		{".gitignore", "gitignore"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Ext(tt.filename), "Ext(%q)", tt.filename)
	}
}

func TestStrategy_Valid(t *testing.T) {
	assert.True(t, StrategyHash.Valid())
	assert.True(t, StrategyOriginal.Valid())
	assert.False(t, Strategy("").Valid())
	assert.False(t, Strategy("sequential").Valid())
}
