package pathres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestPath(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		prefix string
		want   Request
	}{
		{"nested file", "img/size/a/b/c.jpg", "img/", Request{"size", "a/b/c.jpg"}},
		{"leading slash", "/img/small/2024/cat.png", "img/", Request{"small", "2024/cat.png"}},
		{"site subdirectory", "/blog/img/thumb/photo.jpg", "img/", Request{"thumb", "photo.jpg"}},
		{"query string dropped", "/img/thumb/photo.jpg?v=3", "img/", Request{"thumb", "photo.jpg"}},
		{"double slash after prefix", "/img//thumb/photo.jpg", "img/", Request{"thumb", "photo.jpg"}},
		{"empty file part", "/img/thumb/", "img/", Request{"thumb", ""}},
		{"custom prefix", "/media/resized/hero/x.webp", "media/resized/", Request{"hero", "x.webp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequestPath(tt.raw, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequestPath_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		prefix string
	}{
		{"missing prefix", "/uploads/2024/cat.png", "img/"},
		{"prefix only in query", "/page?next=img/thumb/a.jpg", "img/"},
		{"no source path", "/img/thumb", "img/"},
		{"nothing after prefix", "/img/", "img/"},
		{"empty prefix", "/img/thumb/a.jpg", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequestPath(tt.raw, tt.prefix)
			require.ErrorIs(t, err, ErrMalformedPath)
		})
	}
}

func TestToSourceRelativePath(t *testing.T) {
	const uploads = "https://example.com/wp-content/uploads"

	assert.Equal(t, "2024/05/photo.jpg",
		ToSourceRelativePath(uploads+"/2024/05/photo.jpg", uploads))
	assert.Equal(t, "photo.jpg",
		ToSourceRelativePath(uploads+"//photo.jpg", uploads))

	// Outside the uploads base the input comes back untouched.
	assert.Equal(t, "https://cdn.example.net/photo.jpg",
		ToSourceRelativePath("https://cdn.example.net/photo.jpg", uploads))
	assert.Equal(t, "/already/relative.jpg",
		ToSourceRelativePath("/already/relative.jpg", ""))
}
