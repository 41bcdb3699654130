package linkverify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksFromReader(t *testing.T) {
	page := `<html><body>
<a href="/blog/entrada/">entrada</a>
<a href="https://external.example/x">fuera</a>
<img src="/assets/a.png" srcset="/assets/a.png 1x, /assets/a@2x.png 2x" alt="foto">
<video src="/assets/v.mp4" poster="/assets/v.jpg"></video>
<iframe src="https://www.youtube.com/embed/abc"></iframe>
</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(page), "https://example.org")
	require.NoError(t, err)

	byAttr := map[string][]string{}
	for _, l := range links {
		byAttr[l.Attribute] = append(byAttr[l.Attribute], l.URL)
	}
	assert.Contains(t, byAttr["href"], "/blog/entrada/")
	assert.Contains(t, byAttr["srcset"], "/assets/a@2x.png")
	assert.Contains(t, byAttr["poster"], "/assets/v.jpg")
	assert.Contains(t, byAttr["src"], "/assets/v.mp4")
}

func TestInternalClassification(t *testing.T) {
	page := `<a href="https://example.org/p/">self</a><a href="https://other.example/">other</a><a href="relative/">rel</a>`
	links, err := ExtractLinksFromReader(strings.NewReader(page), "https://example.org")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.True(t, links[0].IsInternal)
	assert.False(t, links[1].IsInternal)
	assert.True(t, links[2].IsInternal)
}

func TestShouldVerifyLink(t *testing.T) {
	skip := []string{"", "#top", "mailto:a@b.c", "tel:+34123", "javascript:void(0)", "data:image/png;base64,AA"}
	for _, u := range skip {
		assert.False(t, ShouldVerifyLink(&Link{URL: u}), "must skip %q", u)
	}
	assert.True(t, ShouldVerifyLink(&Link{URL: "/blog/"}))
	assert.True(t, ShouldVerifyLink(&Link{URL: "/assets/a.png"}))
}

func TestParseSrcset(t *testing.T) {
	assert.Equal(t, []string{"/a.png", "/b.png"}, parseSrcset("/a.png 1x, /b.png 2x"))
	assert.Nil(t, parseSrcset(""))
}
