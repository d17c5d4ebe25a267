package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	a := contentHash([]byte("body { color: red }"))
	assert.Len(t, a, hashLength)
	assert.Equal(t, a, contentHash([]byte("body { color: red }")))
	assert.NotEqual(t, a, contentHash([]byte("body { color: blue }")))
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "css/main.css", expand("css/[name].css", "main", nil))

	contents := []byte("x")
	assert.Equal(t, "css/main."+contentHash(contents)+".css", expand("css/[name].[hash].css", "main", contents))
	assert.Equal(t, "index.html", expand("./index.html", "index", nil))
}

func TestEntryOutputPath(t *testing.T) {
	cases := []struct {
		template, name, out string
		hashed              bool
	}{
		{"js/[name].js", "main", "js/main", false},
		{"js/[name].[hash].js", "main", "js/main", true},
		{"js/[name]/[name].js", "analytics", "js/analytics/analytics", false},
		{"js/[name]/[name].[hash].js", "analytics", "js/analytics/analytics", true},
	}
	for _, c := range cases {
		out, hashed := entryOutputPath(c.template, c.name)
		assert.Equal(t, c.out, out, c.template)
		assert.Equal(t, c.hashed, hashed, c.template)
	}
	assert.Equal(t, "[dir]/[name].[hash]", entryNames(true))
	assert.Equal(t, "[dir]/[name]", entryNames(false))
}

func TestChunkAndAssetNames(t *testing.T) {
	assert.Equal(t, "js/[name]/[name].[hash]", chunkNames("js/[name]/[name].[hash].js"))
	assert.Equal(t, "js/[name]/[name]-[hash]", chunkNames("js/[name]/[name].js"))

	assert.Equal(t, "[dir]/[name].[hash]", assetNames("[path][name].[hash].[ext]"))
	assert.Equal(t, "[dir]/[name]", assetNames("[path][name].[ext]"))
}
