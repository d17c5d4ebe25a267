package bundle

import (
	"encoding/base32"
	"encoding/binary"
	"path"
	"strings"

	"webbuild/src/buildconfig"

	"github.com/cespare/xxhash/v2"
)

const hashLength = 8

// contentHash is the value substituted for [hash] in names this package
// computes itself. esbuild computes its own hashes for the files it names.
func contentHash(contents []byte) string {
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], xxhash.Sum64(contents))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])[:hashLength]
}

// expand fills in [name] and [hash] in a file name template.
func expand(template, name string, contents []byte) string {
	out := strings.ReplaceAll(template, buildconfig.NamePlaceholder, name)
	if strings.Contains(out, buildconfig.HashPlaceholder) {
		out = strings.ReplaceAll(out, buildconfig.HashPlaceholder, contentHash(contents))
	}
	return path.Clean(out)
}

// entryOutputPath turns an output filename template into an esbuild output
// path for one entry. The hash is left to esbuild's entry names template, so
// it is reported separately.
func entryOutputPath(template, name string) (outputPath string, hashed bool) {
	hashed = strings.Contains(template, buildconfig.HashPlaceholder)
	out := strings.ReplaceAll(template, buildconfig.NamePlaceholder, name)
	out = strings.ReplaceAll(out, "."+buildconfig.HashPlaceholder, "")
	out = strings.ReplaceAll(out, buildconfig.HashPlaceholder, "")
	out = strings.TrimSuffix(out, path.Ext(out))
	return path.Clean(out), hashed
}

func entryNames(hashed bool) string {
	if hashed {
		return "[dir]/[name].[hash]"
	}
	return "[dir]/[name]"
}

// chunkNames converts the chunk filename template to esbuild's form. esbuild
// names every shared chunk "chunk", so a hash is required to tell them apart.
func chunkNames(template string) string {
	out := strings.TrimSuffix(template, path.Ext(template))
	if !strings.Contains(out, buildconfig.HashPlaceholder) {
		out += "-" + buildconfig.HashPlaceholder
	}
	return out
}

// assetNames converts a file loader name like "[path][name].[hash].[ext]".
// esbuild appends the extension itself.
func assetNames(template string) string {
	out := strings.ReplaceAll(template, buildconfig.PathPlaceholder, "[dir]/")
	out = strings.TrimSuffix(out, "."+buildconfig.ExtPlaceholder)
	out = strings.TrimSuffix(out, buildconfig.ExtPlaceholder)
	return out
}
