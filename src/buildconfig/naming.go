package buildconfig

import (
	"fmt"

	"webbuild/src/config"
	"webbuild/src/utils"
)

const (
	NamePlaceholder = "[name]"
	HashPlaceholder = "[hash]"
	PathPlaceholder = "[path]"
	ExtPlaceholder  = "[ext]"
)

// FileName is the naming strategy shared by scripts, styles, pages and
// assets. Production names carry a content hash.
func FileName(mode config.Mode, ext string) string {
	base := utils.Cond(mode.IsDev(), NamePlaceholder, NamePlaceholder+"."+HashPlaceholder)
	return fmt.Sprintf("%s.%s", base, ext)
}

func HTMLFileName(mode config.Mode) string {
	return utils.Cond(mode.IsDev(), "index.html", "index."+HashPlaceholder+".html")
}

// OutputFilename emits the main bundle flat under js/ and every other chunk
// under a directory named after it.
func OutputFilename(mode config.Mode) FilenameFunc {
	return func(chunkName string) string {
		if chunkName == "main" {
			return "js/" + FileName(mode, "js")
		}
		return "js/[name]/" + FileName(mode, "js")
	}
}

func ChunkFilename(mode config.Mode) string {
	return "js/[name]/" + FileName(mode, "js")
}
