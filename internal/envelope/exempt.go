package envelope

import "strings"

// ContentsFile is the descriptor the envelope replaces.
const ContentsFile = "contents.json"

var exemptSegments = map[string]struct{}{
	"manifest.json": {},
	ContentsFile:    {},
	"texts":         {},
	"pack_icon.png": {},
	"ui":            {},
}

// ExemptSegments lists the path segments that keep a file unencrypted.
func ExemptSegments() []string {
	return []string{"manifest.json", ContentsFile, "texts", "pack_icon.png", "ui"}
}

// IsExempt reports whether any segment of the slash-separated rel path
// exactly matches an exempt name. Matching is case-sensitive and whole-segment.
func IsExempt(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if _, ok := exemptSegments[segment]; ok {
			return true
		}
	}
	return false
}
