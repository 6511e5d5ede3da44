package packager

import (
	"fmt"

	"golang.org/x/text/language"
)

// LangName converts a BCP 47 tag such as "en-US" into the client's
// localization file stem "en_US". A tag without an explicit region keeps only
// its base language.
func LangName(locale string) (string, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return base.String(), nil
	}
	return base.String() + "_" + region.String(), nil
}
