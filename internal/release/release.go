package release

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FirstYear is the oldest TeX Live release available from the historic
// archive mirrors.
const FirstYear = 2008

// ErrInvalidVersion reports a version token outside the accepted grammar.
var ErrInvalidVersion = errors.New("invalid version")

var yearPattern = regexp.MustCompile(`^[0-9]{4}$`)

var nowFunc = time.Now

// Spec identifies a requested release: the rolling current release or a
// specific historic year. Immutable once parsed.
type Spec struct {
	Latest bool
	Year   int
}

// Parse validates a version token. Exactly two shapes are accepted: the
// literal "latest", or a four-digit year within [FirstYear, current year].
func Parse(token string) (Spec, error) {
	if token == "latest" {
		return Spec{Latest: true}, nil
	}
	if !yearPattern.MatchString(token) {
		return Spec{}, fmt.Errorf("%w: %q (expected \"latest\" or a 4-digit year)", ErrInvalidVersion, token)
	}
	year, err := strconv.Atoi(token)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidVersion, token)
	}
	current := nowFunc().Year()
	if year < FirstYear || year > current {
		return Spec{}, fmt.Errorf("%w: year %d outside [%d, %d]", ErrInvalidVersion, year, FirstYear, current)
	}
	return Spec{Year: year}, nil
}

func (s Spec) String() string {
	if s.Latest {
		return "latest"
	}
	return strconv.Itoa(s.Year)
}

// Source is the resolved download location for a release.
type Source struct {
	// InstallerURL is where the installer archive is fetched from.
	InstallerURL string
	// Location is the package repository passed to the installer via
	// --location; always the rolling mirror with a trailing slash.
	Location string
	// Repository is the historic repository passed via --repository; empty
	// for the rolling release.
	Repository string
}

// Resolve derives the source location for a spec. Pure: no network access,
// no filesystem access.
func Resolve(spec Spec, mirror, archiveMirror, archiveName, cacheBuster string) Source {
	mirror = strings.TrimRight(mirror, "/")
	src := Source{Location: mirror + "/"}
	if spec.Latest {
		src.InstallerURL = mirror + "/" + archiveName
	} else {
		base := fmt.Sprintf("%s/%d/tlnet-final", strings.TrimRight(archiveMirror, "/"), spec.Year)
		src.InstallerURL = base + "/" + archiveName
		src.Repository = base
	}
	src.InstallerURL = appendCacheBuster(src.InstallerURL, cacheBuster)
	return src
}

// appendCacheBuster tags a URL with a throwaway query parameter so layered
// build caches treat it as fresh. The zero token disables tagging.
func appendCacheBuster(url, token string) string {
	if token == "" || token == "0" {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "ts=" + token
}
