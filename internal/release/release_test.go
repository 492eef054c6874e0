package release

import (
	"errors"
	"testing"
	"time"
)

func withFixedYear(t *testing.T, year int) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { nowFunc = orig })
}

func TestParseAccepts(t *testing.T) {
	withFixedYear(t, 2024)

	cases := []struct {
		token string
		want  Spec
	}{
		{"latest", Spec{Latest: true}},
		{"2008", Spec{Year: 2008}},
		{"2021", Spec{Year: 2021}},
		{"2024", Spec{Year: 2024}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.token)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.token, got, tc.want)
		}
	}
}

func TestParseRejects(t *testing.T) {
	withFixedYear(t, 2024)

	for _, token := range []string{"", "abc", "1999", "2999", "2025", "20211", "211", "latest ", "Latest", "-208"} {
		_, err := Parse(token)
		if !errors.Is(err, ErrInvalidVersion) {
			t.Fatalf("Parse(%q) = %v, want ErrInvalidVersion", token, err)
		}
	}
}

func TestSpecString(t *testing.T) {
	if got := (Spec{Latest: true}).String(); got != "latest" {
		t.Fatalf("latest String() = %q", got)
	}
	if got := (Spec{Year: 2019}).String(); got != "2019" {
		t.Fatalf("year String() = %q", got)
	}
}

func TestResolveLatest(t *testing.T) {
	src := Resolve(Spec{Latest: true}, "https://mirror.example/tlnet/", "https://archive.example/texlive", "install-tl-unx.tar.gz", "0")

	if src.InstallerURL != "https://mirror.example/tlnet/install-tl-unx.tar.gz" {
		t.Fatalf("installer url = %q", src.InstallerURL)
	}
	if src.Location != "https://mirror.example/tlnet/" {
		t.Fatalf("location = %q", src.Location)
	}
	if src.Repository != "" {
		t.Fatalf("repository = %q, want empty for latest", src.Repository)
	}
}

func TestResolveYear(t *testing.T) {
	src := Resolve(Spec{Year: 2021}, "https://mirror.example/tlnet", "https://archive.example/texlive/", "install-tl-unx.tar.gz", "")

	if src.InstallerURL != "https://archive.example/texlive/2021/tlnet-final/install-tl-unx.tar.gz" {
		t.Fatalf("installer url = %q", src.InstallerURL)
	}
	if src.Repository != "https://archive.example/texlive/2021/tlnet-final" {
		t.Fatalf("repository = %q", src.Repository)
	}
	if src.Location != "https://mirror.example/tlnet/" {
		t.Fatalf("location = %q", src.Location)
	}
}

func TestAppendCacheBuster(t *testing.T) {
	cases := []struct {
		url, token, want string
	}{
		{"https://m.example/a.tar.gz", "", "https://m.example/a.tar.gz"},
		{"https://m.example/a.tar.gz", "0", "https://m.example/a.tar.gz"},
		{"https://m.example/a.tar.gz", "42", "https://m.example/a.tar.gz?ts=42"},
		{"https://m.example/a.tar.gz?x=1", "42", "https://m.example/a.tar.gz?x=1&ts=42"},
	}
	for _, tc := range cases {
		if got := appendCacheBuster(tc.url, tc.token); got != tc.want {
			t.Fatalf("appendCacheBuster(%q, %q) = %q, want %q", tc.url, tc.token, got, tc.want)
		}
	}
}
