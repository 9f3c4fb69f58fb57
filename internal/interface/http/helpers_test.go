package httpapi

import "testing"

func TestParseBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"", ""},
		{"abc", ""},
		{"Basic abc", ""},
	}
	for _, c := range cases {
		if got := parseBearer(c.header); got != c.want {
			t.Errorf("parseBearer(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}

func TestParseResourcePath(t *testing.T) {
	cases := []struct {
		path       string
		wantID     int64
		wantAction string
	}{
		{"/api/campaigns/5/archive", 5, "archive"},
		{"/api/campaigns/5", 5, ""},
		{"/api/campaigns/abc", 0, ""},
		{"/other/5", 0, ""},
	}
	for _, c := range cases {
		id, action := parseResourcePath(c.path, "/api/campaigns/")
		if id != c.wantID || action != c.wantAction {
			t.Errorf("parseResourcePath(%q) = (%d, %q), want (%d, %q)", c.path, id, action, c.wantID, c.wantAction)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := parseIntDefault("", 50); got != 50 {
		t.Errorf("empty = %d, want default", got)
	}
	if got := parseIntDefault("7", 50); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	if got := parseIntDefault("x", 50); got != 50 {
		t.Errorf("garbage = %d, want default", got)
	}
}
