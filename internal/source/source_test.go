package source

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantScheme  Scheme
		wantContent string
	}{
		{"empty", "", SchemeUnknown, ""},
		{"http", "http://example.com/a.png", SchemeNet, "http://example.com/a.png"},
		{"https upper", "HTTPS://example.com/a.png", SchemeNet, "HTTPS://example.com/a.png"},
		{"absolute path", "/sdcard/app.apk", SchemeFile, "/sdcard/app.apk"},
		{"file uri", "file:///sdcard/a.jpg", SchemeFile, "/sdcard/a.jpg"},
		{"content", "content://media/external/images/1", SchemeContent, "content://media/external/images/1"},
		{"asset", "asset://icons/star.png", SchemeAsset, "icons/star.png"},
		{"drawable", "drawable://2130837504", SchemeDrawable, "2130837504"},
		{"base64", "data:image/png;base64,AAAA", SchemeBase64, "image/png;base64,AAAA"},
		{"base64 img", "data:img/jpeg;base64,AAAA", SchemeBase64, "img/jpeg;base64,AAAA"},
		{"base64 mixed case", "DATA:Image/png;base64,AAAA", SchemeBase64, "Image/png;base64,AAAA"},
		{"installed app", "app.icon://com.example.app?versionCode=3", SchemeInstalledApp, "com.example.app?versionCode=3"},
		{"non image data", "data:text/plain,hello", SchemeUnknown, "data:text/plain,hello"},
		{"ftp", "ftp://example.com/a.png", SchemeUnknown, "ftp://example.com/a.png"},
		{"relative", "images/a.png", SchemeUnknown, "images/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, content := Classify(tt.uri)
			if scheme != tt.wantScheme {
				t.Errorf("scheme: got %v, want %v", scheme, tt.wantScheme)
			}
			if content != tt.wantContent {
				t.Errorf("content: got %q, want %q", content, tt.wantContent)
			}
		})
	}
}

func TestScheme_StringRoundTrip(t *testing.T) {
	for s := SchemeUnknown; s <= SchemeInstalledApp; s++ {
		got, ok := ParseScheme(s.String())
		if !ok || got != s {
			t.Errorf("ParseScheme(%q): got %v/%v, want %v", s.String(), got, ok, s)
		}
	}
	if Scheme(99).String() != "unknown" {
		t.Error("out of range scheme should print as unknown")
	}
	if _, ok := ParseScheme("gopher"); ok {
		t.Error("ParseScheme should reject unknown names")
	}
}

func TestNew(t *testing.T) {
	opts := &LoadOptions{DisableDiskCache: true}
	src := New("file:///tmp/x.apk", opts)

	if src.URI != "file:///tmp/x.apk" {
		t.Errorf("URI: got %q", src.URI)
	}
	if src.Scheme != SchemeFile || src.Content != "/tmp/x.apk" {
		t.Errorf("classification: got %v %q", src.Scheme, src.Content)
	}
	if !src.LoadOptions().DisableDiskCache {
		t.Error("LoadOptions should return the supplied options")
	}
}

func TestSource_LoadOptionsNil(t *testing.T) {
	src := New("/a.png", nil)
	opts := src.LoadOptions()
	if opts.DisableDiskCache || opts.IconMaxSize != 0 || opts.Extras != nil {
		t.Errorf("nil options should read as zero value: %+v", opts)
	}
}
