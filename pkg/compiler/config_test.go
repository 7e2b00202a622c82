package compiler

import (
	"errors"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"", PlatformWeapp},
		{"weapp", PlatformWeapp},
		{"ALIPAY", PlatformAlipay},
		{" swan ", PlatformSwan},
		{"harmony", PlatformHarmony},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePlatform(%q) = %q, %v", tt.in, got, err)
		}
	}

	_, err := ParsePlatform("web")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != KindInvalidPlatform {
		t.Errorf("ParsePlatform(web) error = %v", err)
	}
}

func TestDefaultAdapter(t *testing.T) {
	tests := map[Platform]string{
		PlatformWeapp:  "wx:if",
		PlatformAlipay: "a:if",
		PlatformSwan:   "s-if",
		PlatformTT:     "tt:if",
	}
	for p, want := range tests {
		if got := DefaultAdapter(p)[KeywordIf]; got != want {
			t.Errorf("DefaultAdapter(%s) if = %q, want %q", p, got, want)
		}
	}
}

func TestComponentArtifacts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Components["view"] = ComponentDecl{Inner: true, Style: ".v{}"}
	cfg.Components["image"] = ComponentDecl{Inner: true, Style: ".img{}", Replace: &ComponentReplace{
		DependencyDefine: `"image": "./lazy-image"`,
		Style:            ".lazy{}",
	}}

	used := make(ComponentSet)
	used.Add("view")
	used.Add("image")
	used.Add("text")

	if got := cfg.DependencyDefines(used); got != "\"image\": \"./lazy-image\"\n" {
		t.Errorf("DependencyDefines = %q", got)
	}
	if got := cfg.ComponentStyles(used); got != ".lazy{}.v{}" {
		t.Errorf("ComponentStyles = %q", got)
	}
}

func TestIsInnerComponent(t *testing.T) {
	cfg := DefaultConfig()
	for _, tag := range []string{"View", "view", "ScrollView", "scroll-view"} {
		if !cfg.IsInnerComponent(tag) {
			t.Errorf("%s should be a built-in", tag)
		}
	}
	if cfg.IsInnerComponent("MyCard") {
		t.Error("MyCard is not a built-in")
	}
}
