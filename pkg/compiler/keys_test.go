package compiler

import (
	"errors"
	"strings"
	"testing"
)

func TestKebabCase(t *testing.T) {
	tests := map[string]string{
		"scrollIntoView":      "scroll-into-view",
		"upperThresholdCount": "upper-threshold-count",
		"id":                  "id",
		"ScrollView":          "scroll-view",
		"":                    "",
	}
	for in, want := range tests {
		if got := KebabCase(in); got != want {
			t.Errorf("KebabCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKebabCaseHyphenCount(t *testing.T) {
	for _, key := range []string{"aB", "aBcD", "scrollWithAnimation", "enableBackToTop", "x"} {
		upper := 0
		for _, r := range key[1:] {
			if 'A' <= r && r <= 'Z' {
				upper++
			}
		}
		got := KebabCase(key)
		if n := strings.Count(got, "-"); n != upper {
			t.Errorf("KebabCase(%q) = %q has %d hyphens, want %d", key, got, n, upper)
		}
		if strings.ToLower(got) != got {
			t.Errorf("KebabCase(%q) = %q is not lowercase", key, got)
		}
	}
}

func TestConvertAttrKey(t *testing.T) {
	adapter := DefaultAdapter(PlatformWeapp)
	tests := []struct {
		key  string
		want string
	}{
		{"className", "class"},
		{"compileIf", "wx:if"},
		{"compileElse", "wx:else"},
		{"compileFor", "wx:for"},
		{"compileForKey", "wx:key"},
		{"hoverClass", "hover-class"},
		{"src", "src"},
	}
	for _, tt := range tests {
		got, err := ConvertAttrKey(tt.key, adapter)
		if err != nil {
			t.Fatalf("ConvertAttrKey(%q) error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("ConvertAttrKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestConvertAttrKeyMissingAdapter(t *testing.T) {
	adapter := Adapter{KeywordIf: "wx:if"}

	_, err := ConvertAttrKey(AttrCompileFor, adapter)
	if err == nil {
		t.Fatal("expected an error for an unconfigured keyword")
	}
	if !errors.Is(err, ErrMissingAdapter) {
		t.Errorf("error %v does not match ErrMissingAdapter", err)
	}
	var cerr *Error
	if !errors.As(err, &cerr) || !cerr.Fatal() {
		t.Errorf("error %v should be a fatal *Error", err)
	}
	if !strings.Contains(err.Error(), `"for"`) {
		t.Errorf("error %q should name the keyword", err)
	}

	if got, err := ConvertAttrKey(AttrCompileIf, adapter); err != nil || got != "wx:if" {
		t.Errorf("ConvertAttrKey(compileIf) = %q, %v", got, err)
	}
}

func TestAdapterForKeyFallback(t *testing.T) {
	got, err := Adapter{"key": "wx:key"}.Lookup(KeywordForKey)
	if err != nil || got != "wx:key" {
		t.Errorf("Lookup(for-key) = %q, %v", got, err)
	}
}

func TestResolveEventKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		platform Platform
		want     string
		ok       bool
	}{
		{"click is tap", "onClick", PlatformWeapp, "bindtap", true},
		{"lowercased event", "onLongPress", PlatformWeapp, "bindlongpress", true},
		{"worklet handler", "onScrollUpdateWorklet", PlatformWeapp, "worklet:onscrollupdate", true},
		{"worklet callback", "shouldResponseOnMoveWorklet", PlatformWeapp, "worklet:should-response-on-move", true},
		{"repeated suffix", "onTapWorkletWorklet", PlatformWeapp, "worklet:ontap", true},
		{"touch first tap", "onTap", PlatformAlipay, "onTap", true},
		{"touch first click", "onClick", PlatformAlipay, "onTap", true},
		{"touch first other", "onTouchStart", PlatformAlipay, "onTouchStart", true},
		{"not an event", "only", PlatformWeapp, "", false},
		{"plain attribute", "src", PlatformWeapp, "", false},
		{"bare on", "on", PlatformWeapp, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveEventKey(tt.key, tt.platform)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveEventKey(%q, %s) = %q, %v; want %q, %v", tt.key, tt.platform, got, ok, tt.want, tt.ok)
			}
		})
	}
}
