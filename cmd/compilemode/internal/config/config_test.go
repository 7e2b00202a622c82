package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/compilemode/pkg/compiler"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `platform: alipay
adapter:
  for: a:for-items
components: [view, text, image]
componentReplace:
  image:
    dependencyDefine: '"image": "./lazy"'
    style: .lazy{}
serve:
  port: 9000
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantAdapter := map[string]string{
		"if":      "a:if",
		"else":    "a:else",
		"for":     "a:for-items",
		"for-key": "a:key",
	}
	if diff := cmp.Diff(wantAdapter, cfg.Adapter); diff != "" {
		t.Errorf("adapter mismatch (-want +got):\n%s", diff)
	}
	if cfg.Serve.Port != 9000 || cfg.Serve.Host != "localhost" {
		t.Errorf("serve = %+v", cfg.Serve)
	}
	if cfg.TemplateExt != ".wxml" || cfg.NamePrefix != "n" {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cc, err := cfg.CompilerConfig()
	if err != nil {
		t.Fatalf("CompilerConfig: %v", err)
	}
	if cc.Platform != compiler.PlatformAlipay {
		t.Errorf("platform = %s", cc.Platform)
	}
	if !cc.IsInnerComponent("Image") || cc.IsInnerComponent("Button") {
		t.Error("components not converted")
	}
	if cc.Components["image"].Replace == nil {
		t.Error("replacement lost")
	}
}

func TestLoadJSONFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "compilemode.json"), []byte(`{"platform":"tt"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Platform != "tt" || cfg.Adapter["if"] != "tt:if" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.XSModules = []string{"xs", "fmt"}
	cfg.OutDir = "dist"

	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		kind   compiler.Kind
	}{
		{"unknown platform", func(c *Config) { c.Platform = "web" }, compiler.KindInvalidPlatform},
		{"unknown keyword", func(c *Config) { c.Adapter["while"] = "wx:while" }, compiler.KindInvalidConfig},
		{"undeclared replacement", func(c *Config) {
			c.ComponentReplace = map[string]compiler.ComponentReplace{"video": {}}
		}, compiler.KindInvalidConfig},
		{"bad pattern", func(c *Config) { c.Include = []string{"src/[a"} }, compiler.KindInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			var cerr *compiler.Error
			if !errors.As(err, &cerr) || cerr.Kind != tt.kind {
				t.Errorf("Validate() = %v, want kind %s", err, tt.kind)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSetPlatform(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetPlatform("swan"); err != nil {
		t.Fatal(err)
	}
	if cfg.Adapter["for"] != "s-for" {
		t.Errorf("adapter not reset: %v", cfg.Adapter)
	}
	if err := cfg.SetPlatform("nope"); err == nil {
		t.Error("expected an error for an unknown platform")
	}
}

func TestHash(t *testing.T) {
	a, b := DefaultConfig(), DefaultConfig()
	if a.Hash() != b.Hash() {
		t.Error("equal configs hash differently")
	}
	b.Serve.Port = 1
	if a.Hash() != b.Hash() {
		t.Error("serve settings should not affect the hash")
	}
	b.NamePrefix = "x"
	if a.Hash() == b.Hash() {
		t.Error("name prefix must affect the hash")
	}
}

func TestMatchSource(t *testing.T) {
	cfg := DefaultConfig()
	tests := map[string]bool{
		"page.jsx":                   true,
		"src/pages/index.tsx":        true,
		"src/util.js":                false,
		"node_modules/pkg/index.jsx": false,
		"dist/page.jsx":              false,
		"src/components/card/c.jsx":  true,
	}
	for path, want := range tests {
		if got := cfg.MatchSource(path); got != want {
			t.Errorf("MatchSource(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestMatchSourceDoubleStar(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Include = []string{"src/**/*.jsx"}
	cfg.Exclude = []string{"src/**/legacy/**"}

	tests := map[string]bool{
		"src/a.jsx":             true,
		"src/x/a.jsx":           true,
		"src/x/y/a.jsx":         true,
		"lib/a.jsx":             false,
		"src/x/legacy/old.jsx":  false,
		"src/legacy/deep/b.jsx": false,
	}
	for path, want := range tests {
		if got := cfg.MatchSource(path); got != want {
			t.Errorf("MatchSource(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestLoadLegacyKeyAdapter(t *testing.T) {
	dir := t.TempDir()
	data := "adapter:\n  key: wx:custom-key\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cc, err := cfg.CompilerConfig()
	if err != nil {
		t.Fatal(err)
	}
	got, err := cc.Adapter.Lookup(compiler.KeywordForKey)
	if err != nil {
		t.Fatal(err)
	}
	if got != "wx:custom-key" {
		t.Errorf("for-key = %q, want wx:custom-key", got)
	}
	if cc.Adapter[compiler.KeywordFor] != "wx:for" {
		t.Errorf("other keywords should keep platform defaults: %v", cc.Adapter)
	}
}
