package parse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/compilemode/pkg/compiler"
	"github.com/recera/compilemode/pkg/jsx"
)

const pageSource = `import { View, Text, List as HostList } from '@tarojs/components'
import xs from './utils.wxs'
import * as lib from 'lib'

export default function Page({ list, name }) {
  return (
    <View compileMode className="page">
      <Text>Hello {name}</Text>
      <View className="list">
        {list.map(item => <View key={item.id}>{xs.label}</View>)}
      </View>
    </View>
  )
}

function Other() {
  return <View>not compiled</View>
}
`

func TestParseFile(t *testing.T) {
	f, err := Parse(context.Background(), []byte(pageSource), "page.jsx")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(f.Roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(f.Roots))
	}
	roots := f.CompileRoots(false)
	if len(roots) != 1 {
		t.Fatalf("got %d compile roots, want 1", len(roots))
	}
	if len(f.CompileRoots(true)) != 2 {
		t.Error("CompileRoots(true) should return every root")
	}

	wantImports := compiler.ImportMaps{
		Aliases: map[string]string{"View": "View", "Text": "Text", "List": "HostList"},
		Specifiers: map[string]string{
			"View":     "@tarojs/components",
			"Text":     "@tarojs/components",
			"HostList": "@tarojs/components",
			"xs":       "./utils.wxs",
			"lib":      "lib",
		},
	}
	if diff := cmp.Diff(wantImports, f.Imports); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"xs"}, f.XSModules); diff != "" {
		t.Errorf("xs modules mismatch (-want +got):\n%s", diff)
	}

	root := roots[0]
	if tag, _ := root.Tag(); tag != "View" {
		t.Errorf("root tag = %q", tag)
	}
	cls, ok := root.Attr("className")
	if !ok {
		t.Fatal("className missing")
	}
	if lit, ok := cls.Value.(*jsx.StringLit); !ok || lit.Value != "page" {
		t.Errorf("className = %s", jsx.Print(cls.Value))
	}
	if n := compiler.CountValidChildren(root.Children); n != 2 {
		t.Errorf("root has %d valid children, want 2", n)
	}
	var elems []*jsx.Element
	for _, c := range root.Children {
		if el, ok := c.(*jsx.Element); ok {
			elems = append(elems, el)
		}
	}
	if len(elems) != 2 {
		t.Fatalf("root has %d element children, want 2", len(elems))
	}
	if compiler.ChildrenHaveLoop(root) || !compiler.ChildrenHaveLoop(elems[1]) {
		t.Error("loop child not recognised")
	}
}

func TestParseAndCompile(t *testing.T) {
	f, err := Parse(context.Background(), []byte(pageSource), "page.jsx")
	if err != nil {
		t.Fatal(err)
	}

	u := compiler.NewUnit(nil, f.Imports, f.XSModules...)
	tmpl, err := u.Compile(f.CompileRoots(false)[0])
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`<view class="page" compile-id="n0">`,
		`<text compile-id="n1">`,
		`<block>{{i.cn[0].cn[1].v}}</block>`,
		`<view class="list">`,
		`<view key="{{item.key}}" wx:for="{{i.cn[1].cn}}" wx:key="sid" compile-id="n3">`,
		`{{xs.label}}`,
	} {
		if !strings.Contains(tmpl.Body, want) {
			t.Errorf("template missing %q:\n%s", want, tmpl.Body)
		}
	}
}

func TestParseExpressions(t *testing.T) {
	src := `const a = <View
  style={{ color: 'red' }}
  {...rest}
  title={ok ? 'y' : 'n'}
  data-x={list[0]}
  onTap={function handle(e) { return go(e) }}
  hidden
/>`

	f, err := Parse(context.Background(), []byte(src), "a.jsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Roots) != 1 {
		t.Fatalf("got %d roots", len(f.Roots))
	}
	el := f.Roots[0]
	if !el.SelfClosing {
		t.Error("element should be self closing")
	}

	var kinds []string
	for _, a := range el.Attrs {
		switch a := a.(type) {
		case *jsx.SpreadAttr:
			kinds = append(kinds, "spread")
		case *jsx.Attr:
			switch v := a.Value.(type) {
			case nil:
				kinds = append(kinds, a.Key+":bool")
			case *jsx.ExprContainer:
				switch v.Expr.(type) {
				case *jsx.Cond:
					kinds = append(kinds, a.Key+":cond")
				case *jsx.Member:
					kinds = append(kinds, a.Key+":member")
				case *jsx.Func:
					kinds = append(kinds, a.Key+":func")
				case *jsx.Raw:
					kinds = append(kinds, a.Key+":raw")
				}
			}
		}
	}

	want := []string{"style:raw", "spread", "title:cond", "data-x:member", "onTap:func", "hidden:bool"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("attribute kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChildren(t *testing.T) {
	src := "const a = <View>\n  one &amp; two\n  <Text />\n  <>x</>\n</View>"

	f, err := Parse(context.Background(), []byte(src), "a.jsx")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(f.Roots))
	}

	children := f.Roots[0].Children
	text, ok := children[0].(*jsx.Text)
	if !ok || compiler.NormalizeText(text.Value) != "one &amp; two" {
		t.Errorf("first child = %s", jsx.Print(children[0]))
	}
	if n := compiler.CountValidChildren(children); n != 3 {
		t.Errorf("got %d valid children, want 3", n)
	}

	var frag *jsx.Fragment
	for _, c := range children {
		if v, ok := c.(*jsx.Fragment); ok {
			frag = v
		}
	}
	if frag == nil || len(frag.Children) != 1 {
		t.Errorf("fragment child not parsed: %s", jsx.Print(f.Roots[0]))
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("const a = <View>"), "broken.jsx")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if !errors.Is(err, compiler.ErrSyntax) {
		t.Errorf("error %v does not match ErrSyntax", err)
	}
	if !strings.Contains(err.Error(), "broken.jsx") {
		t.Errorf("error %q should name the file", err)
	}
}

func TestParseTypeScript(t *testing.T) {
	src := `import { View } from '@tarojs/components'

interface Props { name: string; list?: Item[] }

export const Page = (p: Props) => (
  <View compileMode>
    {p.name as string}
    <View>{p.list!.map((item: Item) => <View>{item.title}</View>)}</View>
  </View>
)
`
	f, err := Parse(context.Background(), []byte(src), "page.tsx")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	roots := f.CompileRoots(false)
	if len(roots) != 1 {
		t.Fatalf("got %d compile roots, want 1", len(roots))
	}

	u := compiler.NewUnit(nil, f.Imports, f.XSModules...)
	tmpl, err := u.Compile(roots[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<block>{{i.cn[0].v}}</block>`,
		`wx:for="{{i.cn[1].cn}}"`,
		`<block>{{item.cn[0].v}}</block>`,
	} {
		if !strings.Contains(tmpl.Body, want) {
			t.Errorf("template missing %q:\n%s", want, tmpl.Body)
		}
	}
}

func TestLanguageForExtension(t *testing.T) {
	tsOnly := "let n: number = 1\n"
	if _, err := Parse(context.Background(), []byte(tsOnly), "a.ts"); err != nil {
		t.Errorf(".ts should parse as TypeScript: %v", err)
	}
	if _, err := Parse(context.Background(), []byte(tsOnly), "a.js"); err == nil {
		t.Error(".js should not accept type annotations")
	}
}
