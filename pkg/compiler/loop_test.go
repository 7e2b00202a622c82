package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/compilemode/pkg/jsx"
)

func TestExtractLoopElement(t *testing.T) {
	row := jsx.SelfClosing("row", jsx.StringAttr("className", "r"))
	call := jsx.MapCall(jsx.Id("list"), &jsx.Arrow{Params: []string{"item"}, Body: row})

	got := ExtractLoop(call)
	if got != row {
		t.Fatalf("ExtractLoop returned %v, want the callback's element", got)
	}

	want := jsx.SelfClosing("row",
		jsx.StringAttr("className", "r"),
		jsx.BoolAttr(AttrCompileFor),
		jsx.StringAttr(AttrCompileForKey, "sid"),
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loop element mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractLoopFragment(t *testing.T) {
	children := []jsx.Node{jsx.NewText("a"), jsx.SelfClosing("b"), jsx.Container(jsx.Id("c"))}
	frag := &jsx.Fragment{Children: children}
	ret := &jsx.Return{Arg: &jsx.Paren{X: frag}}
	fn := &jsx.Func{Params: []string{"item"}, Body: &jsx.Block{Stmts: []jsx.Stmt{
		&jsx.ExprStmt{X: jsx.Id("noop")},
		ret,
	}}}

	got := ExtractLoop(jsx.MapCall(jsx.Id("list"), fn))
	if got == nil {
		t.Fatal("ExtractLoop returned nil for a fragment")
	}

	want := jsx.NewElement("block", []jsx.AttrOrSpread{
		jsx.BoolAttr(AttrCompileFor),
		jsx.StringAttr(AttrCompileForKey, "sid"),
	}, children)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("block mismatch (-want +got):\n%s", diff)
	}
	if ret.Arg != got {
		t.Error("the return slot should hold the block")
	}
}

func TestExtractLoopArrowBlock(t *testing.T) {
	row := jsx.SelfClosing("row")
	arrow := &jsx.Arrow{Params: []string{"x"}, Block: &jsx.Block{Stmts: []jsx.Stmt{&jsx.Return{Arg: row}}}}

	if got := ExtractLoop(jsx.MapCall(jsx.Id("list"), arrow)); got != row {
		t.Fatalf("ExtractLoop = %v, want row", got)
	}
	if len(row.Attrs) != 2 {
		t.Errorf("row has %d attrs, want 2", len(row.Attrs))
	}
}

func TestExtractLoopLeavesNonJSX(t *testing.T) {
	body := &jsx.Paren{X: jsx.Sel(jsx.Id("x"), "name")}
	arrow := &jsx.Arrow{Params: []string{"x"}, Body: body}
	call := jsx.MapCall(jsx.Id("list"), arrow)

	if got := ExtractLoop(call); got != nil {
		t.Fatalf("ExtractLoop = %v, want nil", got)
	}
	if arrow.Body != body {
		t.Error("a non JSX callback body must not be touched")
	}
}

func TestIsLoopCall(t *testing.T) {
	cb := &jsx.Arrow{Body: jsx.SelfClosing("row")}
	tests := []struct {
		name string
		call *jsx.Call
		want bool
	}{
		{"map with arrow", jsx.MapCall(jsx.Id("list"), cb), true},
		{"map with function", jsx.MapCall(jsx.Id("list"), &jsx.Func{Body: &jsx.Block{}}), true},
		{"map with identifier", jsx.MapCall(jsx.Id("list"), jsx.Id("render")), false},
		{"filter", &jsx.Call{Callee: jsx.Sel(jsx.Id("list"), "filter"), Args: []jsx.Expr{cb}}, false},
		{"computed map", &jsx.Call{Callee: &jsx.Member{Object: jsx.Id("list"), Computed: &jsx.StringLit{Value: "map"}}, Args: []jsx.Expr{cb}}, false},
		{"no args", &jsx.Call{Callee: jsx.Sel(jsx.Id("list"), "map")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLoopCall(tt.call); got != tt.want {
				t.Errorf("IsLoopCall = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRenderCall(t *testing.T) {
	if !IsRenderCall(&jsx.Call{Callee: jsx.Id("renderHeader")}) {
		t.Error("renderHeader() should be a render call")
	}
	if !IsRenderCall(&jsx.Call{Callee: jsx.Sel(jsx.Id("this"), "renderItem")}) {
		t.Error("this.renderItem() should be a render call")
	}
	if IsRenderCall(&jsx.Call{Callee: jsx.Id("format")}) {
		t.Error("format() is not a render call")
	}
}
