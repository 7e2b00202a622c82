package compiler

import (
	"testing"

	"github.com/recera/compilemode/pkg/jsx"
)

func TestResolveXScriptPath(t *testing.T) {
	aliases := []string{"xs", "fmt"}
	tests := []struct {
		name string
		expr jsx.Expr
		want string
		ok   bool
	}{
		{"direct", jsx.Sel(jsx.Id("xs"), "a"), "xs.a", true},
		{"nested", jsx.Sel(jsx.Id("fmt"), "price", "cents"), "fmt.price.cents", true},
		{"unknown root", jsx.Sel(jsx.Id("props"), "a"), "", false},
		{"computed", &jsx.Member{Object: jsx.Id("xs"), Computed: jsx.Id("k")}, "", false},
		{"computed inside", jsx.Sel(&jsx.Member{Object: jsx.Id("xs"), Computed: jsx.Id("k")}, "a"), "", false},
		{"call root", jsx.Sel(&jsx.Call{Callee: jsx.Id("xs")}, "a"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveXScriptPath(tt.expr.(*jsx.Member), aliases)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveXScriptPath = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
