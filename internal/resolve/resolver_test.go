package resolve

import (
	"testing"

	"github.com/codeatlas/codeatlas/internal/types"
)

func fn(name string) *types.CodeGraphNode {
	return &types.CodeGraphNode{Name: name, Kind: types.KindFunction}
}

func file(name string, children ...*types.CodeGraphNode) *types.CodeGraphNode {
	return &types.CodeGraphNode{Name: name, Kind: types.KindFile, Children: children}
}

func class(name string, methods ...*types.CodeGraphNode) *types.CodeGraphNode {
	return &types.CodeGraphNode{Name: name, Kind: types.KindClass, Children: methods}
}

func TestResolveSameFileFunction(t *testing.T) {
	ix := NewIndex()
	ix.AddFile(".", file("app.py", fn("a"), fn("b")))
	ix.Freeze()

	rel, ok := Resolve(types.CallSite{Name: "b"}, Origin{Folder: ".", File: "app.py"}, ix)
	if !ok {
		t.Fatal("expected resolution")
	}
	want := types.CallTarget{".", "app.py", "", "b"}
	if rel.Target != want {
		t.Errorf("Target = %v, want %v", rel.Target, want)
	}
	if rel.Label != LabelCalls {
		t.Errorf("Label = %q, want %q", rel.Label, LabelCalls)
	}
}

func TestResolveSameClassMethodPreferred(t *testing.T) {
	ix := NewIndex()
	ix.AddFile(".", file("svc.py",
		class("Service", fn("helper")),
		fn("helper"),
	))
	ix.Freeze()

	origin := Origin{Folder: ".", File: "svc.py", Class: "Service"}
	rel, ok := Resolve(types.CallSite{Name: "helper", Receiver: "self", IsAttribute: true}, origin, ix)
	if !ok {
		t.Fatal("expected resolution")
	}
	if rel.Target.Class() != "Service" {
		t.Errorf("Class = %q, want Service (same-class method wins over same-file function)", rel.Target.Class())
	}
}

func TestResolveSameFilePreferredOverCrossModule(t *testing.T) {
	ix := NewIndex()
	ix.AddFile(".", file("a.py", fn("shared")))
	ix.AddFile("lib", file("b.py", fn("shared")))
	ix.Freeze()

	rel, ok := Resolve(types.CallSite{Name: "shared"}, Origin{Folder: "lib", File: "b.py"}, ix)
	if !ok {
		t.Fatal("expected resolution")
	}
	if rel.Target.Folder() != "lib" || rel.Target.File() != "b.py" {
		t.Errorf("Target = %v, want same-file declaration", rel.Target)
	}
}

func TestResolveCrossModuleTieBreakIsFirstSeen(t *testing.T) {
	ix := NewIndex()
	ix.AddFile("a", file("first.py", class("Worker", fn("run"))))
	ix.AddFile("b", file("second.py", class("Runner", fn("run"))))
	ix.Freeze()

	// Caller in an unrelated file: both candidates are equally likely, so
	// the first declaration in traversal order must win, every time.
	for i := 0; i < 10; i++ {
		rel, ok := Resolve(types.CallSite{Name: "run", Receiver: "w", IsAttribute: true},
			Origin{Folder: "z", File: "other.py"}, ix)
		if !ok {
			t.Fatal("expected resolution")
		}
		if rel.Target.File() != "first.py" {
			t.Fatalf("Target file = %q, want first.py (deterministic tie-break)", rel.Target.File())
		}
	}
}

func TestResolveUnknownIsDropped(t *testing.T) {
	ix := NewIndex()
	ix.AddFile(".", file("a.py", fn("a")))
	ix.Freeze()

	if _, ok := Resolve(types.CallSite{Name: "nope"}, Origin{Folder: ".", File: "a.py"}, ix); ok {
		t.Error("unknown callee should not resolve")
	}
	if _, ok := Resolve(types.CallSite{}, Origin{Folder: ".", File: "a.py"}, ix); ok {
		t.Error("empty callee should not resolve")
	}
}

func TestTargetAlwaysFourComponents(t *testing.T) {
	ix := NewIndex()
	ix.AddFile("pkg", file("m.py", fn("top"), class("C", fn("method"))))
	ix.Freeze()

	for _, name := range []string{"top", "method"} {
		rel, ok := Resolve(types.CallSite{Name: name}, Origin{Folder: "x", File: "y.py"}, ix)
		if !ok {
			t.Fatalf("expected resolution for %s", name)
		}
		if rel.Target.Function() == "" {
			t.Errorf("%s: empty function component", name)
		}
		if rel.Target.Folder() == "" || rel.Target.File() == "" {
			t.Errorf("%s: empty location components: %v", name, rel.Target)
		}
	}
}

func TestLabelHeuristic(t *testing.T) {
	tests := []struct {
		name string
		site types.CallSite
		want string
	}{
		{"plain call", types.CallSite{Name: "f"}, LabelCalls},
		{"attribute call", types.CallSite{Name: "f", Receiver: "helper", IsAttribute: true}, LabelUses},
		{"http receiver", types.CallSite{Name: "get", Receiver: "httpClient", IsAttribute: true}, LabelFetches},
		{"db receiver", types.CallSite{Name: "query", Receiver: "db", IsAttribute: true}, LabelFetches},
		{"session receiver", types.CallSite{Name: "post", Receiver: "session", IsAttribute: true}, LabelFetches},
		{"no receiver attribute", types.CallSite{Name: "f", IsAttribute: true}, LabelUses},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.site); got != tt.want {
				t.Errorf("Label(%+v) = %q, want %q", tt.site, got, tt.want)
			}
		})
	}
}

func TestIndexNestedFunctions(t *testing.T) {
	outer := fn("outer")
	outer.Children = []*types.CodeGraphNode{fn("inner")}
	ix := NewIndex()
	ix.AddFile(".", file("n.py", outer))
	ix.Freeze()

	if refs := ix.Lookup("inner"); len(refs) != 1 {
		t.Errorf("Lookup(inner) = %d refs, want 1", len(refs))
	}
}

func TestIndexFreezePanicsOnWrite(t *testing.T) {
	ix := NewIndex()
	ix.Freeze()

	defer func() {
		if recover() == nil {
			t.Error("AddFile after Freeze should panic")
		}
	}()
	ix.AddFile(".", file("a.py"))
}
