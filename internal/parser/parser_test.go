package parser

import (
	"context"
	"testing"

	"github.com/codeatlas/codeatlas/internal/types"
)

func parse(t *testing.T, relPath, content string) *FileResult {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := p.ParseFile(context.Background(), relPath, []byte(content))
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", relPath, err)
	}
	return res
}

func TestParsePythonFunctions(t *testing.T) {
	res := parse(t, "app.py", "def a():\n    b()\n\ndef b():\n    pass\n")

	node := res.Node
	if node.Kind != types.KindFile || node.Name != "app.py" {
		t.Fatalf("file node = %s/%s", node.Kind, node.Name)
	}
	if len(node.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(node.Children))
	}
	a, b := node.Children[0], node.Children[1]
	if a.Name != "a" || b.Name != "b" {
		t.Errorf("declaration order = %s, %s; want a, b", a.Name, b.Name)
	}
	if a.StartLine != 1 || b.StartLine != 4 {
		t.Errorf("start lines = %d, %d; want 1, 4", a.StartLine, b.StartLine)
	}
	if len(a.Sites) != 1 || a.Sites[0].Name != "b" {
		t.Errorf("a.Sites = %+v, want one call to b", a.Sites)
	}
	if len(b.Sites) != 0 {
		t.Errorf("b.Sites = %+v, want none", b.Sites)
	}
	if a.Complexity == nil || a.Complexity.Cyclomatic != 1 {
		t.Errorf("a.Complexity = %+v, want cyclomatic 1", a.Complexity)
	}
}

func TestParsePythonClass(t *testing.T) {
	src := `class Service:
    def fetch(self):
        return self.client.get("/")

    def helper(self):
        self.fetch()
`
	res := parse(t, "svc.py", src)

	if len(res.Node.Children) != 1 {
		t.Fatalf("children = %d, want 1 class", len(res.Node.Children))
	}
	cls := res.Node.Children[0]
	if cls.Kind != types.KindClass || cls.Name != "Service" {
		t.Fatalf("class node = %s/%s", cls.Kind, cls.Name)
	}
	if len(cls.Children) != 2 {
		t.Fatalf("methods = %d, want 2", len(cls.Children))
	}

	helper := cls.Children[1]
	if len(helper.Sites) != 1 {
		t.Fatalf("helper.Sites = %+v, want one", helper.Sites)
	}
	site := helper.Sites[0]
	if site.Name != "fetch" || !site.IsAttribute || site.Receiver != "self" {
		t.Errorf("site = %+v, want self.fetch attribute call", site)
	}
}

func TestParsePythonNestedFunctions(t *testing.T) {
	src := "def outer():\n    def inner():\n        pass\n    inner()\n"
	res := parse(t, "n.py", src)

	outer := res.Node.Children[0]
	if len(outer.Children) != 1 || outer.Children[0].Name != "inner" {
		t.Fatalf("outer.Children = %+v, want nested inner", outer.Children)
	}
	if len(outer.Sites) != 1 || outer.Sites[0].Name != "inner" {
		t.Errorf("outer.Sites = %+v, want call to inner", outer.Sites)
	}
}

func TestParsePythonDecorated(t *testing.T) {
	src := "@app.route(\"/\")\ndef index():\n    pass\n"
	res := parse(t, "web.py", src)

	if len(res.Node.Children) != 1 || res.Node.Children[0].Name != "index" {
		t.Fatalf("children = %+v, want decorated index function", res.Node.Children)
	}
}

func TestParseGoStructAndMethods(t *testing.T) {
	src := `package svc

type Store struct{}

func (s *Store) Get(id string) string {
	return s.lookup(id)
}

func (s *Store) lookup(id string) string {
	return id
}

func Standalone() {}
`
	res := parse(t, "store.go", src)

	if len(res.Node.Children) != 2 {
		t.Fatalf("children = %d, want class + standalone function", len(res.Node.Children))
	}
	cls := res.Node.Children[0]
	if cls.Kind != types.KindClass || cls.Name != "Store" {
		t.Fatalf("class = %s/%s, want class/Store", cls.Kind, cls.Name)
	}
	if len(cls.Children) != 2 {
		t.Fatalf("methods = %d, want 2", len(cls.Children))
	}
	get := cls.Children[0]
	if len(get.Sites) != 1 || get.Sites[0].Name != "lookup" || !get.Sites[0].IsAttribute {
		t.Errorf("Get.Sites = %+v, want s.lookup attribute call", get.Sites)
	}
}

func TestParseJSClassAndArrow(t *testing.T) {
	src := `export class Api {
  fetchUsers() {
    return httpClient.get("/users");
  }
}

const format = (x) => {
  return render(x);
};

function render(x) { return x; }
`
	res := parse(t, "api.js", src)

	if len(res.Node.Children) != 3 {
		t.Fatalf("children = %d, want class + arrow + function", len(res.Node.Children))
	}
	cls := res.Node.Children[0]
	if cls.Kind != types.KindClass || cls.Name != "Api" {
		t.Fatalf("class = %s/%s", cls.Kind, cls.Name)
	}
	method := cls.Children[0]
	if len(method.Sites) != 1 || method.Sites[0].Receiver != "httpClient" {
		t.Errorf("method.Sites = %+v, want httpClient.get", method.Sites)
	}

	arrow := res.Node.Children[1]
	if arrow.Name != "format" || arrow.Kind != types.KindFunction {
		t.Errorf("arrow node = %s/%s, want function/format", arrow.Kind, arrow.Name)
	}
	if len(arrow.Sites) != 1 || arrow.Sites[0].Name != "render" {
		t.Errorf("arrow.Sites = %+v, want call to render", arrow.Sites)
	}
}

func TestParseMalformedSourceFails(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.ParseFile(context.Background(), "bad.py", []byte("def broken(:\n"))
	if err == nil {
		t.Fatal("expected parse error for malformed source")
	}
}

func TestParseUnsupportedExtensionFails(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.ParseFile(context.Background(), "notes.txt", []byte("hello"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
