package runtime

import (
	"strings"
	"testing"
)

func TestLocalContextScoping(t *testing.T) {
	root := NewLocalContext(nil)
	if err := root.DefineValue("a", Int(1)); err != nil {
		t.Fatalf("define a: %v", err)
	}
	if err := root.DefineFinalValue("limit", Int(10)); err != nil {
		t.Fatalf("define limit: %v", err)
	}

	child := root.Extend()
	if child.Parent() != root {
		t.Fatalf("Extend must nest under the receiver")
	}
	if err := child.DefineValue("a", Int(2)); err == nil || err.Error() != "Variable 'a' already defined" {
		t.Fatalf("expected redeclaration error, got %v", err)
	}
	if err := child.SetValue("a", Int(5)); err != nil {
		t.Fatalf("set through child: %v", err)
	}
	if v, err := root.GetValue("a"); err != nil || v != Int(5) {
		t.Fatalf("write must reach the declaring scope, got %v %v", v, err)
	}
	if err := child.SetValue("limit", Int(0)); err == nil || err.Error() != "Cannot assign a value to final variable 'limit'" {
		t.Fatalf("expected final error, got %v", err)
	}
	if _, err := child.GetValue("b"); err == nil || err.Error() != "Variable 'b' is not defined" {
		t.Fatalf("expected undefined read error, got %v", err)
	}
	if err := child.SetValue("b", Int(1)); err == nil || !strings.Contains(err.Error(), "is not defined") {
		t.Fatalf("expected undefined write error, got %v", err)
	}
	if !child.IsFinal("limit") || child.IsFinal("a") {
		t.Fatalf("IsFinal must follow the visible binding")
	}

	if err := child.DefineValue("local", String("x")); err != nil {
		t.Fatalf("define local: %v", err)
	}
	if root.IsDefined("local") {
		t.Fatalf("child declarations must not leak to the parent")
	}
	sibling := root.Extend()
	if err := sibling.DefineValue("local", Int(0)); err != nil {
		t.Fatalf("siblings may reuse names: %v", err)
	}
}

func TestLocalContextIntrospection(t *testing.T) {
	root := NewLocalContext(nil)
	_ = root.DefineValue("z", Int(1))
	_ = root.DefineValue("b", Null)
	child := root.Extend()
	_ = child.DefineValue("c", True)

	if got := strings.Join(root.Names(), ","); got != "b,z" {
		t.Fatalf("unexpected names %s", got)
	}
	snap := child.Snapshot()
	if len(snap) != 1 || snap["c"] != True {
		t.Fatalf("snapshot must hold only own bindings, got %v", snap)
	}
	snap["c"] = False
	if v, _ := child.GetValue("c"); v != True {
		t.Fatalf("snapshot must be a copy")
	}
}
