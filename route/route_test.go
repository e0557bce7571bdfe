package route

import (
	"testing"

	"github.com/yourusername/relay/http1"
)

func handlerStub(status int) Handler {
	return func(req *http1.Request) *http1.Response {
		return http1.NewResponse(status, nil)
	}
}

func TestMatchHit(t *testing.T) {
	tbl := NewTable()
	tbl.Register("/users", []string{"GET"}, handlerStub(200))

	res := tbl.Match("/users", "GET")
	if res.Kind != Hit {
		t.Fatalf("Kind = %v, want Hit", res.Kind)
	}
}

func TestMatchMethodNotAllowed(t *testing.T) {
	tbl := NewTable()
	tbl.Register("/users", []string{"GET", "POST"}, handlerStub(200))

	res := tbl.Match("/users", "DELETE")
	if res.Kind != MethodNotAllowed {
		t.Fatalf("Kind = %v, want MethodNotAllowed", res.Kind)
	}
	if len(res.Allowed) != 2 {
		t.Fatalf("Allowed = %v, want 2 entries", res.Allowed)
	}
}

func TestMatchMiss(t *testing.T) {
	tbl := NewTable()
	tbl.Register("/users", []string{"GET"}, handlerStub(200))

	res := tbl.Match("/missing", "GET")
	if res.Kind != Miss {
		t.Fatalf("Kind = %v, want Miss", res.Kind)
	}
}

func TestMatchFirstRegistrationWins(t *testing.T) {
	tbl := NewTable()
	tbl.Register("/x", []string{"GET"}, handlerStub(201))
	tbl.Register("/x", []string{"GET"}, handlerStub(202))

	res := tbl.Match("/x", "GET")
	if res.Kind != Hit {
		t.Fatalf("Kind = %v, want Hit", res.Kind)
	}
	resp := res.Handler(nil)
	if resp.Status != 201 {
		t.Fatalf("Status = %d, want 201 (first registration wins)", resp.Status)
	}
}

func TestMatchEmptyMethodsMatchesAny(t *testing.T) {
	tbl := NewTable()
	tbl.Register("/any", nil, handlerStub(200))

	if res := tbl.Match("/any", "DELETE"); res.Kind != Hit {
		t.Fatalf("Kind = %v, want Hit for route with no method restriction", res.Kind)
	}
}
