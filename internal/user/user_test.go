// AngelaMos | 2026
// user_test.go

package user

import (
	"strings"
	"testing"
)

func TestListUsersParams_Normalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		in           ListUsersParams
		wantPage     int
		wantPageSize int
		wantOffset   int
	}{
		{
			name:         "zero values",
			in:           ListUsersParams{},
			wantPage:     1,
			wantPageSize: 20,
			wantOffset:   0,
		},
		{
			name:         "negative page",
			in:           ListUsersParams{Page: -3, PageSize: 10},
			wantPage:     1,
			wantPageSize: 10,
			wantOffset:   0,
		},
		{
			name:         "page size capped",
			in:           ListUsersParams{Page: 2, PageSize: 500},
			wantPage:     2,
			wantPageSize: 100,
			wantOffset:   100,
		},
		{
			name:         "third page",
			in:           ListUsersParams{Page: 3, PageSize: 25},
			wantPage:     3,
			wantPageSize: 25,
			wantOffset:   50,
		},
	}

	for _, tc := range cases {
		tc.in.Normalize()
		if tc.in.Page != tc.wantPage || tc.in.PageSize != tc.wantPageSize {
			t.Fatalf("%s: got page=%d size=%d", tc.name, tc.in.Page, tc.in.PageSize)
		}
		if tc.in.Offset() != tc.wantOffset {
			t.Fatalf("%s: got offset=%d want %d", tc.name, tc.in.Offset(), tc.wantOffset)
		}
	}
}

func TestBuildListFilter(t *testing.T) {
	t.Parallel()

	where, args := buildListFilter(ListUsersParams{})
	if where != "" || len(args) != 0 {
		t.Fatalf("empty params should produce no filter, got %q %v", where, args)
	}

	where, args = buildListFilter(ListUsersParams{
		Search: "ali",
		Role:   "user",
		Status: "active",
	})
	if !strings.HasPrefix(where, " WHERE ") {
		t.Fatalf("expected WHERE clause, got %q", where)
	}
	if !strings.Contains(where, "ILIKE $1") {
		t.Fatalf("search should bind first, got %q", where)
	}
	if !strings.Contains(where, "role = $2") || !strings.Contains(where, "status = $3") {
		t.Fatalf("role and status placeholders wrong: %q", where)
	}
	if len(args) != 3 || args[0] != "%ali%" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	if got := escapeLike("50%_off\\"); got != `50\%\_off\\` {
		t.Fatalf("escapeLike got %q", got)
	}
	if got := escapeLike("plain"); got != "plain" {
		t.Fatalf("escapeLike should pass plain strings, got %q", got)
	}
}

func TestDeriveUsername(t *testing.T) {
	t.Parallel()

	got := deriveUsername("Alice.Smith+test@example.com")
	if !strings.HasPrefix(got, "alicesmithtest-") {
		t.Fatalf("unexpected prefix: %q", got)
	}

	// suffix keeps collisions on the same email apart
	if deriveUsername("bob@example.com") == deriveUsername("bob@example.com") {
		t.Fatalf("derived usernames should not collide")
	}

	// unusable local parts fall back to a stub
	if !strings.HasPrefix(deriveUsername("@example.com"), "user-") {
		t.Fatalf("empty local part should fall back")
	}
}
