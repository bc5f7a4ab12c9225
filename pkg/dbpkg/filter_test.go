package dbpkg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilter(t *testing.T) {
	testCases := []struct {
		name      string
		build     func(f *Filter) string
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "NoConditions",
			build: func(f *Filter) string {
				return f.Where() + " " + f.OrderBy("id", false, "id") + " " + f.Page(10, 0)
			},
			wantQuery: " ORDER BY id ASC LIMIT $1 OFFSET $2",
			wantArgs:  []any{int32(10), int32(0)},
		},
		{
			name: "Conditions",
			build: func(f *Filter) string {
				f.Eq("t.txid", "abc")
				f.Eq("w.label", "main")
				return f.Where() + " " + f.OrderBy("t.amount", true, "t.id") + " " + f.Page(5, 10)
			},
			wantQuery: "WHERE t.txid = $1 AND w.label = $2 ORDER BY t.amount DESC, t.id ASC LIMIT $3 OFFSET $4",
			wantArgs:  []any{"abc", "main", int32(5), int32(10)},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			var f Filter

			if got := tc.build(&f); got != tc.wantQuery {
				t.Errorf("query = %q, want %q", got, tc.wantQuery)
			}

			if diff := cmp.Diff(tc.wantArgs, f.Args()); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
