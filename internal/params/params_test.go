package params

import (
	"net/url"
	"testing"
)

func TestParsePaginationDefaults(t *testing.T) {
	p := ParsePagination(url.Values{})
	if p.Limit != 15 || p.Page != 1 || p.Offset != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestParsePaginationClampsLimit(t *testing.T) {
	cases := []struct {
		limit string
		want  int
	}{
		{"0", 15},
		{"-3", 15},
		{"10", 10},
		{"30", 30},
		{"500", 30},
		{"garbage", 15},
	}
	for _, c := range cases {
		q := url.Values{"limit": {c.limit}}
		if p := ParsePagination(q); p.Limit != c.want {
			t.Errorf("limit %q: got %d, want %d", c.limit, p.Limit, c.want)
		}
	}
}

func TestParsePaginationOffset(t *testing.T) {
	q := url.Values{"page": {"3"}, "limit": {"20"}}
	p := ParsePagination(q)
	if p.Offset != 40 {
		t.Fatalf("expected offset 40, got %d", p.Offset)
	}
}

func TestComputeMeta(t *testing.T) {
	q := url.Values{"page": {"2"}, "limit": {"10"}}
	p := ParsePagination(q)
	p.ComputeMeta(35)

	if p.Total != 35 || p.TotalPages != 4 {
		t.Fatalf("unexpected meta: %+v", p)
	}
	if !p.HasPrev || !p.HasNext {
		t.Fatalf("expected both prev and next on page 2 of 4: %+v", p)
	}

	p.Page = 4
	p.ComputeMeta(35)
	if p.HasNext {
		t.Fatalf("expected no next on last page: %+v", p)
	}
}
