package client

import "testing"

func TestDefaultFilters(t *testing.T) {
	f := DefaultFilters()
	if f.Page != 1 || f.Limit != 10 || f.Sort != "name" || f.Order != "asc" || f.Search != "" {
		t.Errorf("DefaultFilters() = %+v", f)
	}
}

func TestFiltersValues(t *testing.T) {
	got := DefaultFilters().Values()

	want := map[string]string{"page": "1", "limit": "10", "sort": "name", "order": "asc", "search": ""}
	for k, v := range want {
		if !got.Has(k) {
			t.Errorf("missing key %q", k)
			continue
		}
		if got.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, got.Get(k), v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("Values() has %d keys, want %d", len(got), len(want))
	}
}
