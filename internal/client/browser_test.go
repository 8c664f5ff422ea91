package client

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/simp-lee/catalog/internal/domain"
)

type stubAPI struct {
	lists   []Filters
	listErr error
	page    *domain.ProductPage

	created   []CreateProductInput
	createErr error
	deleted   []uint
	deleteErr error
}

func (s *stubAPI) ListProducts(_ context.Context, f Filters) (*domain.ProductPage, error) {
	s.lists = append(s.lists, f)
	if s.listErr != nil {
		return nil, s.listErr
	}
	page := *s.page
	page.Page = f.Page
	return &page, nil
}

func (s *stubAPI) CreateProduct(_ context.Context, in CreateProductInput) (*domain.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, in)
	return &domain.Product{ID: 9, Name: in.Name, Price: in.Price}, nil
}

func (s *stubAPI) DeleteProduct(_ context.Context, id uint) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func newStubAPI() *stubAPI {
	return &stubAPI{page: &domain.ProductPage{
		Products:   []domain.Product{{ID: 1, Name: "AirPods Pro"}},
		Total:      1,
		TotalPages: 1,
	}}
}

func TestBrowser_Initial(t *testing.T) {
	b := NewBrowser(newStubAPI())

	if b.Filters() != DefaultFilters() {
		t.Errorf("filters = %+v, want defaults", b.Filters())
	}
	r := b.Result()
	if r == nil || r.Page != 1 || r.TotalPages != 1 || len(r.Products) != 0 {
		t.Errorf("initial result = %+v", r)
	}
}

func TestBrowser_SortByToggles(t *testing.T) {
	api := newStubAPI()
	b := NewBrowser(api)
	ctx := context.Background()

	steps := []struct {
		field     string
		wantSort  string
		wantOrder string
	}{
		{"name", "name", "desc"},
		{"name", "name", "asc"},
		{"price", "price", "asc"},
		{"price", "price", "desc"},
		{"name", "name", "asc"},
	}
	for i, s := range steps {
		if err := b.SortBy(ctx, s.field); err != nil {
			t.Fatalf("step %d: SortBy() error: %v", i, err)
		}
		f := b.Filters()
		if f.Sort != s.wantSort || f.Order != s.wantOrder {
			t.Errorf("step %d: sort=%s order=%s, want %s %s", i, f.Sort, f.Order, s.wantSort, s.wantOrder)
		}
	}
	if len(api.lists) != len(steps) {
		t.Errorf("fetches = %d, want %d", len(api.lists), len(steps))
	}
}

func TestBrowser_SearchResetsPage(t *testing.T) {
	api := newStubAPI()
	b := NewBrowser(api)
	ctx := context.Background()

	if err := b.SetPage(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if err := b.Search(ctx, "pro"); err != nil {
		t.Fatal(err)
	}

	f := b.Filters()
	if f.Page != 1 || f.Search != "pro" {
		t.Errorf("filters = %+v, want page 1 search pro", f)
	}
	if got := api.lists[len(api.lists)-1]; got != f {
		t.Errorf("fetched with %+v, want %+v", got, f)
	}
}

func TestBrowser_SetPageClampsLow(t *testing.T) {
	b := NewBrowser(newStubAPI())
	if err := b.SetPage(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if b.Filters().Page != 1 {
		t.Errorf("page = %d, want 1", b.Filters().Page)
	}
}

func TestBrowser_SetLimitResetsPage(t *testing.T) {
	b := NewBrowser(newStubAPI())
	ctx := context.Background()
	_ = b.SetPage(ctx, 4)

	if err := b.SetLimit(ctx, 25); err != nil {
		t.Fatal(err)
	}
	if f := b.Filters(); f.Limit != 25 || f.Page != 1 {
		t.Errorf("filters = %+v, want limit 25 page 1", f)
	}
}

func TestBrowser_FailedFetchKeepsPreviousResult(t *testing.T) {
	api := newStubAPI()
	b := NewBrowser(api)
	ctx := context.Background()

	if err := b.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	before := b.Result()

	boom := errors.New("connection refused")
	api.listErr = boom
	if err := b.SetPage(ctx, 2); !errors.Is(err, boom) {
		t.Fatalf("SetPage() error = %v, want %v", err, boom)
	}
	if b.Result() != before {
		t.Error("result replaced after failed fetch")
	}
	if !errors.Is(b.Err(), boom) {
		t.Errorf("Err() = %v, want %v", b.Err(), boom)
	}

	api.listErr = nil
	if err := b.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if b.Err() != nil {
		t.Errorf("Err() = %v after recovery, want nil", b.Err())
	}
}

func TestBrowser_CreateAndDeleteRefetch(t *testing.T) {
	api := newStubAPI()
	b := NewBrowser(api)
	ctx := context.Background()

	p, err := b.Create(ctx, CreateProductInput{Name: "Pencil", Price: decimal.NewFromInt(129)})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.ID != 9 {
		t.Errorf("created id = %d, want 9", p.ID)
	}
	if err := b.Delete(ctx, 9); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if len(api.lists) != 2 {
		t.Errorf("fetches = %d, want one after each mutation", len(api.lists))
	}
	if len(api.deleted) != 1 || api.deleted[0] != 9 {
		t.Errorf("deleted = %v, want [9]", api.deleted)
	}
}

func TestBrowser_FailedMutationSkipsRefetch(t *testing.T) {
	api := newStubAPI()
	api.deleteErr = &APIError{StatusCode: 404, Message: "Product not found"}
	b := NewBrowser(api)

	err := b.Delete(context.Background(), 77)
	if !IsNotFound(err) {
		t.Fatalf("Delete() error = %v, want not found", err)
	}
	if len(api.lists) != 0 {
		t.Errorf("fetches = %d, want 0", len(api.lists))
	}
	if b.Err() == nil {
		t.Error("Err() = nil, want recorded error")
	}
}
