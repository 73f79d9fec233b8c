package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vunguard/ledger/internal/catalog/domain"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uint]*domain.Product
	nextID   uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]*domain.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	copy := *product
	r.products[product.ID] = &copy
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *fakeProductRepo) List(_ context.Context, productType domain.ProductType, offset, limit int) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		if productType == "" || p.Type == productType {
			copy := *p
			out = append(out, &copy)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Save(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *product
	r.products[product.ID] = &copy
	return nil
}

type recordingPublisher struct {
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, event any) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestCreateProduct(t *testing.T) {
	repo := newFakeProductRepo()
	publisher := &recordingPublisher{}
	commands := NewCatalogCommandService(repo, publisher)

	dto, err := commands.CreateProduct(context.Background(), CreateProductCommand{
		Name:   "Global Equity Fund",
		Symbol: "GEF",
		Type:   domain.ProductTypeFund,
		Price:  decimal.RequireFromString("101.50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.ID == 0 || dto.Price != "101.50" || !dto.Active {
		t.Fatalf("dto = %+v", dto)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != "catalog.product.created" {
		t.Fatalf("published topics = %v", publisher.topics)
	}
}

func TestCreateProductValidation(t *testing.T) {
	commands := NewCatalogCommandService(newFakeProductRepo(), nil)

	cases := []CreateProductCommand{
		{Symbol: "GEF", Type: domain.ProductTypeFund, Price: decimal.NewFromInt(1)},
		{Name: "X", Type: domain.ProductTypeFund, Price: decimal.NewFromInt(1)},
		{Name: "X", Symbol: "GEF", Type: "crypto", Price: decimal.NewFromInt(1)},
		{Name: "X", Symbol: "GEF", Type: domain.ProductTypeFund, Price: decimal.Zero},
	}
	for i, cmd := range cases {
		if _, err := commands.CreateProduct(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidProduct) {
			t.Errorf("case %d: error = %v, want ErrInvalidProduct", i, err)
		}
	}
}

func TestUpdatePricePublishesChange(t *testing.T) {
	repo := newFakeProductRepo()
	publisher := &recordingPublisher{}
	commands := NewCatalogCommandService(repo, publisher)
	queries := NewCatalogQueryService(repo)

	created, err := commands.CreateProduct(context.Background(), CreateProductCommand{
		Name: "Bond", Symbol: "BND", Type: domain.ProductTypeBond,
		Price: decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := commands.UpdatePrice(context.Background(), UpdatePriceCommand{
		ProductID: created.ID,
		Price:     decimal.RequireFromString("102.25"),
	})
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if updated.Price != "102.25" {
		t.Fatalf("price = %s, want 102.25", updated.Price)
	}
	if publisher.topics[len(publisher.topics)-1] != "catalog.product.price_changed" {
		t.Fatalf("topics = %v", publisher.topics)
	}

	loaded, err := queries.GetProduct(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Price != "102.25" {
		t.Fatalf("reloaded price = %s", loaded.Price)
	}
}

func TestUpdatePriceUnknownProduct(t *testing.T) {
	commands := NewCatalogCommandService(newFakeProductRepo(), nil)
	_, err := commands.UpdatePrice(context.Background(), UpdatePriceCommand{
		ProductID: 42, Price: decimal.NewFromInt(1),
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	queries := NewCatalogQueryService(newFakeProductRepo())
	if _, err := queries.GetProduct(context.Background(), 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}
