package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

func testOrder(buyerID uuid.UUID, lines ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		FirstName: "Nora",
		LastName:  "Klavina",
		Email:     "nora@example.com",
		Phone:     "+371 26000000",
		Country:   "Latvia",
		City:      "Riga",
		Street:    "Brivibas iela 1",
		Apartment: "12",
		Items:     lines,
		CreatedAt: time.Now(),
	}
}

func TestPlace_PersistsSnapshotAndDecrementsStock(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	seller := seedUser(t, domain.RoleSeller)
	buyer := seedUser(t, domain.RoleCustomer)
	product := seedProductRow(t, "Ceramic Mug", 10.0, 5, seller.ID)

	order := testOrder(buyer.ID, domain.OrderItem{ProductID: product.ID, Quantity: 2})
	sellers, err := repo.Place(ctx, order)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if order.TotalPrice != 20.0 {
		t.Errorf("total = %v, want 20", order.TotalPrice)
	}
	if len(sellers) != 1 || sellers[0].ID != seller.ID || sellers[0].Email != seller.Email {
		t.Errorf("sellers = %+v", sellers)
	}
	if got := productStock(t, product.ID); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}

	// Reload through the repository to confirm the snapshot persisted.
	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("stored items = %d, want 1", len(stored.Items))
	}
	item := stored.Items[0]
	if item.Title != "Ceramic Mug" || item.Price != 10.0 || item.Total != 20.0 || item.SellerID != seller.ID {
		t.Errorf("stored item = %+v", item)
	}
}

func TestPlace_SnapshotSurvivesLaterPriceChange(t *testing.T) {
	orderRepo := NewOrderRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	seller := seedUser(t, domain.RoleSeller)
	buyer := seedUser(t, domain.RoleCustomer)
	product := seedProductRow(t, "Teapot", 25.0, 10, seller.ID)

	order := testOrder(buyer.ID, domain.OrderItem{ProductID: product.ID, Quantity: 1})
	if _, err := orderRepo.Place(ctx, order); err != nil {
		t.Fatalf("place: %v", err)
	}

	// Raise the price after the sale.
	product.Price = 99.0
	product.UpdatedAt = time.Now()
	if err := productRepo.Update(ctx, product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	stored, err := orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Items[0].Price != 25.0 || stored.TotalPrice != 25.0 {
		t.Errorf("snapshot changed with catalog: price=%v total=%v", stored.Items[0].Price, stored.TotalPrice)
	}
}

func TestPlace_InsufficientStockRollsBackWholeOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	seller := seedUser(t, domain.RoleSeller)
	buyer := seedUser(t, domain.RoleCustomer)
	plentiful := seedProductRow(t, "Notebook", 5.0, 100, seller.ID)
	scarce := seedProductRow(t, "Fountain Pen", 40.0, 1, seller.ID)

	order := testOrder(buyer.ID,
		domain.OrderItem{ProductID: plentiful.ID, Quantity: 3},
		domain.OrderItem{ProductID: scarce.ID, Quantity: 2},
	)

	_, err := repo.Place(ctx, order)

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != scarce.ID || stockErr.Requested != 2 || stockErr.Available != 1 {
		t.Errorf("error = %+v", stockErr)
	}

	// The earlier line's decrement must have been rolled back.
	if got := productStock(t, plentiful.ID); got != 100 {
		t.Errorf("plentiful stock = %d, want 100", got)
	}
	if got := productStock(t, scarce.ID); got != 1 {
		t.Errorf("scarce stock = %d, want 1", got)
	}

	if _, err := repo.FindByID(ctx, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("order persisted despite rollback: %v", err)
	}
}

func TestPlace_UnknownProductRollsBack(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	seller := seedUser(t, domain.RoleSeller)
	buyer := seedUser(t, domain.RoleCustomer)
	product := seedProductRow(t, "Poster", 12.0, 10, seller.ID)

	order := testOrder(buyer.ID,
		domain.OrderItem{ProductID: product.ID, Quantity: 1},
		domain.OrderItem{ProductID: uuid.New(), Quantity: 1},
	)

	if _, err := repo.Place(ctx, order); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	if got := productStock(t, product.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

func TestPlace_DistinctSellersInFirstAppearanceOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	sellerA := seedUser(t, domain.RoleSeller)
	sellerB := seedUser(t, domain.RoleSeller)
	buyer := seedUser(t, domain.RoleCustomer)

	first := seedProductRow(t, "Mug", 8.0, 10, sellerA.ID)
	second := seedProductRow(t, "Plate", 12.0, 10, sellerB.ID)
	third := seedProductRow(t, "Bowl", 9.0, 10, sellerA.ID)

	order := testOrder(buyer.ID,
		domain.OrderItem{ProductID: first.ID, Quantity: 1},
		domain.OrderItem{ProductID: second.ID, Quantity: 1},
		domain.OrderItem{ProductID: third.ID, Quantity: 1},
	)

	sellers, err := repo.Place(ctx, order)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if len(sellers) != 2 {
		t.Fatalf("sellers = %d, want 2", len(sellers))
	}
	if sellers[0].ID != sellerA.ID || sellers[1].ID != sellerB.ID {
		t.Errorf("seller order = %v", sellers)
	}
}

func TestFindByID_ItemsKeepSubmittedOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	seller := seedUser(t, domain.RoleSeller)
	buyer := seedUser(t, domain.RoleCustomer)

	// All lines of one order share a single created_at, so read-back order
	// must come from the stored line number, not the timestamp.
	var want []uuid.UUID
	var lines []domain.OrderItem
	for i, title := range []string{"Vase", "Clock", "Mirror", "Shelf"} {
		product := seedProductRow(t, title, float64(i+1), 10, seller.ID)
		want = append(want, product.ID)
		lines = append(lines, domain.OrderItem{ProductID: product.ID, Quantity: 1})
	}

	order := testOrder(buyer.ID, lines...)
	if _, err := repo.Place(ctx, order); err != nil {
		t.Fatalf("place: %v", err)
	}

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(stored.Items) != len(want) {
		t.Fatalf("stored items = %d, want %d", len(stored.Items), len(want))
	}
	for i, item := range stored.Items {
		if item.ProductID != want[i] {
			t.Errorf("line %d = %s, want %s", i, item.ProductID, want[i])
		}
	}
}

func TestListByBuyer_ScopedToBuyer(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	seller := seedUser(t, domain.RoleSeller)
	alice := seedUser(t, domain.RoleCustomer)
	bob := seedUser(t, domain.RoleCustomer)
	product := seedProductRow(t, "Lamp", 30.0, 50, seller.ID)

	for _, buyerID := range []uuid.UUID{alice.ID, alice.ID, bob.ID} {
		order := testOrder(buyerID, domain.OrderItem{ProductID: product.ID, Quantity: 1})
		if _, err := repo.Place(ctx, order); err != nil {
			t.Fatalf("place: %v", err)
		}
	}

	aliceOrders, err := repo.ListByBuyer(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(aliceOrders) != 2 {
		t.Errorf("alice orders = %d, want 2", len(aliceOrders))
	}
	for _, order := range aliceOrders {
		if order.BuyerID != alice.ID {
			t.Errorf("foreign order %s in alice's list", order.ID)
		}
	}
}
