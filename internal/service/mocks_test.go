package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/mail"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			if email != user.Email {
				if _, taken := m.users[user.Email]; taken {
					return repository.ErrUserAlreadyExists
				}
				delete(m.users, email)
			}
			m.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for email, user := range m.users {
		if user.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) all() []*domain.Product {
	products := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID.String() < products[j].ID.String()
	})
	return products
}

func (m *mockProductRepository) List(ctx context.Context, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := m.all()
	return products, len(products), nil
}

func (m *mockProductRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Product, error) {
	var owned []*domain.Product
	for _, p := range m.all() {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	var matched []*domain.Product
	for _, p := range m.all() {
		if p.Category == category {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range m.all() {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *mockProductRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	products := m.all()
	return products, len(products), nil
}

type mockCartRepository struct {
	items map[uuid.UUID]map[uuid.UUID]*domain.CartItem // ownerID -> productID -> item
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{
		items: make(map[uuid.UUID]map[uuid.UUID]*domain.CartItem),
	}
}

func (m *mockCartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	cart, exists := m.items[item.OwnerID]
	if !exists {
		cart = make(map[uuid.UUID]*domain.CartItem)
		m.items[item.OwnerID] = cart
	}
	if _, dup := cart[item.ProductID]; dup {
		return repository.ErrCartItemExists
	}
	cart[item.ProductID] = item
	return nil
}

func (m *mockCartRepository) UpdateQuantity(ctx context.Context, ownerID, productID uuid.UUID, quantity int) error {
	item, exists := m.items[ownerID][productID]
	if !exists {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (m *mockCartRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.CartItem, error) {
	var items []*domain.CartItem
	for _, item := range m.items[ownerID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})
	return items, nil
}

func (m *mockCartRepository) Remove(ctx context.Context, ownerID, productID uuid.UUID) error {
	if _, exists := m.items[ownerID][productID]; !exists {
		return repository.ErrCartItemNotFound
	}
	delete(m.items[ownerID], productID)
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	delete(m.items, ownerID)
	return nil
}

// mockOrderRepository mirrors the transactional placement contract: it
// verifies every line against the shared product map before mutating
// anything, so a failed line leaves stock untouched.
type mockOrderRepository struct {
	products     *mockProductRepository
	sellerEmails map[uuid.UUID]string
	orders       map[uuid.UUID]*domain.Order
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		products:     products,
		sellerEmails: make(map[uuid.UUID]string),
		orders:       make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockOrderRepository) Place(ctx context.Context, order *domain.Order) ([]repository.SellerContact, error) {
	// First pass: verify, mimicking the rollback of a failed transaction.
	for _, item := range order.Items {
		product, exists := m.products.products[item.ProductID]
		if !exists {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, repository.ErrProductNotFound)
		}
		if product.Stock < item.Quantity {
			return nil, &repository.InsufficientStockError{
				ProductID: product.ID,
				Title:     product.Title,
				Requested: item.Quantity,
				Available: product.Stock,
			}
		}
	}

	// Second pass: decrement and snapshot.
	var sellers []repository.SellerContact
	seen := make(map[uuid.UUID]bool)
	order.TotalPrice = 0
	for i := range order.Items {
		item := &order.Items[i]
		product := m.products.products[item.ProductID]
		product.Stock -= item.Quantity

		item.ID = uuid.New()
		item.OrderID = order.ID
		item.Title = product.Title
		item.ImageURL = product.ImageURL
		item.Price = product.Price
		item.Total = product.Price * float64(item.Quantity)
		item.SellerID = product.OwnerID
		order.TotalPrice += item.Total

		if !seen[product.OwnerID] {
			seen[product.OwnerID] = true
			sellers = append(sellers, repository.SellerContact{
				ID:    product.OwnerID,
				Email: m.sellerEmails[product.OwnerID],
			})
		}
	}

	m.orders[order.ID] = order
	return sellers, nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range m.orders {
		if order.BuyerID == buyerID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	return orders, nil
}

type mockContactRepository struct {
	messages []*domain.ContactMessage
}

func newMockContactRepository() *mockContactRepository {
	return &mockContactRepository{}
}

func (m *mockContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockContactRepository) List(ctx context.Context) ([]*domain.ContactMessage, error) {
	return m.messages, nil
}

// mockMailer records every message handed to it.
type mockMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	fail     error
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// mockNotifier records fan-out invocations.
type mockNotifier struct {
	orders  []*domain.Order
	sellers [][]repository.SellerContact
}

func (m *mockNotifier) OrderPlaced(ctx context.Context, order *domain.Order, sellers []repository.SellerContact) {
	m.orders = append(m.orders, order)
	m.sellers = append(m.sellers, sellers)
}
