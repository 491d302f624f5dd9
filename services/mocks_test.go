package services_test

import (
	"context"
	"sort"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository doubles. They return copies so a test can
// assert that a failed operation left the stored state untouched.

type mockProductRepo struct {
	products map[uuid.UUID]*models.Product
	refs     map[uuid.UUID]int // product id -> order item references
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products: make(map[uuid.UUID]*models.Product),
		refs:     make(map[uuid.UUID]int),
	}
}

func (m *mockProductRepo) put(p *models.Product) *models.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	m.products[p.ID] = &stored
	return p
}

func (m *mockProductRepo) FindPage(_ context.Context, categoryName string, page, limit int) ([]models.Product, int64, error) {
	var all []models.Product
	for _, p := range m.products {
		if categoryName == "" || (p.Category != nil && p.Category.Name == categoryName) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *mockProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) Create(_ context.Context, product *models.Product) error {
	m.put(product)
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, product *models.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.refs[id] > 0 {
		return repository.ErrProductReferenced
	}
	if _, ok := m.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

func (m *mockProductRepo) LowStock(_ context.Context, threshold int) ([]models.Product, error) {
	var low []models.Product
	for _, p := range m.products {
		if p.StockQuantity < threshold {
			low = append(low, *p)
		}
	}
	return low, nil
}

func (m *mockProductRepo) LowStockCount(_ context.Context, threshold int) (int64, error) {
	low, _ := m.LowStock(context.Background(), threshold)
	return int64(len(low)), nil
}

type mockOrderRepo struct {
	orders   map[uuid.UUID]*models.Order
	items    map[uuid.UUID]*models.OrderItem
	products *mockProductRepo
	users    map[uuid.UUID]*models.User

	placeErr error // injected Place failure
}

func newMockOrderRepo(products *mockProductRepo) *mockOrderRepo {
	return &mockOrderRepo{
		orders:   make(map[uuid.UUID]*models.Order),
		items:    make(map[uuid.UUID]*models.OrderItem),
		products: products,
		users:    make(map[uuid.UUID]*models.User),
	}
}

// assemble returns a copy of the order with items (and their products)
// attached, mimicking the Preload behavior of the real repository.
func (m *mockOrderRepo) assemble(o *models.Order) *models.Order {
	order := *o
	order.OrderItems = nil
	for _, it := range m.items {
		if it.OrderID != order.ID {
			continue
		}
		item := *it
		if p, ok := m.products.products[item.ProductID]; ok {
			copied := *p
			item.Product = &copied
		}
		order.OrderItems = append(order.OrderItems, item)
	}
	sort.Slice(order.OrderItems, func(i, j int) bool {
		return order.OrderItems[i].ID.String() < order.OrderItems[j].ID.String()
	})
	if u, ok := m.users[order.UserID]; ok {
		copied := *u
		order.User = &copied
	}
	return &order
}

func (m *mockOrderRepo) FindPendingByUser(_ context.Context, userID uuid.UUID) (*models.Order, error) {
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == models.StatusPending {
			return m.assemble(o), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.assemble(o), nil
}

func (m *mockOrderRepo) FindByUserExcludingPending(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	var result []models.Order
	for _, o := range m.orders {
		if o.UserID == userID && o.Status != models.StatusPending {
			result = append(result, *m.assemble(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockOrderRepo) FindForAdmin(_ context.Context, archived bool) ([]models.Order, error) {
	var result []models.Order
	for _, o := range m.orders {
		if archived == (o.Status == models.StatusArchived) {
			result = append(result, *m.assemble(o))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stored := *order
	stored.OrderItems = nil
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepo) Update(_ context.Context, order *models.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *order
	stored.OrderItems = nil
	m.orders[order.ID] = &stored
	return nil
}

// Place mirrors the transactional placement: either every side effect
// lands or none do.
func (m *mockOrderRepo) Place(_ context.Context, order *models.Order) error {
	if m.placeErr != nil {
		return m.placeErr
	}
	stored, ok := m.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	var lines []*models.OrderItem
	for _, it := range m.items {
		if it.OrderID == order.ID {
			lines = append(lines, it)
		}
	}
	for _, it := range lines {
		p, ok := m.products.products[it.ProductID]
		if !ok || p.StockQuantity < it.Quantity {
			return repository.ErrInsufficientStock
		}
	}

	total := decimal.Zero
	for _, it := range lines {
		m.products.products[it.ProductID].StockQuantity -= it.Quantity
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	order.TotalAmount = total
	stored.Status = order.Status
	stored.TotalAmount = total
	stored.CreatedAt = order.CreatedAt
	return nil
}

func (m *mockOrderRepo) UpdateTotal(_ context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	o, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.TotalAmount = total
	return nil
}

func (m *mockOrderRepo) FindItem(_ context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	it, ok := m.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	item := *it
	if o, ok := m.orders[item.OrderID]; ok {
		copied := *o
		item.Order = &copied
	}
	return &item, nil
}

func (m *mockOrderRepo) CreateItem(_ context.Context, item *models.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	stored := *item
	stored.Order = nil
	stored.Product = nil
	m.items[item.ID] = &stored
	m.products.refs[item.ProductID]++
	return nil
}

func (m *mockOrderRepo) UpdateItem(_ context.Context, item *models.OrderItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *item
	stored.Order = nil
	stored.Product = nil
	m.items[item.ID] = &stored
	return nil
}

func (m *mockOrderRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	if it, ok := m.items[itemID]; ok {
		m.products.refs[it.ProductID]--
	}
	delete(m.items, itemID)
	return nil
}

func (m *mockOrderRepo) ItemsTotal(_ context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range m.items {
		if it.OrderID == orderID {
			total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return total, nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.orders)), nil
}

func (m *mockOrderRepo) CompletedRevenue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range m.orders {
		if o.Status == models.StatusCompleted {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (m *mockOrderRepo) Recent(_ context.Context, limit int) ([]models.Order, error) {
	var result []models.Order
	for _, o := range m.orders {
		result = append(result, *m.assemble(o))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockOrderRepo) MonthlyCompletedRevenue(_ context.Context) ([]repository.MonthlyRevenue, error) {
	type key struct{ year, month int }
	buckets := make(map[key]decimal.Decimal)
	for _, o := range m.orders {
		if o.Status != models.StatusCompleted {
			continue
		}
		k := key{o.CreatedAt.Year(), int(o.CreatedAt.Month())}
		buckets[k] = buckets[k].Add(o.TotalAmount)
	}

	var rows []repository.MonthlyRevenue
	for k, total := range buckets {
		rows = append(rows, repository.MonthlyRevenue{Year: k.year, Month: k.month, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows, nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*models.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*models.Category)}
}

func (m *mockCategoryRepo) put(c *models.Category) *models.Category {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stored := *c
	m.categories[c.ID] = &stored
	return c
}

func (m *mockCategoryRepo) FindAll(_ context.Context) ([]models.Category, error) {
	var all []models.Category
	for _, c := range m.categories {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (m *mockCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCategoryRepo) Create(_ context.Context, category *models.Category) error {
	m.put(category)
	return nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category *models.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.categories, id)
	return nil
}

type mockUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}
