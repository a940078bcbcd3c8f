package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/e-games-api/internal/mailer"
	"github.com/flicky/e-games-api/internal/model"
	"github.com/flicky/e-games-api/internal/repository"
)

type mockProductRepo struct {
	products map[int64]*model.Product
	nextID   int64
	lastList repository.ProductFilter
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*model.Product)}
}

func (m *mockProductRepo) add(p model.Product) *model.Product {
	m.nextID++
	p.ID = m.nextID
	m.products[p.ID] = &p
	return &p
}

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	m.nextID++
	p.ID = m.nextID
	if p.DateCreated.IsZero() {
		p.DateCreated = time.Now()
	}
	stored := *p
	m.products[p.ID] = &stored
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) GetByName(_ context.Context, name string) (*model.Product, error) {
	var found *model.Product
	for _, p := range m.products {
		if p.Name == name && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) (bool, error) {
	if _, ok := m.products[p.ID]; !ok {
		return false, nil
	}
	stored := *p
	m.products[p.ID] = &stored
	return true, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func (m *mockProductRepo) sorted() []model.Product {
	all := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (m *mockProductRepo) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int, error) {
	m.lastList = f
	var matched []model.Product
	for _, p := range m.sorted() {
		if len(f.Genres) > 0 && (p.Genre == nil || !slices.Contains(f.Genres, *p.Genre)) {
			continue
		}
		if f.AgeRestriction != nil && p.AgeRestriction != *f.AgeRestriction {
			continue
		}
		matched = append(matched, p)
	}
	total := len(matched)
	if f.Offset >= total {
		return []model.Product{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (m *mockProductRepo) Search(_ context.Context, term string, limit, offset int) ([]string, error) {
	var names []string
	for _, p := range m.sorted() {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	if offset >= len(names) {
		return []string{}, nil
	}
	end := offset + limit
	if end > len(names) {
		end = len(names)
	}
	return names[offset:end], nil
}

func (m *mockProductRepo) TopPlatforms(_ context.Context, n int) ([]model.PlatformCount, error) {
	counts := map[model.Platform]int{}
	for _, p := range m.products {
		counts[p.Platform]++
	}
	result := make([]model.PlatformCount, 0, len(counts))
	for platform, count := range counts {
		result = append(result, model.PlatformCount{Platform: platform, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Platform < result[j].Platform
	})
	if len(result) > n {
		result = result[:n]
	}
	return result, nil
}

type ratingKey struct {
	productID int64
	userID    uuid.UUID
}

type mockRatingRepo struct {
	products *mockProductRepo
	ratings  map[ratingKey]int
}

func newMockRatingRepo(products *mockProductRepo) *mockRatingRepo {
	return &mockRatingRepo{products: products, ratings: make(map[ratingKey]int)}
}

func (m *mockRatingRepo) recompute(productID int64) int {
	var sum, count int64
	for k, r := range m.ratings {
		if k.productID == productID {
			sum += int64(r)
			count++
		}
	}
	total := model.TotalRating(sum, count)
	m.products.products[productID].TotalRating = total
	return total
}

func (m *mockRatingRepo) Upsert(_ context.Context, productID int64, userID uuid.UUID, rating int) (int, error) {
	if _, ok := m.products.products[productID]; !ok {
		return 0, repository.ErrProductMissing
	}
	m.ratings[ratingKey{productID, userID}] = rating
	return m.recompute(productID), nil
}

func (m *mockRatingRepo) Delete(_ context.Context, productID int64, userID uuid.UUID) (bool, error) {
	if _, ok := m.products.products[productID]; !ok {
		return false, repository.ErrProductMissing
	}
	key := ratingKey{productID, userID}
	if _, ok := m.ratings[key]; !ok {
		return false, nil
	}
	delete(m.ratings, key)
	m.recompute(productID)
	return true, nil
}

type mockOrderRepo struct {
	products   *mockProductRepo
	orders     map[int64]*model.Order
	nextOrder  int64
	nextItem   int64
	failMarkAs error
}

func newMockOrderRepo(products *mockProductRepo) *mockOrderRepo {
	return &mockOrderRepo{products: products, orders: make(map[int64]*model.Order)}
}

func (m *mockOrderRepo) AddItemToPending(_ context.Context, userID uuid.UUID, productID int64, quantity int) (int64, error) {
	product, ok := m.products.products[productID]
	if !ok {
		return 0, repository.ErrProductMissing
	}
	var pending *model.Order
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == model.OrderStatusPending {
			pending = o
		}
	}
	if pending == nil {
		m.nextOrder++
		pending = &model.Order{
			ID: m.nextOrder, UserID: userID, Status: model.OrderStatusPending,
			CreationDate: time.Now().Add(time.Duration(m.nextOrder) * time.Second),
		}
		m.orders[pending.ID] = pending
	}
	m.nextItem++
	pending.Items = append(pending.Items, model.OrderItem{
		ID: m.nextItem, OrderID: pending.ID, ProductID: productID,
		ProductName: product.Name, Quantity: quantity, Price: product.Price,
	})
	return pending.ID, nil
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (m *mockOrderRepo) GetByIDForUser(_ context.Context, orderID int64, userID uuid.UUID) (*model.Order, error) {
	o, ok := m.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, orderID int64) (*model.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (m *mockOrderRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders := []model.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, *copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

func (m *mockOrderRepo) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) (bool, error) {
	for _, o := range m.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID && o.Items[i].IsFree() {
				o.Items[i].Quantity = quantity
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockOrderRepo) DeleteItems(_ context.Context, userID uuid.UUID, itemIDs []int64) (int64, error) {
	var n int64
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		kept := o.Items[:0]
		for _, item := range o.Items {
			if slices.Contains(itemIDs, item.ID) {
				n++
				continue
			}
			kept = append(kept, item)
		}
		o.Items = kept
	}
	return n, nil
}

func (m *mockOrderRepo) MarkPendingDelivered(_ context.Context, userID uuid.UUID) ([]int64, error) {
	if m.failMarkAs != nil {
		return nil, m.failMarkAs
	}
	var ids []int64
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == model.OrderStatusPending {
			o.Status = model.OrderStatusDelivered
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

type mockUserRepo struct {
	byID            map[uuid.UUID]*model.User
	userNameLookups int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
		if u.UserName == user.UserName {
			return repository.ErrUserNameTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	stored := *user
	m.byID[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) find(match func(*model.User) bool) *model.User {
	for _, u := range m.byID {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email }), nil
}

func (m *mockUserRepo) GetByUserName(_ context.Context, userName string) (*model.User, error) {
	m.userNameLookups++
	return m.find(func(u *model.User) bool { return u.UserName == userName }), nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) (bool, error) {
	if _, ok := m.byID[user.ID]; !ok {
		return false, nil
	}
	for id, u := range m.byID {
		if id != user.ID && u.UserName == user.UserName {
			return false, repository.ErrUserNameTaken
		}
	}
	stored := *user
	m.byID[user.ID] = &stored
	return true, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) (bool, error) {
	u, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	u.Password = hash
	return true, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	if u, ok := m.byID[id]; ok {
		u.Role = role
	}
	return nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []model.PurchaseMessage
	err  error
}

func (p *fakePublisher) PublishOrderPurchased(_ context.Context, msg model.PurchaseMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var errBoom = errors.New("boom")
