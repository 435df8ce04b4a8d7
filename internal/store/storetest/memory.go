// Package storetest fournit des implémentations en mémoire des interfaces de store pour les tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/pricing"
	"storefront_back_end/internal/store"
)

type Products struct {
	mu    sync.Mutex
	items map[string]models.Product
}

func NewProducts(products ...models.Product) *Products {
	p := &Products{items: map[string]models.Product{}}
	for _, prod := range products {
		p.items[prod.ID.String()] = prod
	}
	return p
}

func (p *Products) ListProducts(_ context.Context, activeOnly bool) ([]models.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.Product
	for _, prod := range p.items {
		if activeOnly && !prod.IsActive {
			continue
		}
		out = append(out, prod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (p *Products) GetProduct(_ context.Context, id string) (models.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.items[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return prod, nil
}

func (p *Products) SaveProduct(_ context.Context, prod models.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items[prod.ID.String()] = prod
	return nil
}

func (p *Products) DeleteProduct(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, id)
	return nil
}

func (p *Products) DecrementStock(_ context.Context, id string, quantity int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if prod.Stock < quantity {
		return store.ErrInsufficientStock
	}
	prod.Stock -= quantity
	p.items[id] = prod
	return nil
}

type Orders struct {
	mu    sync.Mutex
	items map[string]models.Order
}

func NewOrders() *Orders {
	return &Orders{items: map[string]models.Order{}}
}

func (o *Orders) CreateOrder(_ context.Context, order models.Order) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	o.items[order.ID.String()] = order
	return nil
}

func (o *Orders) GetOrder(_ context.Context, id string) (models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.items[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return order, nil
}

func (o *Orders) GetOrderByPaymentIntent(_ context.Context, paymentIntentID string) (models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, order := range o.items {
		if order.PaymentIntentID == paymentIntentID {
			return order, nil
		}
	}
	return models.Order{}, store.ErrNotFound
}

func (o *Orders) ListOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	all, _ := o.ListOrders(context.Background(), 0)
	var out []models.Order
	for _, order := range all {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (o *Orders) ListOrders(_ context.Context, limit int) ([]models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Order, 0, len(o.items))
	for _, order := range o.items {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (o *Orders) UpdateOrderStatus(_ context.Context, id, status string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.items[id]
	if !ok {
		return store.ErrNotFound
	}
	order.Status = status
	o.items[id] = order
	return nil
}

func (o *Orders) TransitionOrderStatus(_ context.Context, id, from, to string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.items[id]
	if !ok {
		return false, store.ErrNotFound
	}
	if order.Status != from {
		return false, nil
	}
	order.Status = to
	o.items[id] = order
	return true, nil
}

func (o *Orders) SetPaymentIntent(_ context.Context, id, paymentIntentID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.items[id]
	if !ok {
		return store.ErrNotFound
	}
	order.PaymentIntentID = paymentIntentID
	o.items[id] = order
	return nil
}

type Regions struct {
	mu    sync.Mutex
	items map[string]pricing.ShippingRegion
}

func NewRegions(regions ...pricing.ShippingRegion) *Regions {
	r := &Regions{items: map[string]pricing.ShippingRegion{}}
	for _, region := range regions {
		r.items[strings.ToUpper(region.Code)] = region
	}
	return r
}

func (r *Regions) ListRegions(_ context.Context) ([]pricing.ShippingRegion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pricing.ShippingRegion, 0, len(r.items))
	for _, region := range r.items {
		out = append(out, region)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *Regions) GetRegion(_ context.Context, code string) (pricing.ShippingRegion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	region, ok := r.items[strings.ToUpper(code)]
	if !ok {
		return pricing.ShippingRegion{}, store.ErrNotFound
	}
	return region, nil
}

func (r *Regions) SaveRegion(_ context.Context, region pricing.ShippingRegion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pricing.SortThresholds(region.ShippingThresholds)
	region.Code = strings.ToUpper(region.Code)
	r.items[region.Code] = region
	return nil
}

func (r *Regions) DeleteRegion(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, strings.ToUpper(code))
	return nil
}

type Settings struct {
	mu       sync.Mutex
	settings *models.SiteSettings
}

func NewSettings(s *models.SiteSettings) *Settings {
	return &Settings{settings: s}
}

func (s *Settings) GetSettings(_ context.Context) (models.SiteSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return models.SiteSettings{}, store.ErrNotFound
	}
	return *s.settings, nil
}

func (s *Settings) SaveSettings(_ context.Context, settings models.SiteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

type Heroes struct {
	mu    sync.Mutex
	items map[string]models.HeroImage
}

func NewHeroes(images ...models.HeroImage) *Heroes {
	h := &Heroes{items: map[string]models.HeroImage{}}
	for _, img := range images {
		h.items[img.ID.String()] = img
	}
	return h
}

func (h *Heroes) ListHeroImages(_ context.Context) ([]models.HeroImage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]models.HeroImage, 0, len(h.items))
	for _, img := range h.items {
		out = append(out, img)
	}
	store.SortHeroImages(out)
	return out, nil
}

func (h *Heroes) GetHeroImage(_ context.Context, id string) (models.HeroImage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	img, ok := h.items[id]
	if !ok {
		return models.HeroImage{}, store.ErrNotFound
	}
	return img, nil
}

func (h *Heroes) SaveHeroImage(_ context.Context, img models.HeroImage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items[img.ID.String()] = img
	return nil
}

func (h *Heroes) DeleteHeroImage(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.items, id)
	return nil
}

type Wishlists struct {
	mu    sync.Mutex
	items map[string]map[string]time.Time
}

func NewWishlists() *Wishlists {
	return &Wishlists{items: map[string]map[string]time.Time{}}
}

func (w *Wishlists) ListWishlist(_ context.Context, userID string) ([]models.WishlistItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []models.WishlistItem
	for pid, added := range w.items[userID] {
		uid, err := gocql.ParseUUID(pid)
		if err != nil {
			continue
		}
		out = append(out, models.WishlistItem{UserID: userID, ProductID: uid, AddedAt: added})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return out, nil
}

func (w *Wishlists) AddToWishlist(_ context.Context, userID, productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.items[userID] == nil {
		w.items[userID] = map[string]time.Time{}
	}
	w.items[userID][productID] = time.Now()
	return nil
}

func (w *Wishlists) RemoveFromWishlist(_ context.Context, userID, productID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.items[userID], productID)
	return nil
}

type Users struct {
	mu    sync.Mutex
	items map[string]models.User
}

func NewUsers() *Users {
	return &Users{items: map[string]models.User{}}
}

func (u *Users) CreateUser(_ context.Context, user models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.items {
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrEmailTaken
		}
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	u.items[user.ID] = user
	return nil
}

func (u *Users) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.items {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (u *Users) GetUserByID(_ context.Context, id string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.items[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

type Carts struct {
	mu     sync.Mutex
	items  map[string][]models.CartItem
	events map[string][]chan string
}

func NewCarts() *Carts {
	return &Carts{items: map[string][]models.CartItem{}, events: map[string][]chan string{}}
}

func (c *Carts) GetCart(_ context.Context, userID string) (models.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := append([]models.CartItem{}, c.items[userID]...)
	return models.Cart{UserID: userID, Items: items}, nil
}

func (c *Carts) SaveCart(ctx context.Context, cart models.Cart) error {
	if len(cart.Items) == 0 {
		return c.ClearCart(ctx, cart.UserID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cart.UserID] = append([]models.CartItem{}, cart.Items...)
	c.notify(cart.UserID, "updated")
	return nil
}

func (c *Carts) ClearCart(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
	c.notify(userID, "cleared")
	return nil
}

func (c *Carts) notify(userID, event string) {
	for _, ch := range c.events[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (c *Carts) Subscribe(_ context.Context, userID string) (<-chan string, func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan string, 8)
	c.events[userID] = append(c.events[userID], ch)
	return ch, func() error { return nil }
}
