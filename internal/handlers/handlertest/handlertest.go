// Package handlertest fournit des dépendances en mémoire pour tester les handlers HTTP.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/handlers"
	"storefront_back_end/internal/locale"
	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/store/storetest"
	"storefront_back_end/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Env regroupe les fakes pour pouvoir les inspecter après une requête.
type Env struct {
	Deps      *handlers.Deps
	Products  *storetest.Products
	Orders    *storetest.Orders
	Regions   *storetest.Regions
	Settings  *storetest.Settings
	Heroes    *storetest.Heroes
	Wishlists *storetest.Wishlists
	Users     *storetest.Users
	Carts     *storetest.Carts
	Images    *Images
	Payments  *Payments
	Mailer    *Mailer
}

func New() *Env {
	e := &Env{
		Products:  storetest.NewProducts(),
		Orders:    storetest.NewOrders(),
		Regions:   storetest.NewRegions(),
		Settings:  storetest.NewSettings(nil),
		Heroes:    storetest.NewHeroes(),
		Wishlists: storetest.NewWishlists(),
		Users:     storetest.NewUsers(),
		Carts:     storetest.NewCarts(),
		Images:    &Images{objects: map[string]bool{}},
		Payments:  &Payments{},
		Mailer:    &Mailer{},
	}
	e.Deps = &handlers.Deps{
		Products:  e.Products,
		Orders:    e.Orders,
		Regions:   e.Regions,
		Settings:  e.Settings,
		Heroes:    e.Heroes,
		Wishlists: e.Wishlists,
		Users:     e.Users,
		Carts:     e.Carts,
		Images:    e.Images,
		Payments:  e.Payments,
		Mailer:    e.Mailer,
		Cache:     cache.New(NewMemoryBackend()),
		Tokens:    utils.NewTokenManager("test-secret", time.Hour),
		Locales:   locale.NewResolver([]string{"sv", "en", "nb", "da"}, "sv"),
		Currency:  "SEK",
		StoreName: "Butiken",
	}
	return e
}

// Router retourne un moteur gin avec le middleware de langue.
func (e *Env) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Locale(e.Deps.Locales, nil))
	return r
}

// Token émet un JWT pour l'utilisateur.
func (e *Env) Token(id, role string) string {
	token, _, err := e.Deps.Tokens.Generate(models.User{ID: id, Email: id + "@example.com", Role: role})
	if err != nil {
		panic(err)
	}
	return token
}

// Auth retourne le middleware d'authentification configuré pour l'environnement.
func (e *Env) Auth() gin.HandlerFunc {
	if e.Deps.Cache == nil {
		return middleware.AuthRequired(e.Deps.Tokens, nil)
	}
	return middleware.AuthRequired(e.Deps.Tokens, e.Deps.Cache)
}

// AddProduct enregistre un produit actif et retourne son identifiant.
func (e *Env) AddProduct(name, price string, stock int) models.Product {
	p := models.Product{
		ID:        gocql.TimeUUID(),
		Slug:      name,
		Names:     map[string]string{"sv": name, "en": name + " (en)"},
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	_ = e.Products.SaveProduct(context.Background(), p)
	return p
}

// Do exécute une requête JSON. body peut être nil, une chaîne ou une valeur à encoder.
func Do(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Decode décode la réponse JSON.
func Decode(w *httptest.ResponseRecorder, dest interface{}) error {
	return json.Unmarshal(w.Body.Bytes(), dest)
}

// Images est un stockage d'images en mémoire.
type Images struct {
	mu      sync.Mutex
	objects map[string]bool
}

func (i *Images) Upload(_ context.Context, prefix string, file *multipart.FileHeader) (string, error) {
	if err := services.CheckImage(file.Header.Get("Content-Type"), file.Filename); err != nil {
		return "", err
	}
	key := services.ObjectKey(prefix, file.Filename)
	i.mu.Lock()
	defer i.mu.Unlock()
	i.objects[key] = true
	return key, nil
}

func (i *Images) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key + "?sig=1", nil
}

func (i *Images) Delete(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.objects, key)
	return nil
}

func (i *Images) Has(key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.objects[key]
}

// Payments simule Stripe: les webhooks sont des JSON {type, payment_intent_id, order_id}.
type Payments struct {
	mu      sync.Mutex
	Created []models.Order
	Fail    bool
}

func (p *Payments) CreatePaymentIntent(order models.Order) (services.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Fail {
		return services.PaymentIntent{}, errors.New("stripe indisponible")
	}
	p.Created = append(p.Created, order)
	return services.PaymentIntent{ID: "pi_" + order.ID.String(), ClientSecret: "secret_" + order.ID.String()}, nil
}

func (p *Payments) ParseWebhook(payload []byte, signature string) (services.WebhookEvent, error) {
	if signature == "bad" {
		return services.WebhookEvent{}, services.ErrInvalidSignature
	}
	var ev struct {
		Type            string `json:"type"`
		PaymentIntentID string `json:"payment_intent_id"`
		OrderID         string `json:"order_id"`
	}
	if err := json.Unmarshal(payload, &ev); err != nil {
		return services.WebhookEvent{}, err
	}
	return services.WebhookEvent{Type: ev.Type, PaymentIntentID: ev.PaymentIntentID, OrderID: ev.OrderID}, nil
}

// Mailer enregistre les e-mails envoyés.
type Mailer struct {
	mu            sync.Mutex
	Confirmations []models.Order
	Statuses      []models.Order
}

func (m *Mailer) SendOrderConfirmation(order models.Order, _ string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmations = append(m.Confirmations, order)
	return nil
}

func (m *Mailer) SendOrderStatus(order models.Order, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses = append(m.Statuses, order)
	return nil
}

func (m *Mailer) Count() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Confirmations), len(m.Statuses)
}

// MemoryBackend est un cache.Backend en mémoire, sans expiration.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]string{}}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryBackend) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryBackend) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// Invoices produit un faux PDF.
type Invoices struct{}

func (Invoices) RenderPDF(_ context.Context, order models.Order) ([]byte, error) {
	return []byte("%PDF-1.4 " + order.ID.String()), nil
}

// Search est un index en mémoire: la recherche porte sur le slug.
type Search struct {
	mu      sync.Mutex
	Indexed map[string]models.Product
}

func NewSearch() *Search {
	return &Search{Indexed: map[string]models.Product{}}
}

func (s *Search) IndexProduct(_ context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Indexed[p.ID.String()] = p
	return nil
}

func (s *Search) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Indexed, id)
	return nil
}

func (s *Search) Search(_ context.Context, q string, size int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, p := range s.Indexed {
		if len(ids) < size && strings.Contains(p.Slug, strings.ToLower(q)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Search) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Indexed[id]
	return ok
}

// Upload construit une requête multipart avec un fichier "image" et des champs texte.
func Upload(r http.Handler, method, path, filename, contentType string, data []byte, fields map[string]string, token string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(header)
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
