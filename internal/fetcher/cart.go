package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/haldis/storefront-engine/internal/cache"
	"github.com/haldis/storefront-engine/internal/domain"
	"github.com/haldis/storefront-engine/internal/store"
)

// CartFetcher owns the cart lifecycle: silent creation, silent
// replacement of expired carts, and line merging on add.
type CartFetcher struct {
	carts    store.CartStore
	products store.ProductStore
	cache    *cache.Manager
	expiry   time.Duration
	logger   *slog.Logger

	// now is the clock, injectable for expiry tests.
	now func() time.Time
}

// NewCartFetcher creates a cart fetcher with the given cart expiry
// horizon. Panics if any dependency is nil or expiry is not positive,
// as this indicates a programming error in the application setup.
func NewCartFetcher(carts store.CartStore, products store.ProductStore, cacheManager *cache.Manager, expiry time.Duration, logger *slog.Logger) *CartFetcher {
	if carts == nil {
		panic("cart store cannot be nil")
	}
	if products == nil {
		panic("product store cannot be nil")
	}
	if cacheManager == nil {
		panic("cache manager cannot be nil")
	}
	if expiry <= 0 {
		panic("cart expiry must be positive")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CartFetcher{
		carts:    carts,
		products: products,
		cache:    cacheManager,
		expiry:   expiry,
		logger:   logger.With(slog.String("component", "cart_fetcher")),
		now:      time.Now,
	}
}

// AddToCartRequest describes one add-to-cart mutation.
type AddToCartRequest struct {
	StoreID    string
	SessionID  string
	Currency   string
	ProductID  string
	VariantID  string
	Quantity   int
	Properties map[string]string
}

// GetCart returns the session's cart, creating a fresh one when absent
// and silently replacing one that has expired.
func (f *CartFetcher) GetCart(ctx context.Context, storeID, sessionID, currency string) (*domain.Cart, error) {
	cart, err := f.carts.GetBySession(ctx, storeID, sessionID)
	switch {
	case store.IsNotFoundError(err):
		return f.createCart(ctx, storeID, sessionID, currency)
	case err != nil:
		return nil, fmt.Errorf("fetching cart for store %s: %w", storeID, err)
	}

	if cart.Expired(f.now()) {
		f.logger.Info("replacing expired cart",
			slog.String("store_id", storeID),
			slog.String("cart_id", cart.ID.String()))
		if err := f.carts.Delete(ctx, cart.ID); err != nil && !store.IsNotFoundError(err) {
			return nil, fmt.Errorf("deleting expired cart: %w", err)
		}
		return f.createCart(ctx, storeID, sessionID, currency)
	}
	return cart, nil
}

func (f *CartFetcher) createCart(ctx context.Context, storeID, sessionID, currency string) (*domain.Cart, error) {
	cart := domain.NewCart(storeID, sessionID, currency, f.expiry)
	if err := f.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("creating cart for store %s: %w", storeID, err)
	}
	return cart, nil
}

// AddToCart merges the requested product into an existing matching line
// or appends a new one, then recomputes totals and persists.
func (f *CartFetcher) AddToCart(ctx context.Context, req AddToCartRequest) (*domain.Cart, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	cart, err := f.GetCart(ctx, req.StoreID, req.SessionID, req.Currency)
	if err != nil {
		return nil, err
	}

	product, err := f.products.GetByID(ctx, req.StoreID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("adding product %s to cart: %w", req.ProductID, err)
	}

	title := product.Name
	price := product.Price
	if req.VariantID != "" {
		found := false
		for _, v := range product.Variants {
			if v.ID == req.VariantID {
				title = fmt.Sprintf("%s - %s", product.Name, v.Title)
				price = v.Price
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("adding product %s to cart: %w: variant %s", req.ProductID, store.ErrProductNotFound, req.VariantID)
		}
	}

	if i := cart.FindLine(req.ProductID, req.VariantID, req.Properties); i >= 0 {
		cart.Items[i].Quantity += req.Quantity
	} else {
		var imageURL string
		if len(product.Images) > 0 {
			imageURL = product.Images[0].URL
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ID:         uuid.New(),
			ProductID:  req.ProductID,
			VariantID:  req.VariantID,
			Title:      title,
			Quantity:   req.Quantity,
			UnitPrice:  price,
			Properties: req.Properties,
			ImageURL:   imageURL,
		})
	}

	return f.persist(ctx, cart)
}

// UpdateCartItem sets a line's quantity; zero or negative removes the
// line.
func (f *CartFetcher) UpdateCartItem(ctx context.Context, storeID, sessionID, currency string, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	cart, err := f.GetCart(ctx, storeID, sessionID, currency)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("updating cart line %s: %w", itemID, store.ErrCartNotFound)
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	return f.persist(ctx, cart)
}

// RemoveFromCart removes a line outright.
func (f *CartFetcher) RemoveFromCart(ctx context.Context, storeID, sessionID, currency string, itemID uuid.UUID) (*domain.Cart, error) {
	return f.UpdateCartItem(ctx, storeID, sessionID, currency, itemID, 0)
}

// ClearCart removes every line.
func (f *CartFetcher) ClearCart(ctx context.Context, storeID, sessionID, currency string) (*domain.Cart, error) {
	cart, err := f.GetCart(ctx, storeID, sessionID, currency)
	if err != nil {
		return nil, err
	}
	cart.Items = nil
	return f.persist(ctx, cart)
}

func (f *CartFetcher) persist(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.Recalculate()
	if err := f.carts.Update(ctx, cart); err != nil {
		return nil, fmt.Errorf("persisting cart %s: %w", cart.ID, err)
	}
	// Any cached projection of this cart is stale now.
	f.cache.DeleteByPrefix(cache.CartPrefix(cart.StoreID, cart.SessionID))
	return cart, nil
}

// CartContext projects a cart into the shape templates consume.
func CartContext(cart *domain.Cart) map[string]any {
	if cart == nil {
		return map[string]any{
			"item_count":  int64(0),
			"total_price": decimal.Zero,
			"items":       []any{},
		}
	}

	items := make([]any, len(cart.Items))
	for i, it := range cart.Items {
		items[i] = map[string]any{
			"id":         it.ID.String(),
			"product_id": it.ProductID,
			"variant_id": it.VariantID,
			"title":      it.Title,
			"quantity":   int64(it.Quantity),
			"price":      it.UnitPrice,
			"line_price": it.LinePrice,
			"properties": it.Properties,
			"image":      it.ImageURL,
			"url":        "/products/" + it.ProductID,
		}
	}

	return map[string]any{
		"id":          cart.ID.String(),
		"item_count":  int64(cart.ItemCount),
		"total_price": cart.TotalAmount,
		"currency":    cart.Currency,
		"items":       items,
	}
}
