// Package cart keeps the working cart. It is always persisted locally and,
// while a session exists, mirrored to the backend on a best-effort basis.
//
// Mirror pushes are at-most-once: a failed push is logged and counted, never
// retried, and never rolls back the local mutation. Pushes may land out of
// order, so the remote cart is only eventually consistent with the last local
// state.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mercadotech/internal/metrics"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/storage"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

const StorageKey = "cart"

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrInvalidProduct  = errors.New("cart: product has no id")
	ErrNotInCart       = errors.New("cart: product not in cart")
)

// Remote is the slice of the API client the cart mirrors to.
type Remote interface {
	SyncCart(ctx context.Context, items []apiclient.CartItem) (*apiclient.CartResponse, error)
	ReplaceCart(ctx context.Context, items []apiclient.CartItem) (*apiclient.CartResponse, error)
}

type State int

const (
	Anonymous State = iota
	Reconciling
	Synced
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Reconciling:
		return "reconciling"
	case Synced:
		return "synced"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Listener receives a copy of the line items after every change.
type Listener func(items []models.CartLineItem)

type Store struct {
	remote Remote
	kv     storage.KV
	log    zerolog.Logger

	mu        sync.Mutex
	items     []models.CartLineItem
	state     State
	owner     string
	listeners []Listener

	pushes sync.WaitGroup
}

func New(remote Remote, kv storage.KV, log zerolog.Logger) *Store {
	return &Store{
		remote: remote,
		kv:     kv,
		log:    log.With().Str("component", "cart").Logger(),
	}
}

// Load reads the persisted cart. Unreadable data is discarded.
func (s *Store) Load(ctx context.Context) {
	var items []models.CartLineItem
	err := storage.GetJSON(ctx, s.kv, StorageKey, &items)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		items = nil
	default:
		s.log.Warn().Err(err).Msg("discarding unreadable cart")
		if delErr := s.kv.Delete(ctx, StorageKey); delErr != nil {
			s.log.Warn().Err(delErr).Msg("failed to delete cart")
		}
		items = nil
	}

	s.mu.Lock()
	s.items = normalize(items)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug().Int("items", len(snapshot)).Msg("cart loaded")
	s.emit(snapshot)
}

// OnSessionChange is meant to be subscribed to the session store. A new
// principal triggers one reconciliation; losing the principal drops the
// local cart and leaves the remote one alone.
func (s *Store) OnSessionChange(ctx context.Context, _, next *models.Principal) {
	s.mu.Lock()
	owner := s.owner
	state := s.state
	s.mu.Unlock()

	switch {
	case next != nil && next.ID != owner:
		s.reconcile(ctx, next.ID)
	case next == nil && (owner != "" || state != Anonymous):
		s.reset(ctx)
	}
}

// reconcile sends the local items to the backend's merge and adopts the
// result. The result is normalized rather than taken verbatim: entries with
// quantity below 1 are dropped and duplicate products are folded into one
// line, so the one-line-per-product invariant holds whatever the backend sends.
func (s *Store) reconcile(ctx context.Context, owner string) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	s.state = Reconciling
	s.owner = owner
	local := WireItems(s.items)
	s.mu.Unlock()

	res, err := s.remote.SyncCart(ctx, local)
	metrics.CartReconciliationsTotal.WithLabelValues(metrics.Result(err)).Inc()

	s.mu.Lock()
	if s.owner != owner {
		// the session moved on while the merge was in flight
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", owner).Int("items", len(local)).Msg("cart reconciliation failed, keeping local cart")
	} else {
		s.items = fromEntries(res.Items)
	}
	s.state = Synced
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err == nil {
		s.log.Info().Str("user_id", owner).Int("sent", len(local)).Int("merged", len(snapshot)).Msg("cart reconciled")
	}
	s.persist(ctx, snapshot)
	s.emit(snapshot)
}

func (s *Store) reset(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.state = Anonymous
	s.owner = ""
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.log.Error().Err(err).Msg("failed to delete cart")
	}
	s.log.Debug().Msg("cart cleared after session ended")
	s.emit(nil)
}

// AddItem adds quantity of product, merging into an existing line item.
// Callers clamp quantity against stock.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity int) error {
	if product.ID == "" {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		return fmt.Errorf("add %s: %w", product.ID, ErrInvalidQuantity)
	}

	s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		if i := indexOf(items, product.ID); i >= 0 {
			items[i].Quantity += quantity
			return items
		}
		return append(items, models.CartLineItem{Product: product, Quantity: quantity})
	})
	return nil
}

// RemoveItem deletes the line item for productID. Removing an absent product
// changes nothing and pushes nothing.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	present := indexOf(s.items, productID) >= 0
	s.mu.Unlock()
	if !present {
		return
	}

	s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		if i := indexOf(items, productID); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
}

func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("set %s to %d: %w", productID, quantity, ErrInvalidQuantity)
	}

	var missing bool
	s.mutate(ctx, func(items []models.CartLineItem) []models.CartLineItem {
		i := indexOf(items, productID)
		if i < 0 {
			missing = true
			return nil
		}
		items[i].Quantity = quantity
		return items
	})
	if missing {
		return fmt.Errorf("set %s: %w", productID, ErrNotInCart)
	}
	return nil
}

// Clear empties the cart and, when synced, pushes the empty cart.
func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func([]models.CartLineItem) []models.CartLineItem {
		return []models.CartLineItem{}
	})
}

// mutate applies fn to a private copy of the items. A nil result from fn
// aborts the mutation.
func (s *Store) mutate(ctx context.Context, fn func([]models.CartLineItem) []models.CartLineItem) {
	s.mu.Lock()
	next := fn(s.snapshotLocked())
	if next == nil {
		s.mu.Unlock()
		return
	}
	s.items = next
	snapshot := s.snapshotLocked()
	push := s.state == Synced
	owner := s.owner
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	if push {
		s.push(ctx, owner, snapshot)
	}
	s.emit(snapshot)
}

func (s *Store) persist(ctx context.Context, items []models.CartLineItem) {
	if items == nil {
		items = []models.CartLineItem{}
	}
	if err := storage.SetJSON(ctx, s.kv, StorageKey, items); err != nil {
		s.log.Error().Err(err).Msg("failed to persist cart")
	}
}

func (s *Store) push(ctx context.Context, owner string, items []models.CartLineItem) {
	ctx = context.WithoutCancel(ctx)
	wire := WireItems(items)

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()
		_, err := s.remote.ReplaceCart(ctx, wire)
		metrics.CartPushesTotal.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", owner).Int("items", len(wire)).Msg("cart push dropped")
		}
	}()
}

// Wait blocks until in-flight pushes have finished.
func (s *Store) Wait() {
	s.pushes.Wait()
}

func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) emit(items []models.CartLineItem) {
	s.mu.Lock()
	ls := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l(items)
	}
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Total is the sum of price times quantity using the cached prices.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) snapshotLocked() []models.CartLineItem {
	if len(s.items) == 0 {
		return []models.CartLineItem{}
	}
	out := make([]models.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func indexOf(items []models.CartLineItem, productID string) int {
	for i, it := range items {
		if it.ID == productID {
			return i
		}
	}
	return -1
}

// normalize drops unusable entries and folds duplicates into the first
// occurrence so that every product appears at most once.
func normalize(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if i := indexOf(out, it.ID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

// WireItems converts line items to the form the backend accepts.
func WireItems(items []models.CartLineItem) []apiclient.CartItem {
	out := make([]apiclient.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, apiclient.CartItem{
			Product:  it.ID,
			Quantity: it.Quantity,
			Store:    it.Store.ID,
		})
	}
	return out
}

func fromEntries(entries []apiclient.CartEntry) []models.CartLineItem {
	items := make([]models.CartLineItem, 0, len(entries))
	for _, e := range entries {
		p := e.Product
		if e.Store.ID != "" {
			p.Store = e.Store
		}
		items = append(items, models.CartLineItem{Product: p, Quantity: e.Quantity})
	}
	return normalize(items)
}
