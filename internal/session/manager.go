package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderconfig/internal/cart"
	"orderconfig/internal/catalog"
	"orderconfig/internal/configurator"
)

// Archiver stores a snapshot of a customer's cart after a confirm.
type Archiver interface {
	ArchiveCart(ctx context.Context, customerID, sessionID string, lines []cart.LineItem) error
}

type Options struct {
	Labels      configurator.Labels
	IdleTimeout time.Duration
	// Archive is optional; nil disables cart snapshots.
	Archive Archiver
	Logger  *zap.Logger
	Now     func() time.Time
}

// Manager is the registry of open configurator sessions.
type Manager struct {
	catalog catalog.Repository
	carts   cart.Store
	archive Archiver
	labels  configurator.Labels
	idle    time.Duration
	log     *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(repo catalog.Repository, carts cart.Store, opts Options) *Manager {
	m := &Manager{
		catalog:  repo,
		carts:    carts,
		archive:  opts.Archive,
		labels:   opts.Labels,
		idle:     opts.IdleTimeout,
		log:      opts.Logger,
		now:      opts.Now,
		sessions: make(map[string]*Session),
	}
	if m.labels == (configurator.Labels{}) {
		m.labels = configurator.DefaultLabels
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Session is one open configurator. mu serializes access to the
// configurator; lastSeen is guarded by the manager's lock.
type Session struct {
	ID         string
	CustomerID string

	mu       sync.Mutex
	cfg      *configurator.Configurator
	lastSeen time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

type OpenRequest struct {
	CustomerID   string `json:"-"`
	ItemID       string `json:"item_id" binding:"required"`
	RestaurantID string `json:"restaurant_id"`
	// EditLineID opens the session on an existing cart line.
	EditLineID string `json:"edit_line_id"`
}

// --------------------------------------------------
// OPEN
// --------------------------------------------------
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*Session, error) {
	id := uuid.NewString()
	log := m.log.With(zap.String("session_id", id), zap.String("item_id", req.ItemID))

	model, drinks, err := m.load(ctx, req, log)
	if err != nil {
		return nil, err
	}

	sctx := m.sessionContext(id, model, drinks, log)

	var cfg *configurator.Configurator
	if req.EditLineID != "" {
		items, err := m.carts.ForCustomer(req.CustomerID).Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		line, ok := findLine(items, req.EditLineID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", cart.ErrLineNotFound, req.EditLineID)
		}
		if line.ItemID != model.ItemID {
			return nil, ErrItemMismatch
		}
		cfg = configurator.NewForEdit(sctx, line, items)
	} else {
		cfg = configurator.New(sctx)
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:         id,
		CustomerID: req.CustomerID,
		cfg:        cfg,
		lastSeen:   m.now(),
		ctx:        sessCtx,
		cancel:     cancel,
	}

	m.mu.Lock()
	m.sweepLocked()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Info("session opened",
		zap.String("kind", sctx.Kind.String()),
		zap.Bool("edit", sctx.Edit),
		zap.Int("drinks", len(drinks)),
	)
	return s, nil
}

func (m *Manager) sessionContext(id string, model *catalog.Model, drinks []catalog.Drink, log *zap.Logger) *configurator.SessionContext {
	sctx := configurator.NewSessionContext(id, model, drinks)
	sctx.Labels = m.labels
	sctx.Logger = log
	sctx.Now = m.now
	return sctx
}

// load fetches the item and the restaurant drinks concurrently. A catalog
// failure aborts the open; a drink failure leaves the drink list empty.
func (m *Manager) load(ctx context.Context, req OpenRequest, log *zap.Logger) (*catalog.Model, []catalog.Drink, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		model     *catalog.Model
		modelErr  error
		drinks    []catalog.Drink
		drinksErr error
	)

	fetchDrinks := func(restaurantID string) {
		drinks, drinksErr = m.catalog.FetchDrinks(ctx, restaurantID)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		model, modelErr = m.catalog.FetchEnhancedItem(ctx, req.ItemID)
		if modelErr != nil {
			cancel()
		}
	}()

	if req.RestaurantID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fetchDrinks(req.RestaurantID)
		}()
	}
	wg.Wait()

	if modelErr != nil {
		log.Error("catalog fetch failed", zap.Error(modelErr))
		if errors.Is(modelErr, catalog.ErrItemNotFound) {
			return nil, nil, modelErr
		}
		return nil, nil, &CatalogLoadFailure{ItemID: req.ItemID, Err: modelErr}
	}

	if req.RestaurantID == "" {
		fetchDrinks(model.RestaurantID)
	}
	if drinksErr != nil {
		log.Warn("drink fetch failed, free drinks unavailable", zap.Error(drinksErr))
		drinks = nil
	}

	return model, drinks, nil
}

func findLine(items []cart.LineItem, id string) (cart.LineItem, bool) {
	for _, l := range items {
		if l.ID == id {
			return l, true
		}
	}
	return cart.LineItem{}, false
}

// --------------------------------------------------
// REGISTRY
// --------------------------------------------------

// Get returns a session owned by the customer and marks it used.
func (m *Manager) Get(sessionID, customerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	s, ok := m.sessions[sessionID]
	if !ok || s.CustomerID != customerID {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s, nil
}

// lock returns the session held for exclusive use. A session dropped while
// the caller waited for it, by a confirm, close or idle sweep, is reported
// as not found.
func (m *Manager) lock(sessionID, customerID string) (*Session, error) {
	s, err := m.Get(sessionID, customerID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()

	m.mu.Lock()
	cur, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok || cur != s {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close discards a session: its selection, saved orders and any work still
// running on its behalf.
func (m *Manager) Close(sessionID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.CustomerID != customerID {
		return ErrSessionNotFound
	}
	m.dropLocked(s, "closed")
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLocked() {
	if m.idle <= 0 {
		return
	}
	cutoff := m.now().Add(-m.idle)
	for _, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			m.dropLocked(s, "idle")
		}
	}
}

func (m *Manager) dropLocked(s *Session, reason string) {
	s.cancel()
	delete(m.sessions, s.ID)
	m.log.Info("session dropped", zap.String("session_id", s.ID), zap.String("reason", reason))
}

// --------------------------------------------------
// INTERACTIONS
// --------------------------------------------------

func (m *Manager) View(sessionID, customerID string) (configurator.View, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return configurator.View{}, err
	}
	defer s.mu.Unlock()
	return s.cfg.View(), nil
}

// Apply runs one action. On error the selection is unchanged.
func (m *Manager) Apply(sessionID, customerID string, a configurator.Action) (configurator.View, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return configurator.View{}, err
	}
	defer s.mu.Unlock()

	if err := s.cfg.Apply(a); err != nil {
		return s.cfg.View(), err
	}
	return s.cfg.View(), nil
}

func (m *Manager) SaveAndAddAnother(sessionID, customerID string) (configurator.View, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return configurator.View{}, err
	}
	defer s.mu.Unlock()

	if f := s.cfg.SaveAndAddAnother(); f != nil {
		return s.cfg.View(), f
	}
	return s.cfg.View(), nil
}

func (m *Manager) RemoveSaved(sessionID, customerID string, index int) (configurator.View, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return configurator.View{}, err
	}
	defer s.mu.Unlock()

	if err := s.cfg.Buffer().Remove(index); err != nil {
		return s.cfg.View(), err
	}
	return s.cfg.View(), nil
}

func (m *Manager) ClearAll(sessionID, customerID string) (configurator.View, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return configurator.View{}, err
	}
	defer s.mu.Unlock()

	s.cfg.ClearAll()
	return s.cfg.View(), nil
}

// --------------------------------------------------
// REFRESH
// --------------------------------------------------

// Refresh reloads the session's item and drinks and rebuilds the selection
// and saved orders against the new snapshot. A failed reload leaves the
// session as it was.
func (m *Manager) Refresh(ctx context.Context, sessionID, customerID string) (configurator.View, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return configurator.View{}, err
	}
	defer s.mu.Unlock()

	ctx, cancel := mergeCancel(ctx, s.ctx)
	defer cancel()

	current := s.cfg.Context().Catalog
	log := m.log.With(zap.String("session_id", s.ID), zap.String("item_id", current.ItemID))

	model, drinks, err := m.load(ctx, OpenRequest{ItemID: current.ItemID, RestaurantID: current.RestaurantID}, log)
	if err != nil {
		return s.cfg.View(), err
	}

	s.cfg.Refresh(m.sessionContext(s.ID, model, drinks, log))
	log.Info("session refreshed", zap.Int("saved", s.cfg.Buffer().Len()), zap.Int("drinks", len(drinks)))
	return s.cfg.View(), nil
}

// --------------------------------------------------
// CONFIRM
// --------------------------------------------------

// Confirm validates, compiles and commits the session to the customer's cart,
// then closes the session. A *configurator.ValidationFailure or a failed
// cart write leaves the session open and the cart untouched.
func (m *Manager) Confirm(ctx context.Context, sessionID, customerID string) ([]cart.LineItem, error) {
	s, err := m.lock(sessionID, customerID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	lines, fail := s.cfg.Confirm()
	if fail != nil {
		return nil, fail
	}

	ctx, cancel := mergeCancel(ctx, s.ctx)
	defer cancel()

	// every line lands in one write, together with the removal of the lines
	// an edit replaces
	c := m.carts.ForCustomer(customerID)
	if err := c.Replace(ctx, s.cfg.Replaces(), lines); err != nil {
		return nil, fmt.Errorf("commit cart: %w", err)
	}

	log := m.log.With(zap.String("session_id", sessionID))
	log.Info("session confirmed", zap.Int("lines", len(lines)), zap.Bool("edit", s.cfg.Context().Edit))
	m.archiveCart(ctx, c, customerID, sessionID, log)

	m.mu.Lock()
	if cur, ok := m.sessions[sessionID]; ok && cur == s {
		m.dropLocked(s, "confirmed")
	}
	m.mu.Unlock()

	return lines, nil
}

func (m *Manager) archiveCart(ctx context.Context, c cart.Cart, customerID, sessionID string, log *zap.Logger) {
	if m.archive == nil {
		return
	}
	items, err := c.Items(ctx)
	if err == nil {
		err = m.archive.ArchiveCart(ctx, customerID, sessionID, items)
	}
	if err != nil {
		log.Warn("cart archive failed", zap.Error(err))
	}
}

// mergeCancel returns a context cancelled when either parent is done.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Cart lists the customer's committed lines.
func (m *Manager) Cart(ctx context.Context, customerID string) ([]cart.LineItem, error) {
	return m.carts.ForCustomer(customerID).Items(ctx)
}
