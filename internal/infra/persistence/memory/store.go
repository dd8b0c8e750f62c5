// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"palettecore/pkg/domain"
	"sort"
	"sync"
	"time"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Brand aliases domain.Brand for in-memory persistence operations.
	Brand = domain.Brand
	// Color aliases domain.Color.
	Color = domain.Color
	// Palette aliases domain.Palette.
	Palette = domain.Palette
	// ColorSlot aliases domain.ColorSlot.
	ColorSlot = domain.ColorSlot
	// StashItem aliases domain.StashItem.
	StashItem = domain.StashItem
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	brands    map[int64]Brand
	colors    map[int64]Color
	palettes  map[int64]Palette
	slots     map[int64]ColorSlot
	stash     map[int64]StashItem
	sequences map[domain.EntityType]int64
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Brands    map[int64]Brand             `json:"brands"`
	Colors    map[int64]Color             `json:"colors"`
	Palettes  map[int64]Palette           `json:"palettes"`
	Slots     map[int64]ColorSlot         `json:"slots"`
	Stash     map[int64]StashItem         `json:"stash"`
	Sequences map[domain.EntityType]int64 `json:"sequences"`
}

func newMemoryState() memoryState {
	return memoryState{
		brands:    make(map[int64]Brand),
		colors:    make(map[int64]Color),
		palettes:  make(map[int64]Palette),
		slots:     make(map[int64]ColorSlot),
		stash:     make(map[int64]StashItem),
		sequences: make(map[domain.EntityType]int64),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Brands:    make(map[int64]Brand, len(state.brands)),
		Colors:    make(map[int64]Color, len(state.colors)),
		Palettes:  make(map[int64]Palette, len(state.palettes)),
		Slots:     make(map[int64]ColorSlot, len(state.slots)),
		Stash:     make(map[int64]StashItem, len(state.stash)),
		Sequences: make(map[domain.EntityType]int64, len(state.sequences)),
	}
	for k, v := range state.brands {
		s.Brands[k] = decorateBrand(&state, v)
	}
	for k, v := range state.colors {
		s.Colors[k] = cloneColor(v)
	}
	for k, v := range state.palettes {
		s.Palettes[k] = v
	}
	for k, v := range state.slots {
		s.Slots[k] = v
	}
	for k, v := range state.stash {
		s.Stash[k] = v
	}
	for k, v := range state.sequences {
		s.Sequences[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Brands {
		state.brands[k] = v
	}
	for k, v := range s.Colors {
		state.colors[k] = cloneColor(v)
	}
	for k, v := range s.Palettes {
		state.palettes[k] = v
	}
	for k, v := range s.Slots {
		state.slots[k] = v
	}
	for k, v := range s.Stash {
		state.stash[k] = v
	}
	for k, v := range s.Sequences {
		state.sequences[k] = v
	}
	return state
}

// migrateSnapshot fills missing buckets, drops records with dangling
// references and advances sequences past every stored identifier.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Brands == nil {
		snapshot.Brands = map[int64]Brand{}
	}
	if snapshot.Colors == nil {
		snapshot.Colors = map[int64]Color{}
	}
	if snapshot.Palettes == nil {
		snapshot.Palettes = map[int64]Palette{}
	}
	if snapshot.Slots == nil {
		snapshot.Slots = map[int64]ColorSlot{}
	}
	if snapshot.Stash == nil {
		snapshot.Stash = map[int64]StashItem{}
	}
	if snapshot.Sequences == nil {
		snapshot.Sequences = map[domain.EntityType]int64{}
	}

	for id, color := range snapshot.Colors {
		if _, ok := snapshot.Brands[color.BrandID]; !ok {
			delete(snapshot.Colors, id)
			continue
		}
		if color.Family != nil && !color.Family.Valid() {
			color.Family = nil
			snapshot.Colors[id] = color
		}
	}
	for id, palette := range snapshot.Palettes {
		if palette.Status == "" {
			palette.Status = domain.PaletteDraft
		}
		if palette.Version < 0 {
			palette.Version = 0
		}
		snapshot.Palettes[id] = palette
	}
	for id, slot := range snapshot.Slots {
		_, paletteOK := snapshot.Palettes[slot.PaletteID]
		_, colorOK := snapshot.Colors[slot.ColorID]
		if !paletteOK || !colorOK || slot.Role == "" {
			delete(snapshot.Slots, id)
		}
	}
	for id, item := range snapshot.Stash {
		if _, ok := snapshot.Colors[item.ColorID]; !ok || !item.Status.Valid() {
			delete(snapshot.Stash, id)
		}
	}

	advance := func(entity domain.EntityType, id int64) {
		if id > snapshot.Sequences[entity] {
			snapshot.Sequences[entity] = id
		}
	}
	for id := range snapshot.Brands {
		advance(domain.EntityBrand, id)
	}
	for id := range snapshot.Colors {
		advance(domain.EntityColor, id)
	}
	for id := range snapshot.Palettes {
		advance(domain.EntityPalette, id)
	}
	for id := range snapshot.Slots {
		advance(domain.EntityColorSlot, id)
	}
	for id := range snapshot.Stash {
		advance(domain.EntityStashItem, id)
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.brands {
		cloned.brands[k] = v
	}
	for k, v := range s.colors {
		cloned.colors[k] = cloneColor(v)
	}
	for k, v := range s.palettes {
		cloned.palettes[k] = v
	}
	for k, v := range s.slots {
		cloned.slots[k] = v
	}
	for k, v := range s.stash {
		cloned.stash[k] = v
	}
	for k, v := range s.sequences {
		cloned.sequences[k] = v
	}
	return cloned
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneColor(c Color) Color {
	cp := c
	cp.OklchL = cloneFloat(c.OklchL)
	cp.OklchC = cloneFloat(c.OklchC)
	cp.OklchH = cloneFloat(c.OklchH)
	if c.Family != nil {
		f := *c.Family
		cp.Family = &f
	}
	return cp
}

func brandColorCount(state *memoryState, brandID int64) int {
	count := 0
	for _, color := range state.colors {
		if color.BrandID == brandID {
			count++
		}
	}
	return count
}

func decorateBrand(state *memoryState, brand Brand) Brand {
	brand.ColorCount = brandColorCount(state, brand.ID)
	return brand
}

func paletteSlots(state *memoryState, paletteID int64) []ColorSlot {
	var out []ColorSlot
	for _, slot := range state.slots {
		if slot.PaletteID == paletteID {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out
}

func sortSlots(slots []ColorSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Role != slots[j].Role {
			return slots[i].Role < slots[j].Role
		}
		if slots[i].Position != slots[j].Position {
			return slots[i].Position < slots[j].Position
		}
		return slots[i].ID < slots[j].ID
	})
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RunInTransaction executes fn against a cloned state. The clone replaces the
// committed state only when fn succeeds and no blocking rule fires.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// Read helpers ---------------------------------------------------------------

// GetBrand retrieves a brand by ID from committed state.
func (s *Store) GetBrand(id int64) (Brand, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.brands[id]
	if !ok {
		return Brand{}, false
	}
	return decorateBrand(&s.state, b), true
}

// ListBrands returns all brands ordered by ID.
func (s *Store) ListBrands() []Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListBrands()
}

// GetColor retrieves a color by ID.
func (s *Store) GetColor(id int64) (Color, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.colors[id]
	if !ok {
		return Color{}, false
	}
	return cloneColor(c), true
}

// ListColors returns all colors ordered by ID.
func (s *Store) ListColors() []Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListColors()
}

// GetPalette retrieves a palette by ID.
func (s *Store) GetPalette(id int64) (Palette, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.palettes[id]
	return p, ok
}

// ListPalettes returns all palettes ordered by ID.
func (s *Store) ListPalettes() []Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListPalettes()
}

// ListColorSlots returns every slot ordered by ID.
func (s *Store) ListColorSlots() []ColorSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListColorSlots()
}

// ListStashItems returns every stash item ordered by ID.
func (s *Store) ListStashItems() []StashItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListStashItems()
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListBrands returns all brands in the snapshot.
func (v transactionView) ListBrands() []Brand {
	out := make([]Brand, 0, len(v.state.brands))
	for _, id := range sortedKeys(v.state.brands) {
		out = append(out, decorateBrand(v.state, v.state.brands[id]))
	}
	return out
}

// ListColors returns all colors in the snapshot.
func (v transactionView) ListColors() []Color {
	out := make([]Color, 0, len(v.state.colors))
	for _, id := range sortedKeys(v.state.colors) {
		out = append(out, cloneColor(v.state.colors[id]))
	}
	return out
}

// ListPalettes returns all palettes in the snapshot.
func (v transactionView) ListPalettes() []Palette {
	out := make([]Palette, 0, len(v.state.palettes))
	for _, id := range sortedKeys(v.state.palettes) {
		out = append(out, v.state.palettes[id])
	}
	return out
}

// ListColorSlots returns all slots in the snapshot.
func (v transactionView) ListColorSlots() []ColorSlot {
	out := make([]ColorSlot, 0, len(v.state.slots))
	for _, id := range sortedKeys(v.state.slots) {
		out = append(out, v.state.slots[id])
	}
	return out
}

// ListPaletteSlots returns the slots of one palette ordered by role then position.
func (v transactionView) ListPaletteSlots(paletteID int64) []ColorSlot {
	return paletteSlots(v.state, paletteID)
}

// ListStashItems returns all stash items in the snapshot.
func (v transactionView) ListStashItems() []StashItem {
	out := make([]StashItem, 0, len(v.state.stash))
	for _, id := range sortedKeys(v.state.stash) {
		out = append(out, v.state.stash[id])
	}
	return out
}

// FindBrand retrieves a brand by ID from the snapshot.
func (v transactionView) FindBrand(id int64) (Brand, bool) {
	b, ok := v.state.brands[id]
	if !ok {
		return Brand{}, false
	}
	return decorateBrand(v.state, b), true
}

// FindColor retrieves a color by ID from the snapshot.
func (v transactionView) FindColor(id int64) (Color, bool) {
	c, ok := v.state.colors[id]
	if !ok {
		return Color{}, false
	}
	return cloneColor(c), true
}

// FindPalette retrieves a palette by ID from the snapshot.
func (v transactionView) FindPalette(id int64) (Palette, bool) {
	p, ok := v.state.palettes[id]
	return p, ok
}

// FindColorSlot retrieves a slot by ID from the snapshot.
func (v transactionView) FindColorSlot(id int64) (ColorSlot, bool) {
	slot, ok := v.state.slots[id]
	return slot, ok
}

// FindStashItem retrieves a stash item by ID from the snapshot.
func (v transactionView) FindStashItem(id int64) (StashItem, bool) {
	item, ok := v.state.stash[id]
	return item, ok
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// nextID assigns id when unset and keeps the entity sequence ahead of it.
func (tx *transaction) nextID(entity domain.EntityType, id int64) int64 {
	if id <= 0 {
		tx.state.sequences[entity]++
		return tx.state.sequences[entity]
	}
	if id > tx.state.sequences[entity] {
		tx.state.sequences[entity] = id
	}
	return id
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindBrand exposes brand lookup within the transaction scope.
func (tx *transaction) FindBrand(id int64) (Brand, bool) {
	return newTransactionView(&tx.state).FindBrand(id)
}

// FindColor exposes color lookup within the transaction scope.
func (tx *transaction) FindColor(id int64) (Color, bool) {
	return newTransactionView(&tx.state).FindColor(id)
}

// FindPalette exposes palette lookup within the transaction scope.
func (tx *transaction) FindPalette(id int64) (Palette, bool) {
	p, ok := tx.state.palettes[id]
	return p, ok
}

// FindColorSlot exposes slot lookup within the transaction scope.
func (tx *transaction) FindColorSlot(id int64) (ColorSlot, bool) {
	slot, ok := tx.state.slots[id]
	return slot, ok
}

// FindStashItem exposes stash lookup within the transaction scope.
func (tx *transaction) FindStashItem(id int64) (StashItem, bool) {
	item, ok := tx.state.stash[id]
	return item, ok
}

func (tx *transaction) validateBrand(b Brand) error {
	if b.Name == "" {
		return fmt.Errorf("%w: brand requires a name", domain.ErrInvalidInput)
	}
	if !b.Category.Valid() {
		return fmt.Errorf("%w: brand category %q is not supported", domain.ErrInvalidInput, b.Category)
	}
	for id, existing := range tx.state.brands {
		if id != b.ID && existing.Slug == b.Slug {
			return fmt.Errorf("%w: brand slug %q already exists", domain.ErrInvalidInput, b.Slug)
		}
	}
	return nil
}

// CreateBrand stores a new brand within the transaction.
func (tx *transaction) CreateBrand(b Brand) (Brand, error) {
	if _, exists := tx.state.brands[b.ID]; exists && b.ID > 0 {
		return Brand{}, fmt.Errorf("brand %d already exists", b.ID)
	}
	if b.Slug == "" {
		b.Slug = domain.Slugify(b.Name)
	}
	if err := tx.validateBrand(b); err != nil {
		return Brand{}, err
	}
	b.ID = tx.nextID(domain.EntityBrand, b.ID)
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	b.ColorCount = 0
	tx.state.brands[b.ID] = b
	created := decorateBrand(&tx.state, b)
	tx.recordChange(Change{Entity: domain.EntityBrand, Action: domain.ActionCreate, After: created})
	return created, nil
}

// UpdateBrand mutates an existing brand.
func (tx *transaction) UpdateBrand(id int64, mutator func(*Brand) error) (Brand, error) {
	current, ok := tx.state.brands[id]
	if !ok {
		return Brand{}, domain.NewNotFound(domain.EntityBrand, id)
	}
	before := decorateBrand(&tx.state, current)
	if err := mutator(&current); err != nil {
		return Brand{}, err
	}
	current.ID = id
	if current.Slug == "" {
		current.Slug = domain.Slugify(current.Name)
	}
	if err := tx.validateBrand(current); err != nil {
		return Brand{}, err
	}
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.brands[id] = current
	after := decorateBrand(&tx.state, current)
	tx.recordChange(Change{Entity: domain.EntityBrand, Action: domain.ActionUpdate, Before: before, After: after})
	return after, nil
}

// DeleteBrand removes a brand that no longer owns colors.
func (tx *transaction) DeleteBrand(id int64) error {
	current, ok := tx.state.brands[id]
	if !ok {
		return domain.NewNotFound(domain.EntityBrand, id)
	}
	if count := brandColorCount(&tx.state, id); count > 0 {
		return fmt.Errorf("brand %d still owns %d colors", id, count)
	}
	delete(tx.state.brands, id)
	tx.recordChange(Change{Entity: domain.EntityBrand, Action: domain.ActionDelete, Before: current})
	return nil
}

func (tx *transaction) validateColor(c Color) error {
	if _, ok := tx.state.brands[c.BrandID]; !ok {
		return domain.NewNotFound(domain.EntityBrand, c.BrandID)
	}
	if c.Name == "" && c.VendorCode == "" {
		return fmt.Errorf("%w: color requires a name or vendor code", domain.ErrInvalidInput)
	}
	if c.Family != nil && !c.Family.Valid() {
		return fmt.Errorf("%w: unknown color family %q", domain.ErrInvalidInput, *c.Family)
	}
	return nil
}

// CreateColor stores a new catalog color.
func (tx *transaction) CreateColor(c Color) (Color, error) {
	if _, exists := tx.state.colors[c.ID]; exists && c.ID > 0 {
		return Color{}, fmt.Errorf("color %d already exists", c.ID)
	}
	if err := tx.validateColor(c); err != nil {
		return Color{}, err
	}
	c.ID = tx.nextID(domain.EntityColor, c.ID)
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.colors[c.ID] = cloneColor(c)
	tx.recordChange(Change{Entity: domain.EntityColor, Action: domain.ActionCreate, After: cloneColor(c)})
	return cloneColor(c), nil
}

// UpdateColor mutates an existing color.
func (tx *transaction) UpdateColor(id int64, mutator func(*Color) error) (Color, error) {
	current, ok := tx.state.colors[id]
	if !ok {
		return Color{}, domain.NewNotFound(domain.EntityColor, id)
	}
	before := cloneColor(current)
	if err := mutator(&current); err != nil {
		return Color{}, err
	}
	current.ID = id
	if err := tx.validateColor(current); err != nil {
		return Color{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.colors[id] = cloneColor(current)
	tx.recordChange(Change{Entity: domain.EntityColor, Action: domain.ActionUpdate, Before: before, After: cloneColor(current)})
	return cloneColor(current), nil
}

// DeleteColor removes a color that no slot or stash item references.
func (tx *transaction) DeleteColor(id int64) error {
	current, ok := tx.state.colors[id]
	if !ok {
		return domain.NewNotFound(domain.EntityColor, id)
	}
	for _, slot := range tx.state.slots {
		if slot.ColorID == id {
			return fmt.Errorf("color %d still referenced by slot %d", id, slot.ID)
		}
	}
	for _, item := range tx.state.stash {
		if item.ColorID == id {
			return fmt.Errorf("color %d still referenced by stash item %d", id, item.ID)
		}
	}
	delete(tx.state.colors, id)
	tx.recordChange(Change{Entity: domain.EntityColor, Action: domain.ActionDelete, Before: cloneColor(current)})
	return nil
}

// CreatePalette stores a new draft palette.
func (tx *transaction) CreatePalette(p Palette) (Palette, error) {
	if _, exists := tx.state.palettes[p.ID]; exists && p.ID > 0 {
		return Palette{}, fmt.Errorf("palette %d already exists", p.ID)
	}
	if p.Status == "" {
		p.Status = domain.PaletteDraft
	}
	p.ID = tx.nextID(domain.EntityPalette, p.ID)
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.palettes[p.ID] = p
	tx.recordChange(Change{Entity: domain.EntityPalette, Action: domain.ActionCreate, After: p})
	return p, nil
}

// UpdatePalette mutates an existing palette.
func (tx *transaction) UpdatePalette(id int64, mutator func(*Palette) error) (Palette, error) {
	current, ok := tx.state.palettes[id]
	if !ok {
		return Palette{}, domain.NewNotFound(domain.EntityPalette, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Palette{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.palettes[id] = current
	tx.recordChange(Change{Entity: domain.EntityPalette, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeletePalette removes a palette together with its slots.
func (tx *transaction) DeletePalette(id int64) error {
	current, ok := tx.state.palettes[id]
	if !ok {
		return domain.NewNotFound(domain.EntityPalette, id)
	}
	for _, slot := range paletteSlots(&tx.state, id) {
		delete(tx.state.slots, slot.ID)
		tx.recordChange(Change{Entity: domain.EntityColorSlot, Action: domain.ActionDelete, Before: slot})
	}
	delete(tx.state.palettes, id)
	tx.recordChange(Change{Entity: domain.EntityPalette, Action: domain.ActionDelete, Before: current})
	return nil
}

func (tx *transaction) validateSlot(slot ColorSlot) error {
	if _, ok := tx.state.palettes[slot.PaletteID]; !ok {
		return domain.NewNotFound(domain.EntityPalette, slot.PaletteID)
	}
	if _, ok := tx.state.colors[slot.ColorID]; !ok {
		return domain.NewNotFound(domain.EntityColor, slot.ColorID)
	}
	if slot.Role == "" {
		return fmt.Errorf("%w: slot requires a role", domain.ErrInvalidInput)
	}
	return nil
}

// CreateColorSlot stores a new slot. Capacity, uniqueness and category are
// enforced by the rules engine at commit.
func (tx *transaction) CreateColorSlot(slot ColorSlot) (ColorSlot, error) {
	if _, exists := tx.state.slots[slot.ID]; exists && slot.ID > 0 {
		return ColorSlot{}, fmt.Errorf("slot %d already exists", slot.ID)
	}
	if err := tx.validateSlot(slot); err != nil {
		return ColorSlot{}, err
	}
	slot.ID = tx.nextID(domain.EntityColorSlot, slot.ID)
	slot.CreatedAt = tx.now
	slot.UpdatedAt = tx.now
	tx.state.slots[slot.ID] = slot
	tx.recordChange(Change{Entity: domain.EntityColorSlot, Action: domain.ActionCreate, After: slot})
	return slot, nil
}

// UpdateColorSlot mutates an existing slot.
func (tx *transaction) UpdateColorSlot(id int64, mutator func(*ColorSlot) error) (ColorSlot, error) {
	current, ok := tx.state.slots[id]
	if !ok {
		return ColorSlot{}, domain.NewNotFound(domain.EntityColorSlot, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return ColorSlot{}, err
	}
	current.ID = id
	if err := tx.validateSlot(current); err != nil {
		return ColorSlot{}, err
	}
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.slots[id] = current
	tx.recordChange(Change{Entity: domain.EntityColorSlot, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteColorSlot removes a slot without renumbering its siblings.
func (tx *transaction) DeleteColorSlot(id int64) error {
	current, ok := tx.state.slots[id]
	if !ok {
		return domain.NewNotFound(domain.EntityColorSlot, id)
	}
	delete(tx.state.slots, id)
	tx.recordChange(Change{Entity: domain.EntityColorSlot, Action: domain.ActionDelete, Before: current})
	return nil
}

func (tx *transaction) validateStashItem(item StashItem) error {
	if _, ok := tx.state.colors[item.ColorID]; !ok {
		return domain.NewNotFound(domain.EntityColor, item.ColorID)
	}
	if !item.Status.Valid() {
		return fmt.Errorf("%w: unknown ownership status %q", domain.ErrInvalidInput, item.Status)
	}
	for id, existing := range tx.state.stash {
		if id != item.ID && existing.OwnerID == item.OwnerID && existing.ColorID == item.ColorID {
			return fmt.Errorf("%w: color %d already in stash of owner %d", domain.ErrDuplicateColor, item.ColorID, item.OwnerID)
		}
	}
	return nil
}

// CreateStashItem stores a new stash item.
func (tx *transaction) CreateStashItem(item StashItem) (StashItem, error) {
	if _, exists := tx.state.stash[item.ID]; exists && item.ID > 0 {
		return StashItem{}, fmt.Errorf("stash item %d already exists", item.ID)
	}
	if err := tx.validateStashItem(item); err != nil {
		return StashItem{}, err
	}
	item.ID = tx.nextID(domain.EntityStashItem, item.ID)
	item.CreatedAt = tx.now
	item.UpdatedAt = tx.now
	tx.state.stash[item.ID] = item
	tx.recordChange(Change{Entity: domain.EntityStashItem, Action: domain.ActionCreate, After: item})
	return item, nil
}

// UpdateStashItem mutates an existing stash item.
func (tx *transaction) UpdateStashItem(id int64, mutator func(*StashItem) error) (StashItem, error) {
	current, ok := tx.state.stash[id]
	if !ok {
		return StashItem{}, domain.NewNotFound(domain.EntityStashItem, id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return StashItem{}, err
	}
	current.ID = id
	if err := tx.validateStashItem(current); err != nil {
		return StashItem{}, err
	}
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.stash[id] = current
	tx.recordChange(Change{Entity: domain.EntityStashItem, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteStashItem removes a stash item.
func (tx *transaction) DeleteStashItem(id int64) error {
	current, ok := tx.state.stash[id]
	if !ok {
		return domain.NewNotFound(domain.EntityStashItem, id)
	}
	delete(tx.state.stash, id)
	tx.recordChange(Change{Entity: domain.EntityStashItem, Action: domain.ActionDelete, Before: current})
	return nil
}
