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

	"github.com/pedro-fs-garcia/filmmash-api/internal/crypto"
	"github.com/pedro-fs-garcia/filmmash-api/internal/store"
	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// testClock is a settable clock shared by services and in-memory stores.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// plainHasher stores secrets behind a fixed prefix so tests stay fast.
type plainHasher struct {
	stale bool
}

const plainHashPrefix = "plain$"

func (h plainHasher) Hash(ctx context.Context, secret string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if secret == "" {
		return "", crypto.ErrEmptySecret
	}
	return plainHashPrefix + secret, nil
}

func (h plainHasher) Verify(ctx context.Context, secret, encoded string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !strings.HasPrefix(encoded, plainHashPrefix) {
		return false, crypto.ErrMalformedHash
	}
	return encoded == plainHashPrefix+secret, nil
}

func (h plainHasher) NeedsRehash(string) bool {
	return h.stale
}

// memSessionRepository mirrors the Postgres session repository. The mutex
// plays the role of the row and user locks.
type memSessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.Session
	clock    *testClock

	createErr error
}

func newMemSessionRepository(clock *testClock) *memSessionRepository {
	return &memSessionRepository{sessions: make(map[uuid.UUID]models.Session), clock: clock}
}

func (r *memSessionRepository) Create(_ context.Context, session models.SessionCreate) (models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(session)
}

func (r *memSessionRepository) CreateWithinLimit(_ context.Context, session models.SessionCreate, limit int) (models.SessionCreated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := r.evict(session.UserID, limit)
	created, err := r.insert(session)
	if err != nil {
		return models.SessionCreated{}, err
	}
	return models.SessionCreated{Session: created, Evicted: evicted}, nil
}

func (r *memSessionRepository) GetByID(_ context.Context, id uuid.UUID) (models.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok, nil
}

func (r *memSessionRepository) GetByRefreshTokenHash(_ context.Context, hash string) (models.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshTokenHash == hash {
			return s, true, nil
		}
	}
	return models.Session{}, false, nil
}

func (r *memSessionRepository) GetActiveByUserID(_ context.Context, userID uuid.UUID) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active(userID), nil
}

func (r *memSessionRepository) CountActiveForUser(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active(userID)), nil
}

func (r *memSessionRepository) Update(_ context.Context, id uuid.UUID, patch models.SessionPatch) (models.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apply(id, patch)
}

func (r *memSessionRepository) Revoke(_ context.Context, id uuid.UUID) (models.Session, bool, error) {
	return r.transition(id, models.SessionStatusRevoked)
}

func (r *memSessionRepository) MarkExpired(_ context.Context, id uuid.UUID) (models.Session, bool, error) {
	return r.transition(id, models.SessionStatusExpired)
}

func (r *memSessionRepository) EvictOldestIfOverLimit(_ context.Context, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evict(userID, limit), nil
}

func (r *memSessionRepository) LockAndMutate(_ context.Context, id uuid.UUID, mutate models.SessionMutation) (models.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok {
		return models.Session{}, false, nil
	}

	patch, mutateErr := mutate(current)
	result := current
	if !patch.IsEmpty() {
		updated, _, err := r.apply(id, patch)
		if err != nil {
			return models.Session{}, false, err
		}
		result = updated
	}
	return result, true, mutateErr
}

func (r *memSessionRepository) put(session models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

func (r *memSessionRepository) get(id uuid.UUID) models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

func (r *memSessionRepository) count(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active(userID))
}

func (r *memSessionRepository) insert(session models.SessionCreate) (models.Session, error) {
	if r.createErr != nil {
		return models.Session{}, r.createErr
	}
	for _, s := range r.sessions {
		if s.RefreshTokenHash == session.RefreshTokenHash {
			return models.Session{}, store.ErrRefreshTokenCollision
		}
	}

	now := r.clock.Now()
	created := models.Session{
		ID:               session.ID,
		UserID:           session.UserID,
		RefreshTokenHash: session.RefreshTokenHash,
		Status:           models.SessionStatusActive,
		DeviceInfo:       session.DeviceInfo,
		ExpiresAt:        session.ExpiresAt,
		CreatedAt:        now,
		LastUsedAt:       now,
	}
	r.sessions[created.ID] = created
	return created, nil
}

func (r *memSessionRepository) active(userID uuid.UUID) []models.Session {
	now := r.clock.Now()
	var out []models.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsValidAt(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsedAt.Before(out[j].LastUsedAt) })
	return out
}

// evict expires lapsed sessions and revokes the least recently used ones
// until fewer than limit remain.
func (r *memSessionRepository) evict(userID uuid.UUID, limit int) []uuid.UUID {
	now := r.clock.Now()
	for id, s := range r.sessions {
		if s.UserID == userID && s.IsActive() && s.IsExpiredAt(now) {
			s.Status = models.SessionStatusExpired
			r.sessions[id] = s
		}
	}

	active := r.active(userID)
	if len(active) < limit {
		return nil
	}

	var evicted []uuid.UUID
	for _, s := range active[:len(active)-limit+1] {
		revokedAt := now
		s.Status = models.SessionStatusRevoked
		s.RevokedAt = &revokedAt
		r.sessions[s.ID] = s
		evicted = append(evicted, s.ID)
	}
	return evicted
}

func (r *memSessionRepository) apply(id uuid.UUID, patch models.SessionPatch) (models.Session, bool, error) {
	current, ok := r.sessions[id]
	if !ok {
		return models.Session{}, false, nil
	}
	if !current.IsActive() {
		// terminal rows are never rewritten
		return current, true, nil
	}
	if hash, ok := patch.RefreshTokenHash.Get(); ok {
		for otherID, s := range r.sessions {
			if otherID != id && s.RefreshTokenHash == hash {
				return models.Session{}, false, store.ErrRefreshTokenCollision
			}
		}
	}

	updated := patch.Apply(current)
	if updated.IsRevoked() && !current.IsRevoked() {
		revokedAt := r.clock.Now()
		updated.RevokedAt = &revokedAt
	}
	r.sessions[id] = updated
	return updated, true, nil
}

func (r *memSessionRepository) transition(id uuid.UUID, to models.SessionStatus) (models.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[id]
	if !ok {
		return models.Session{}, false, nil
	}
	if current.Status.IsTerminal() {
		return current, true, nil
	}
	updated, _, err := r.apply(id, models.SessionPatch{Status: models.Some(to)})
	return updated, true, err
}

// memUserRepository mirrors the Postgres user repository, including the
// unique email and username constraints.
type memUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
	roles map[int64]models.Role
	links map[uuid.UUID][]int64
	clock *testClock

	updates int

	// beforeUpdate runs under the lock ahead of every Update, standing in
	// for a write committed by another request.
	beforeUpdate func(users map[uuid.UUID]models.User)
}

func newMemUserRepository(clock *testClock) *memUserRepository {
	return &memUserRepository{
		users: make(map[uuid.UUID]models.User),
		roles: make(map[int64]models.Role),
		links: make(map[uuid.UUID][]int64),
		clock: clock,
	}
}

func (r *memUserRepository) Create(_ context.Context, user models.UserCreate) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := user.User()
	if err := r.checkUnique(created); err != nil {
		return models.User{}, err
	}
	created.CreatedAt = r.clock.Now()
	created.UpdatedAt = created.CreatedAt
	r.users[created.ID] = created
	return created, nil
}

func (r *memUserRepository) GetByID(_ context.Context, id uuid.UUID) (models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok, nil
}

func (r *memUserRepository) GetByEmail(_ context.Context, email string) (models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

func (r *memUserRepository) GetWithRoles(_ context.Context, id uuid.UUID) (models.UserWithRoles, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.UserWithRoles{}, false, nil
	}
	roles := []models.Role{}
	for _, roleID := range r.links[id] {
		roles = append(roles, r.roles[roleID])
	}
	return models.UserWithRoles{User: u, Roles: roles}, true, nil
}

func (r *memUserRepository) Update(_ context.Context, id uuid.UUID, patch models.UserPatch) (models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.beforeUpdate != nil {
		r.beforeUpdate(r.users)
	}

	current, ok := r.users[id]
	if !ok {
		return models.User{}, false, nil
	}
	updated := patch.Apply(current)
	if err := r.checkUnique(updated); err != nil {
		return models.User{}, false, err
	}
	if (updated.OAuthProvider == nil) != (updated.OAuthProviderID == nil) {
		return models.User{}, false, store.ErrUserOAuthPairIncomplete
	}
	if !updated.HasLoginMethod() {
		return models.User{}, false, store.ErrUserLoginMethodRequired
	}
	updated.UpdatedAt = r.clock.Now()
	r.users[id] = updated
	r.updates++
	return updated, true, nil
}

func (r *memUserRepository) SoftDelete(_ context.Context, id uuid.UUID) (models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, false, nil
	}
	deletedAt := r.clock.Now()
	u.DeletedAt = &deletedAt
	u.IsActive = false
	r.users[id] = u
	return u, true, nil
}

func (r *memUserRepository) HardDelete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	delete(r.links, id)
	return true, nil
}

func (r *memUserRepository) AddRoles(_ context.Context, userID uuid.UUID, roleIDs []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []int64
	for _, id := range roleIDs {
		if _, ok := r.roles[id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return missing, nil
	}
	if _, ok := r.users[userID]; !ok {
		return nil, store.ErrUserNotFound
	}
	for _, id := range roleIDs {
		if !slices.Contains(r.links[userID], id) {
			r.links[userID] = append(r.links[userID], id)
		}
	}
	return nil, nil
}

func (r *memUserRepository) RemoveRoles(_ context.Context, userID uuid.UUID, roleIDs []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.links[userID])
	r.links[userID] = slices.DeleteFunc(r.links[userID], func(id int64) bool {
		return slices.Contains(roleIDs, id)
	})
	return int64(before - len(r.links[userID])), nil
}

func (r *memUserRepository) checkUnique(candidate models.User) error {
	for id, u := range r.users {
		if id == candidate.ID {
			continue
		}
		if u.Email == candidate.Email {
			return store.ErrUserAlreadyExists
		}
		if u.Username != nil && candidate.Username != nil && *u.Username == *candidate.Username {
			return store.ErrUserAlreadyExists
		}
	}
	return nil
}

// memRoleRepository keeps roles, permissions and their links.
type memRoleRepository struct {
	mu          sync.Mutex
	nextID      int64
	roles       map[int64]models.Role
	permissions map[int64]models.Permission
	links       map[int64][]int64

	err error
}

func newMemRoleRepository() *memRoleRepository {
	return &memRoleRepository{
		roles:       make(map[int64]models.Role),
		permissions: make(map[int64]models.Permission),
		links:       make(map[int64][]int64),
	}
}

func (r *memRoleRepository) Create(_ context.Context, role models.RoleCreate) (models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return models.Role{}, r.err
	}
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return models.Role{}, store.ErrRoleAlreadyExists
		}
	}
	r.nextID++
	created := models.Role{ID: r.nextID, Name: role.Name, Description: role.Description}
	r.roles[created.ID] = created
	return created, nil
}

func (r *memRoleRepository) GetByID(_ context.Context, id int64) (models.Role, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	return role, ok, nil
}

func (r *memRoleRepository) GetWithPermissions(_ context.Context, id int64) (models.RoleWithPermissions, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return models.RoleWithPermissions{}, false, nil
	}
	permissions := []models.Permission{}
	for _, permissionID := range r.links[id] {
		permissions = append(permissions, r.permissions[permissionID])
	}
	return models.RoleWithPermissions{Role: role, Permissions: permissions}, true, nil
}

func (r *memRoleRepository) AddPermissions(_ context.Context, roleID int64, permissionIDs []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []int64
	for _, id := range permissionIDs {
		if _, ok := r.permissions[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return missing, nil
	}
	if _, ok := r.roles[roleID]; !ok {
		return nil, store.ErrInvalidReference
	}
	for _, id := range permissionIDs {
		if !slices.Contains(r.links[roleID], id) {
			r.links[roleID] = append(r.links[roleID], id)
		}
	}
	return nil, nil
}

// memPermissionRepository shares state with a memRoleRepository so links
// are visible from both sides.
type memPermissionRepository struct {
	roles *memRoleRepository
}

func (r memPermissionRepository) Create(_ context.Context, permission models.PermissionCreate) (models.Permission, error) {
	r.roles.mu.Lock()
	defer r.roles.mu.Unlock()
	for _, existing := range r.roles.permissions {
		if existing.Name == permission.Name {
			return models.Permission{}, store.ErrPermissionAlreadyExists
		}
	}
	r.roles.nextID++
	created := models.Permission{ID: r.roles.nextID, Name: permission.Name, Description: permission.Description}
	r.roles.permissions[created.ID] = created
	return created, nil
}

func (r memPermissionRepository) GetByID(_ context.Context, id int64) (models.Permission, bool, error) {
	r.roles.mu.Lock()
	defer r.roles.mu.Unlock()
	p, ok := r.roles.permissions[id]
	return p, ok, nil
}

func (r memPermissionRepository) GetWithRoles(_ context.Context, id int64) (models.PermissionWithRoles, bool, error) {
	r.roles.mu.Lock()
	defer r.roles.mu.Unlock()
	p, ok := r.roles.permissions[id]
	if !ok {
		return models.PermissionWithRoles{}, false, nil
	}
	roles := []models.Role{}
	for roleID, permissionIDs := range r.roles.links {
		if slices.Contains(permissionIDs, id) {
			roles = append(roles, r.roles.roles[roleID])
		}
	}
	return models.PermissionWithRoles{Permission: p, Roles: roles}, true, nil
}

var errStorageDown = errors.New("connection refused")

var (
	_ store.SessionRepository    = (*memSessionRepository)(nil)
	_ store.UserRepository       = (*memUserRepository)(nil)
	_ store.RoleRepository       = (*memRoleRepository)(nil)
	_ store.PermissionRepository = memPermissionRepository{}
)
