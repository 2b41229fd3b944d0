package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"estatecrm/internal/adapters/persistence/models"
	"estatecrm/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*models.User
	secrets map[string]*models.UserSecret
	// createErr, when set, makes CreateWithSecret fail
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   map[string]*models.User{},
		secrets: map[string]*models.UserSecret{},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) CreateWithSecret(ctx context.Context, user *models.User, secret *models.UserSecret) error {
	if r.createErr != nil {
		return r.createErr
	}
	if err := r.Create(ctx, user); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	secret.UserID = user.ID
	r.secrets[user.ID] = secret
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	delete(r.secrets, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *fakeUserRepo) GetSecret(ctx context.Context, userID string) (*models.UserSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.secrets[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpsertSecret(ctx context.Context, secret *models.UserSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *secret
	r.secrets[secret.UserID] = &cp
	return nil
}

// fakeRefreshTokenRepo is an in-memory RefreshTokenRepository keyed by token
// hash, with the same consumed-token semantics as the real Rotate.
type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*models.RefreshToken{}}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	r.tokens[token.TokenHash] = token
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Rotate(ctx context.Context, oldTokenHash string, newToken *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[oldTokenHash]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.tokens, oldTokenHash)
	if newToken.ID == "" {
		newToken.ID = uuid.NewString()
	}
	r.tokens[newToken.TokenHash] = newToken
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenHash)
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteAllByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, t := range r.tokens {
		if t.IsExpired() {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (r *fakeRefreshTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// fakeResourceRepo is an in-memory ResourceRepository holding rows per table
type fakeResourceRepo struct {
	mu   sync.Mutex
	rows map[string][]map[string]interface{}
	// lastQuery records the most recent List query for assertions
	lastQuery *repositories.ListQuery
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{rows: map[string][]map[string]interface{}{}}
}

func (r *fakeResourceRepo) inScope(row map[string]interface{}, scope *repositories.OwnerScope) bool {
	if scope == nil {
		return true
	}
	for _, col := range scope.Columns {
		if v, ok := row[col]; ok && v == scope.UserID {
			return true
		}
	}
	return false
}

func (r *fakeResourceRepo) matches(row map[string]interface{}, filters map[string]interface{}) bool {
	for col, val := range filters {
		if row[col] != val {
			return false
		}
	}
	return true
}

func (r *fakeResourceRepo) List(ctx context.Context, query *repositories.ListQuery) ([]map[string]interface{}, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = query

	var out []map[string]interface{}
	for _, row := range r.rows[query.Table] {
		if r.inScope(row, query.Scope) && r.matches(row, query.Filters) {
			out = append(out, row)
		}
	}
	total := int64(len(out))
	if query.Offset > len(out) {
		return nil, total, nil
	}
	out = out[query.Offset:]
	if query.Limit > 0 && query.Limit < len(out) {
		out = out[:query.Limit]
	}
	return out, total, nil
}

func (r *fakeResourceRepo) GetByID(ctx context.Context, table, id string, scope *repositories.OwnerScope) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows[table] {
		if row["id"] == id && r.inScope(row, scope) {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeResourceRepo) Insert(ctx context.Context, table string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[table] = append(r.rows[table], fields)
	return nil
}

func (r *fakeResourceRepo) Update(ctx context.Context, table, id string, scope *repositories.OwnerScope, fields map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows[table] {
		if row["id"] == id && r.inScope(row, scope) {
			for col, val := range fields {
				row[col] = val
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeResourceRepo) Delete(ctx context.Context, table, id string, scope *repositories.OwnerScope) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.rows[table]
	for i, row := range rows {
		if row["id"] == id && r.inScope(row, scope) {
			r.rows[table] = append(rows[:i], rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// fakeReportRepo is an in-memory ReportRepository
type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[string]*models.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]*models.Report{}}
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.reports[id]; ok {
		cp := *rep
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReportRepo) Update(ctx context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

// fakeIdentityCache records invalidations
type fakeIdentityCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *fakeIdentityCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	return nil
}
