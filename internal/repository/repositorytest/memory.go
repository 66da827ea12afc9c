// Package repositorytest 提供内存版 Store，供上层测试使用
package repositorytest

import (
	"context"
	"errors"
	"sync"

	"FinTrack/internal/model"
	"FinTrack/internal/repository"
)

// MemoryStore 线程安全的内存 Store，唯一约束与数据库一致
type MemoryStore struct {
	mu sync.Mutex

	users     map[int64]model.User
	addresses map[int64]model.Address
	contacts  map[int64]model.Contact
	settings  map[int64]model.Settings

	countries  []model.Country
	cities     []model.City
	currencies []model.Currency
	languages  []model.Language

	// Err 非空时所有操作返回该错误
	Err error
	// CompletionCalls Completion 被调用的次数
	CompletionCalls int
}

// NewMemoryStore 预置与迁移相同的基础数据
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[int64]model.User{},
		addresses:  map[int64]model.Address{},
		contacts:   map[int64]model.Contact{},
		settings:   map[int64]model.Settings{},
		countries:  append([]model.Country(nil), model.SeedCountries...),
		cities:     append([]model.City(nil), model.SeedCities...),
		currencies: append([]model.Currency(nil), model.SeedCurrencies...),
		languages:  append([]model.Language(nil), model.SeedLanguages...),
	}
}

func (m *MemoryStore) Completion(_ context.Context, userID int64) (*model.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompletionCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	_, u := m.users[userID]
	_, a := m.addresses[userID]
	_, c := m.contacts[userID]
	_, s := m.settings[userID]
	return &model.Completion{IsUser: u, IsAddress: a, IsContact: c, IsSettings: s}, nil
}

func (m *MemoryStore) UsernameTaken(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[user.PublicID]; ok {
		return repository.ErrDuplicate
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.PublicID] = *user
	return nil
}

func (m *MemoryStore) GetUser(_ context.Context, publicID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[publicID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UpsertAddress(_ context.Context, address *model.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.addresses[address.UserID] = *address
	return nil
}

func (m *MemoryStore) PhoneOwner(_ context.Context, phoneHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	for uid, c := range m.contacts {
		if c.PhoneHash == phoneHash {
			return uid, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (m *MemoryStore) UpsertContact(_ context.Context, contact *model.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for uid, c := range m.contacts {
		if c.PhoneHash == contact.PhoneHash && uid != contact.UserID {
			return repository.ErrDuplicate
		}
	}
	m.contacts[contact.UserID] = *contact
	return nil
}

func (m *MemoryStore) GetContact(_ context.Context, userID int64) (*model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.contacts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) UpsertSettings(_ context.Context, settings *model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.settings[settings.UserID] = *settings
	return nil
}

// Settings 读取已保存的偏好设置
func (m *MemoryStore) Settings(userID int64) (model.Settings, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	return s, ok
}

func (m *MemoryStore) Countries(context.Context) ([]model.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Country(nil), m.countries...), m.Err
}

func (m *MemoryStore) Cities(_ context.Context, countryID int64) ([]model.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.City
	for _, c := range m.cities {
		if c.CountryID == countryID {
			out = append(out, c)
		}
	}
	return out, m.Err
}

func (m *MemoryStore) GetCity(_ context.Context, cityID int64) (*model.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.cities {
		if c.ID == cityID {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemoryStore) Currencies(context.Context) ([]model.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Currency(nil), m.currencies...), m.Err
}

func (m *MemoryStore) Languages(context.Context) ([]model.Language, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Language(nil), m.languages...), m.Err
}

func (m *MemoryStore) CountryExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.countries {
		if c.ID == id {
			return true, m.Err
		}
	}
	return false, m.Err
}

func (m *MemoryStore) CurrencyExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.currencies {
		if c.ID == id {
			return true, m.Err
		}
	}
	return false, m.Err
}

func (m *MemoryStore) LanguageExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.languages {
		if l.ID == id {
			return true, m.Err
		}
	}
	return false, m.Err
}

// ErrUnavailable 模拟数据库故障
var ErrUnavailable = errors.New("store unavailable")

var _ repository.Store = (*MemoryStore)(nil)
