package auth

// MockStore is an in-memory auth store for testing.
type MockStore struct {
	tokens map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]string)}
}

func (m *MockStore) SetToken(server string, token string) error {
	m.tokens[NormalizeServer(server)] = token
	return nil
}

func (m *MockStore) GetToken(server string) (string, error) {
	token, ok := m.tokens[NormalizeServer(server)]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (m *MockStore) DeleteToken(server string) error {
	key := NormalizeServer(server)
	if _, ok := m.tokens[key]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, key)
	return nil
}
