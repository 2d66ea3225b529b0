package user

import (
	"context"
	"strings"
	"sync"
)

type StubUserRepository struct {
	mu     sync.RWMutex
	nextId int
	data   map[int]User
}

func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{data: map[int]User{}}
}

func (s *StubUserRepository) CreateUser(ctx context.Context, user User) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data {
		if strings.EqualFold(existing.Email, user.Email) {
			return 0, ErrEmailTaken
		}
	}
	s.nextId++
	user.Id = s.nextId
	s.data[user.Id] = user
	return user.Id, nil
}

func (s *StubUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepository) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.find(func(u User) bool { return u.Uid == uid })
}

func (s *StubUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *StubUserRepository) find(match func(User) bool) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.data {
		if match(user) {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}
