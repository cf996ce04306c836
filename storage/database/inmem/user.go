package inmemdb

import (
	"context"

	"github.com/trezcool/registrar/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) findByUsername(username string) (*userRow, bool) {
	for _, row := range repo.db.users {
		if row.Username == username {
			return row, true
		}
	}
	return nil, false
}

func (repo *userRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	_, found := repo.findByUsername(username)
	return found, nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, prof user.Profile) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !usr.Type.Valid() {
		return user.User{}, user.ErrInvalidType
	}
	if _, found := repo.findByUsername(usr.Username); found {
		return user.User{}, user.ErrUsernameExists
	}

	repo.db.pk++
	usr.ID = repo.db.pk
	repo.db.users[usr.ID] = &userRow{User: usr, profile: prof}
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if row, ok := repo.db.users[id]; ok {
		return row.User, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if row, found := repo.findByUsername(username); found {
		return row.User, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdatePassword(_ context.Context, id int, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	row, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	row.PasswordHash = hash
	return nil
}
