package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// users joined to the role table selected by user_type
func userSelect() sq.SelectBuilder {
	return psql.
		Select("u.id", "u.username", "u.password_hash", "u.user_type").
		Column(`COALESCE(CASE u.user_type
			WHEN 'student' THEN s.name
			WHEN 'teacher' THEN t.name
			WHEN 'admin' THEN a.name
		END, '') AS name`).
		From("users u").
		LeftJoin("students s ON s.id = u.id").
		LeftJoin("teachers t ON t.id = u.id").
		LeftJoin("admins a ON a.id = u.id")
}

func (repo *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	found, err := exists(ctx, repo.db.db, psql.Select("1").From("users").Where(sq.Eq{"username": username}))
	return found, errors.Wrap(err, "checking username")
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, prof user.Profile) (user.User, error) {
	if !usr.Type.Valid() {
		return user.User{}, user.ErrInvalidType
	}

	err := repo.db.withTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(
			ctx,
			"INSERT INTO users (username, password_hash, user_type) VALUES ($1, $2, $3) RETURNING id",
			usr.Username, usr.PasswordHash, usr.Type,
		).Scan(&usr.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return user.ErrUsernameExists
			}
			return errors.Wrap(err, "inserting user")
		}

		var role sq.InsertBuilder
		switch usr.Type {
		case user.TypeStudent:
			role = psql.Insert("students").
				Columns("id", "name", "max_units").
				Values(usr.ID, usr.Name, prof.MaxUnits)
		case user.TypeTeacher:
			role = psql.Insert("teachers").
				Columns("id", "name", "max_courses", "courses_taught").
				Values(usr.ID, usr.Name, prof.MaxCourses, prof.CoursesTaught)
		case user.TypeAdmin:
			role = psql.Insert("admins").
				Columns("id", "name").
				Values(usr.ID, usr.Name)
		default:
			return user.ErrInvalidType
		}
		_, err = execSq(ctx, tx, role)
		return errors.Wrapf(err, "inserting %s", usr.Type)
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := getSq(ctx, repo.db.db, &usr, userSelect().Where(sq.Eq{"u.id": id}))
	return usr, trapNoRowsErr(err, user.ErrNotFound)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	err := getSq(ctx, repo.db.db, &usr, userSelect().Where(sq.Eq{"u.username": username}))
	return usr, trapNoRowsErr(err, user.ErrNotFound)
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id int, hash []byte) error {
	res, err := execSq(ctx, repo.db.db, psql.Update("users").Set("password_hash", hash).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
