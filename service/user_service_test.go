package service

import (
	"errors"
	"testing"

	"go-ledger-api/model"
	"go-ledger-api/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestUserService_UpdateUserRole(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		dbMock.ExpectExec("UPDATE users SET role").
			WithArgs("admin", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		userService := NewUserService(repository.NewUserRepository(db))
		err = userService.UpdateUserRole(1, model.RoleAdmin)

		assert.NoError(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("repository error", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		dbMock.ExpectExec("UPDATE users SET role").
			WithArgs("user", 2).
			WillReturnError(errors.New("database error"))

		userService := NewUserService(repository.NewUserRepository(db))
		err = userService.UpdateUserRole(2, model.RoleUser)

		assert.Error(t, err)
	})

	t.Run("invalid role never reaches the database", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		userService := NewUserService(repository.NewUserRepository(db))
		err = userService.UpdateUserRole(3, "invalid_role")

		assert.Error(t, err)
		assert.Equal(t, "invalid role specified", err.Error())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
