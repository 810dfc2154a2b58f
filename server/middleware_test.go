package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callAuth(t *testing.T, s *Server, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := s.authMiddleware(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, called
}

func TestAuthMiddleware(t *testing.T) {
	sessionCols := []string{"id", "user_id", "token", "expires_at"}

	t.Run("valid session", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		s := &Server{store: NewStore(db)}

		mock.ExpectQuery(`SELECT id, user_id, token, expires_at FROM sessions WHERE token = \$1`).
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows(sessionCols).
				AddRow("s1", testUser, "tok-1", time.Now().Add(time.Hour)))

		rec, called := callAuth(t, s, "Bearer tok-1")
		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired session", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		s := &Server{store: NewStore(db)}

		mock.ExpectQuery(`SELECT id, user_id, token, expires_at FROM sessions WHERE token = \$1`).
			WithArgs("tok-old").
			WillReturnRows(sqlmock.NewRows(sessionCols).
				AddRow("s2", testUser, "tok-old", time.Now().Add(-time.Hour)))

		rec, called := callAuth(t, s, "Bearer tok-old")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing header", func(t *testing.T) {
		s := &Server{}

		rec, called := callAuth(t, s, "")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		s := &Server{}

		rec, called := callAuth(t, s, "Basic dXNlcjpwYXNz")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
