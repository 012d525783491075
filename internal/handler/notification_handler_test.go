package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationHandlerListRejectsAnonymous(t *testing.T) {
	h := NewNotificationHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := testContext(rec, nil)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications", nil)

	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationHandlerMarkReadRejectsAnonymous(t *testing.T) {
	h := NewNotificationHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := testContext(rec, nil)
	c.Request = httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil)

	h.MarkRead(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
