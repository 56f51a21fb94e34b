package emaillogs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eros-estates/backend/internal/models"
)

type listerFunc func(context.Context, uuid.UUID) ([]*models.EmailLog, error)

func (f listerFunc) ListByEstate(ctx context.Context, id uuid.UUID) ([]*models.EmailLog, error) {
	return f(ctx, id)
}

func get(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/estates/:id/emails", h.ListByEstate)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListByEstate(t *testing.T) {
	estateID := uuid.New()
	h := NewHandler(listerFunc(func(_ context.Context, id uuid.UUID) ([]*models.EmailLog, error) {
		require.Equal(t, estateID, id)
		return []*models.EmailLog{{ID: uuid.New(), RecipientEmail: "a@x.com", Status: models.EmailLogStatusQueued}}, nil
	}))

	w := get(h, "/estates/"+estateID.String()+"/emails")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []models.EmailLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "a@x.com", body.Data[0].RecipientEmail)
}

func TestListByEstateErrors(t *testing.T) {
	h := NewHandler(listerFunc(func(context.Context, uuid.UUID) ([]*models.EmailLog, error) {
		return nil, errors.New("db down")
	}))
	assert.Equal(t, http.StatusBadRequest, get(h, "/estates/nope/emails").Code)
	assert.Equal(t, http.StatusInternalServerError, get(h, "/estates/"+uuid.NewString()+"/emails").Code)
}
