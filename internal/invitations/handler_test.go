package invitations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eros-estates/backend/internal/identity"
)

type stubIssuer struct {
	got SendRequest
	res *Result
	err error
}

func (s *stubIssuer) Send(_ context.Context, req SendRequest) (*Result, error) {
	s.got = req
	return s.res, s.err
}

func router(issuer Issuer, codec *Codec, claims identity.MapClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(issuer, codec, nil)
	r := gin.New()
	r.GET("/invitations/:code", h.Validate)
	auth := r.Group("/", func(c *gin.Context) { identity.SetClaims(c, claims); c.Next() })
	auth.POST("/estates/:id/invitations", h.Send)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSendHandlerStatus(t *testing.T) {
	caller := uuid.New()
	claims := identity.MapClaims{identity.ClaimUserID: caller.String(), identity.ClaimIsAdmin: "false"}
	path := "/estates/" + uuid.NewString() + "/invitations"
	body := fmt.Sprintf(`{"role_id":%q,"emails":["a@x.com"]}`, uuid.NewString())

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "ok", status: http.StatusCreated},
		{name: "not a member", err: ErrNotAMember, status: http.StatusForbidden},
		{name: "insufficient", err: ErrInsufficientPermissions, status: http.StatusForbidden},
		{name: "role missing", err: ErrRoleNotFound, status: http.StatusNotFound},
		{name: "bad email", err: fmt.Errorf("%w: %q", ErrInvalidEmail, "x"), status: http.StatusBadRequest},
		{name: "storage", err: fmt.Errorf("store invitations: boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := &stubIssuer{res: &Result{}, err: tt.err}
			w := post(router(issuer, NewCodec("s"), claims), path, body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, caller, issuer.got.SenderID)
		})
	}
}

func TestSendHandlerOnBehalf(t *testing.T) {
	caller, other := uuid.New(), uuid.New()
	path := "/estates/" + uuid.NewString() + "/invitations"
	body := fmt.Sprintf(`{"role_id":%q,"sender_id":%q,"emails":["a@x.com"]}`, uuid.NewString(), other)

	issuer := &stubIssuer{res: &Result{}}
	member := identity.MapClaims{identity.ClaimUserID: caller.String(), identity.ClaimIsAdmin: "false"}
	w := post(router(issuer, NewCodec("s"), member), path, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := identity.MapClaims{identity.ClaimUserID: caller.String(), identity.ClaimIsAdmin: "true"}
	w = post(router(issuer, NewCodec("s"), admin), path, body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, other, issuer.got.SenderID)
}

func TestSendHandlerRejectsBadInput(t *testing.T) {
	claims := identity.MapClaims{identity.ClaimUserID: uuid.NewString(), identity.ClaimIsAdmin: "false"}
	issuer := &stubIssuer{res: &Result{}}
	r := router(issuer, NewCodec("s"), claims)

	assert.Equal(t, http.StatusBadRequest, post(r, "/estates/nope/invitations", `{}`).Code)
	path := "/estates/" + uuid.NewString() + "/invitations"
	assert.Equal(t, http.StatusBadRequest, post(r, path, `{"role_id":"x","emails":["a@x.com"]}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, path, fmt.Sprintf(`{"role_id":%q,"emails":[]}`, uuid.NewString())).Code)

	w := post(router(issuer, NewCodec("s"), identity.MapClaims{}), path, `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateHandler(t *testing.T) {
	codec := NewCodec("s")
	r := router(&stubIssuer{}, codec, nil)
	id := uuid.New()
	exp := time.Now().UTC().Add(ValidFor)
	code, err := codec.Encode(id, "a@x.com", Payload{EstateID: uuid.New(), EstateName: "Oak Park", RoleName: "Resident", ExpirationDate: exp})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/"+code, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body.Data["invitation_id"])
	assert.Equal(t, "Oak Park", body.Data["estate_name"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/garbage", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	expired, err := codec.Encode(id, "a@x.com", Payload{ExpirationDate: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invitations/"+expired, nil))
	assert.Equal(t, http.StatusGone, w.Code)
}
