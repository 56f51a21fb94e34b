package roles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eros-estates/backend/internal/identity"
	"github.com/eros-estates/backend/internal/models"
)

type fakeReader struct {
	roles   map[uuid.UUID]models.Role
	members map[[2]uuid.UUID]bool
}

func (f fakeReader) GetByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (f fakeReader) GetAll(context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f fakeReader) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Role, error) {
	var out []models.Role
	for _, r := range f.roles {
		if r.EstateID == nil || f.members[[2]uuid.UUID{*r.EstateID, userID}] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeReader) IsMember(_ context.Context, estateID, userID uuid.UUID) (bool, error) {
	return f.members[[2]uuid.UUID{estateID, userID}], nil
}

type roleFixture struct {
	reader               fakeReader
	member               uuid.UUID
	global, mine, theirs models.Role
}

func newRoleFixture() *roleFixture {
	perm := uuid.New()
	myEstate, theirEstate := uuid.New(), uuid.New()
	f := &roleFixture{
		member: uuid.New(),
		global: models.Role{ID: uuid.New(), Name: "Resident", Permissions: []models.Permission{{ID: perm}, {ID: perm}}},
		mine:   models.Role{ID: uuid.New(), EstateID: &myEstate, Name: "Owner"},
		theirs: models.Role{ID: uuid.New(), EstateID: &theirEstate, Name: "Owner"},
	}
	f.reader = fakeReader{
		roles:   map[uuid.UUID]models.Role{f.global.ID: f.global, f.mine.ID: f.mine, f.theirs.ID: f.theirs},
		members: map[[2]uuid.UUID]bool{{myEstate, f.member}: true},
	}
	return f
}

func (f *roleFixture) router(admin string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.reader)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		identity.SetClaims(c, identity.MapClaims{identity.ClaimUserID: f.member.String(), identity.ClaimIsAdmin: admin})
		c.Next()
	})
	r.GET("/roles", h.List)
	r.GET("/roles/:id", h.Get)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandlerGet(t *testing.T) {
	f := newRoleFixture()
	r := f.router("false")

	w := get(r, "/roles/"+f.global.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data RoleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Resident", body.Data.Name)
	assert.Equal(t, f.global.PermissionIDs(), body.Data.Permissions)
	assert.Len(t, body.Data.Permissions, 1)

	assert.Equal(t, http.StatusOK, get(r, "/roles/"+f.mine.ID.String()).Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/roles/"+f.theirs.ID.String()).Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/roles/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/roles/nope").Code)

	assert.Equal(t, http.StatusOK, get(f.router("true"), "/roles/"+f.theirs.ID.String()).Code)
	assert.Equal(t, http.StatusUnauthorized, get(f.router(""), "/roles/"+f.global.ID.String()).Code)
}

func TestHandlerListScopesToCallerEstates(t *testing.T) {
	f := newRoleFixture()
	ids := func(r *gin.Engine) []uuid.UUID {
		w := get(r, "/roles")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []RoleResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		var out []uuid.UUID
		for _, role := range body.Data {
			out = append(out, role.ID)
		}
		return out
	}

	assert.ElementsMatch(t, []uuid.UUID{f.global.ID, f.mine.ID}, ids(f.router("false")))
	assert.ElementsMatch(t, []uuid.UUID{f.global.ID, f.mine.ID, f.theirs.ID}, ids(f.router("true")))
}
