package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/core"
	"assettrack/internal/types"
)

type mockEmployeeStore struct {
	listFn       func(ctx context.Context, activeOnly bool, limit, offset int) ([]types.Employee, error)
	getByIDFn    func(ctx context.Context, id int64) (*types.Employee, error)
	getByEmailFn func(ctx context.Context, email string) (*types.Employee, error)
	createFn     func(ctx context.Context, e *types.Employee) error
	updateFn     func(ctx context.Context, e *types.Employee) error
	deactivateFn func(ctx context.Context, id int64) error
	listAssetsFn func(ctx context.Context, employeeID int64) ([]types.Asset, error)
}

func (m *mockEmployeeStore) List(ctx context.Context, activeOnly bool, limit, offset int) ([]types.Employee, error) {
	if m.listFn != nil {
		return m.listFn(ctx, activeOnly, limit, offset)
	}
	return nil, nil
}

func (m *mockEmployeeStore) GetByID(ctx context.Context, id int64) (*types.Employee, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundEmployee, "employee not found", nil)
}

func (m *mockEmployeeStore) GetByEmail(ctx context.Context, email string) (*types.Employee, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundEmployee, "employee not found", nil)
}

func (m *mockEmployeeStore) Create(ctx context.Context, e *types.Employee) error {
	if m.createFn != nil {
		return m.createFn(ctx, e)
	}
	e.ID = 1
	return nil
}

func (m *mockEmployeeStore) Update(ctx context.Context, e *types.Employee) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, e)
	}
	return nil
}

func (m *mockEmployeeStore) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, id)
	}
	return nil
}

func (m *mockEmployeeStore) ListAssets(ctx context.Context, employeeID int64) ([]types.Asset, error) {
	if m.listAssetsFn != nil {
		return m.listAssetsFn(ctx, employeeID)
	}
	return nil, nil
}

func newTestEmployeeHandler() (*EmployeeHandler, *mockEmployeeStore) {
	store := &mockEmployeeStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEmployeeHandler(store, core.NewValidator(), logger), store
}

func TestEmployeeHandler_List(t *testing.T) {
	h, store := newTestEmployeeHandler()

	var gotActive bool
	var gotLimit, gotOffset int
	store.listFn = func(_ context.Context, activeOnly bool, limit, offset int) ([]types.Employee, error) {
		gotActive, gotLimit, gotOffset = activeOnly, limit, offset
		return []types.Employee{
			{ID: 1, Email: "bo@example.com", FullName: "Bo Lindgren", IsActive: true},
			{ID: 2, Email: "ines@example.com", FullName: "Ines Okafor", IsActive: false},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/employees?active=true&limit=25&offset=50", nil)
	w := httptest.NewRecorder()

	h.HandleList(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotActive)
	assert.Equal(t, 25, gotLimit)
	assert.Equal(t, 50, gotOffset)

	var resp struct {
		Data []types.Employee `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "Bo Lindgren", resp.Data[0].FullName)
}

func TestEmployeeHandler_ListEmptyIsArray(t *testing.T) {
	h, _ := newTestEmployeeHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/employees", nil)
	w := httptest.NewRecorder()

	h.HandleList(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestEmployeeHandler_Create(t *testing.T) {
	h, store := newTestEmployeeHandler()

	var captured *types.Employee
	store.createFn = func(_ context.Context, e *types.Employee) error {
		captured = e
		e.ID = 7
		return nil
	}

	body := `{
		"employee_id": "E-1042",
		"email": "mara@example.com",
		"full_name": "Mara Voss",
		"department": "Engineering",
		"location": "Berlin",
		"manager": "Bo Lindgren"
	}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.HandleCreate(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "mara@example.com", captured.Email)
	assert.Equal(t, "Engineering", captured.Department)
	assert.True(t, captured.IsActive)
}

func TestEmployeeHandler_CreateRejectsBadEmail(t *testing.T) {
	h, _ := newTestEmployeeHandler()

	body := `{"email": "not-an-email", "full_name": "Mara Voss"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.HandleCreate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidField), decodeErrorCode(t, w))
}

func TestEmployeeHandler_CreateRequiresFullName(t *testing.T) {
	h, _ := newTestEmployeeHandler()

	body := `{"email": "mara@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.HandleCreate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(types.ErrCodeValidationInvalidField), decodeErrorCode(t, w))
}

func TestEmployeeHandler_CreateRejectsDuplicateEmail(t *testing.T) {
	h, store := newTestEmployeeHandler()

	store.getByEmailFn = func(_ context.Context, email string) (*types.Employee, error) {
		return &types.Employee{ID: 4, Email: email}, nil
	}
	created := false
	store.createFn = func(_ context.Context, _ *types.Employee) error {
		created = true
		return nil
	}

	body := `{"email": "mara@example.com", "full_name": "Mara Voss"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/employees", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.HandleCreate(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(types.ErrCodeConflictEmailExists), decodeErrorCode(t, w))
	assert.False(t, created)
}

func TestEmployeeHandler_Update(t *testing.T) {
	h, store := newTestEmployeeHandler()

	store.getByIDFn = func(_ context.Context, id int64) (*types.Employee, error) {
		return &types.Employee{
			ID:         id,
			Email:      "mara@example.com",
			FullName:   "Mara Voss",
			Department: "Engineering",
			IsActive:   true,
		}, nil
	}
	var updated *types.Employee
	store.updateFn = func(_ context.Context, e *types.Employee) error {
		updated = e
		return nil
	}

	body := `{"department": "Platform", "is_active": false}`
	req := httptest.NewRequest(http.MethodPut, "/v1/employees/3", bytes.NewBufferString(body))
	req = withURLParam(req, "employeeID", "3")
	w := httptest.NewRecorder()

	h.HandleUpdate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, updated)
	assert.Equal(t, "Platform", updated.Department)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Mara Voss", updated.FullName)
}

func TestEmployeeHandler_Deactivate(t *testing.T) {
	h, store := newTestEmployeeHandler()

	var gotID int64
	store.deactivateFn = func(_ context.Context, id int64) error {
		gotID = id
		return nil
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/employees/8", nil)
	req = withURLParam(req, "employeeID", "8")
	w := httptest.NewRecorder()

	h.HandleDeactivate(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(8), gotID)
}

func TestEmployeeHandler_Get(t *testing.T) {
	h, store := newTestEmployeeHandler()

	store.getByIDFn = func(_ context.Context, id int64) (*types.Employee, error) {
		return &types.Employee{ID: id, Email: "bo@example.com", FullName: "Bo Lindgren"}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/3", nil)
	req = withURLParam(req, "employeeID", "3")
	w := httptest.NewRecorder()

	h.HandleGet(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bo Lindgren")
}

func TestEmployeeHandler_GetNotFound(t *testing.T) {
	h, _ := newTestEmployeeHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/999", nil)
	req = withURLParam(req, "employeeID", "999")
	w := httptest.NewRecorder()

	h.HandleGet(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(types.ErrCodeNotFoundEmployee), decodeErrorCode(t, w))
}

func TestEmployeeHandler_GetRejectsNonNumericID(t *testing.T) {
	h, _ := newTestEmployeeHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/abc", nil)
	req = withURLParam(req, "employeeID", "abc")
	w := httptest.NewRecorder()

	h.HandleGet(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmployeeHandler_ListAssets(t *testing.T) {
	h, store := newTestEmployeeHandler()

	store.getByIDFn = func(_ context.Context, id int64) (*types.Employee, error) {
		return &types.Employee{ID: id}, nil
	}
	store.listAssetsFn = func(_ context.Context, employeeID int64) ([]types.Asset, error) {
		assert.Equal(t, int64(5), employeeID)
		return []types.Asset{
			{ID: 11, AssetTag: "LAP-003", Status: types.StatusActive},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/5/assets", nil)
	req = withURLParam(req, "employeeID", "5")
	w := httptest.NewRecorder()

	h.HandleListAssets(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "LAP-003")
}

func TestEmployeeHandler_ListAssetsUnknownEmployee(t *testing.T) {
	h, store := newTestEmployeeHandler()

	listed := false
	store.listAssetsFn = func(_ context.Context, _ int64) ([]types.Asset, error) {
		listed = true
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/999/assets", nil)
	req = withURLParam(req, "employeeID", "999")
	w := httptest.NewRecorder()

	h.HandleListAssets(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, listed)
}
