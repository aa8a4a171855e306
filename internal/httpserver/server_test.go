package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/images"
	"github.com/Skotchmaster/eshop/internal/models"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/testutil"
	"github.com/Skotchmaster/eshop/internal/tokens"
	"github.com/Skotchmaster/eshop/internal/transport"
)

const base = "/api/v1"

type testEnv struct {
	e         *echo.Echo
	store     *repo.GormRepo
	issuer    *tokens.Issuer
	uploadDir string
	admin     string
	customer  string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &repo.GormRepo{DB: testutil.NewDB(t)}
	issuer := tokens.NewIssuer([]byte("test-secret"), time.Hour)
	dir := t.TempDir()
	local, err := images.NewLocalStore(dir)
	require.NoError(t, err)

	users := &service.UserService{Store: store, Tokens: issuer, Events: events.Nop{}}
	e := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)
	Register(e, &Deps{
		Base:      base,
		Catalog:   &service.CatalogService{Store: store, Images: local, Events: events.Nop{}},
		Orders:    &service.OrderService{Store: store, Events: events.Nop{}},
		Users:     users,
		Verifier:  issuer,
		UploadDir: dir,
	})

	ctx := context.Background()
	_, err = users.CreateUser(ctx, transport.RegisterRequest{Name: "Admin", Email: "admin@x.com", Password: "admin-pw", IsAdmin: true})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, transport.RegisterRequest{Name: "Customer", Email: "customer@x.com", Password: "customer-pw"})
	require.NoError(t, err)

	env := &testEnv{e: e, store: store, issuer: issuer, uploadDir: dir}
	env.admin = env.login(t, "admin@x.com", "admin-pw")
	env.customer = env.login(t, "customer@x.com", "customer-pw")
	return env
}

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details"`
	RequestID string            `json:"requestId"`

	// Body holds every top-level key, payload keys included.
	Body map[string]json.RawMessage `json:"-"`
}

func (out envelope) decode(t *testing.T, key string, dst any) {
	t.Helper()
	raw, ok := out.Body[key]
	require.True(t, ok, "response has no top-level %q key", key)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func (env *testEnv) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var env2 envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		_ = json.Unmarshal(rec.Body.Bytes(), &env2)
		_ = json.Unmarshal(rec.Body.Bytes(), &env2.Body)
	}
	return rec, env2
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return env.serve(req, token)
}

func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, out := env.doJSON(t, http.MethodPost, base+"/users/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transport.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, out.Success)
	require.Equal(t, email, resp.User)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func multipartProduct(t *testing.T, fields map[string]string, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (env *testEnv) createCategory(t *testing.T, name string) models.Category {
	t.Helper()
	rec, out := env.doJSON(t, http.MethodPost, base+"/categories", map[string]string{"name": name, "icon": "i", "color": "#000"}, env.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cat models.Category
	out.decode(t, "category", &cat)
	return cat
}

func (env *testEnv) createProduct(t *testing.T, category, price string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	body, ct := multipartProduct(t, map[string]string{
		"name":        "Phone",
		"description": "A phone",
		"price":       price,
		"category":    category,
		"isFeatured":  "true",
	}, "my phone.png", "image/png")
	req := httptest.NewRequest(http.MethodPost, base+"/products", body)
	req.Header.Set(echo.HeaderContentType, ct)
	return env.serve(req, env.admin)
}

func TestRegister(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rec, out := env.doJSON(t, http.MethodPost, base+"/users/register",
		map[string]string{"name": "A", "email": "a@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, out.Success)

	require.NotContains(t, out.Body, "data")
	var user map[string]any
	out.decode(t, "user", &user)
	require.Equal(t, "a@x.com", user["email"])
	require.NotContains(t, user, "passwordHash")
	require.NotContains(t, rec.Body.String(), "secret")

	rec, out = env.doJSON(t, http.MethodPost, base+"/users/register",
		map[string]string{"name": "A", "email": "a@x.com", "password": "secret"}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, out.Success)

	rec, out = env.doJSON(t, http.MethodPost, base+"/users/register",
		map[string]string{"name": "A", "email": "not-an-email"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "must be a valid email", out.Details["email"])
	require.Equal(t, "is required", out.Details["password"])
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rec, out := env.doJSON(t, http.MethodPost, base+"/users/login",
		map[string]string{"email": "admin@x.com", "password": "nope"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "password is wrong", out.Message)

	rec, out = env.doJSON(t, http.MethodPost, base+"/users/login",
		map[string]string{"email": "ghost@x.com", "password": "nope"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "user not found", out.Message)

	claims, err := env.issuer.Verify(env.admin)
	require.NoError(t, err)
	require.True(t, claims.IsAdmin)
	u, err := env.store.GetUserByEmail(context.Background(), "admin@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID.String(), claims.UserID)
}

func TestProtectedRoutes(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	for _, path := range []string{"/orders", "/users", "/products/get/count", "/orders/get/totalsales"} {
		rec, out := env.doJSON(t, http.MethodGet, base+path, nil, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		require.False(t, out.Success)

		rec, _ = env.doJSON(t, http.MethodGet, base+path, nil, env.customer)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec, out = env.doJSON(t, http.MethodGet, base+path, nil, env.admin)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.True(t, out.Success)
	}

	rec, _ := env.doJSON(t, http.MethodPost, base+"/categories", map[string]string{"name": "X"}, env.customer)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.doJSON(t, http.MethodGet, base+"/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.doJSON(t, http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCategoryRoundTrip(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	cat := env.createCategory(t, "Phones")

	rec, out := env.doJSON(t, http.MethodGet, base+"/categories/"+cat.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Category
	out.decode(t, "category", &got)
	require.Equal(t, cat, got)

	rec, out = env.doJSON(t, http.MethodPut, base+"/categories/"+cat.ID.String(), map[string]string{"color": "#fff"}, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	out.decode(t, "category", &got)
	require.Equal(t, "Phones", got.Name)
	require.Equal(t, "#fff", got.Color)

	rec, _ = env.doJSON(t, http.MethodDelete, base+"/categories/"+cat.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = env.doJSON(t, http.MethodGet, base+"/categories/"+cat.ID.String(), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, out.Success)

	rec, _ = env.doJSON(t, http.MethodGet, base+"/categories/not-a-uuid", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rec, out := env.createProduct(t, "6f1c1c52-3f4e-4b8e-9a57-4d2b8e0b9f10", "10")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Contains(t, out.Message, "invalid reference")

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	require.Empty(t, entries)

	n, err := env.store.CountProducts(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestProductLifecycle(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	cat := env.createCategory(t, "Phones")

	rec, out := env.createProduct(t, cat.ID.String(), "199.5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var prod models.Product
	out.decode(t, "product", &prod)
	require.Equal(t, "Phones", prod.Category.Name)
	require.True(t, prod.IsFeatured)
	require.True(t, strings.HasPrefix(prod.Image, "http://example.com/public/uploads/my-phone.png-"), prod.Image)
	require.True(t, strings.HasSuffix(prod.Image, ".png"))

	name := filepath.Base(prod.Image)
	_, err := os.Stat(filepath.Join(env.uploadDir, name))
	require.NoError(t, err)

	rec, _ = env.serve(httptest.NewRequest(http.MethodGet, "/public/uploads/"+name, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = env.doJSON(t, http.MethodGet, base+"/products?categories="+cat.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count    int              `json:"count"`
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.True(t, out.Success)
	require.Equal(t, 1, list.Count)
	require.Len(t, list.Products, 1)

	rec, _ = env.doJSON(t, http.MethodGet, base+"/products?categories=bad", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = env.doJSON(t, http.MethodPut, base+"/products/"+prod.ID.String(), map[string]any{"countInStock": 7}, env.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched models.Product
	out.decode(t, "product", &patched)
	require.Equal(t, 7, patched.CountInStock)
	require.Equal(t, "Phone", patched.Name)

	rec, _ = env.doJSON(t, http.MethodPut, base+"/products/"+prod.ID.String(), map[string]any{"category": "6f1c1c52-3f4e-4b8e-9a57-4d2b8e0b9f10"}, env.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = env.doJSON(t, http.MethodGet, base+"/products/get/featured/1", nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)

	rec, _ = env.doJSON(t, http.MethodGet, base+"/products/get/featured/0", nil, env.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.doJSON(t, http.MethodDelete, base+"/products/"+prod.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.doJSON(t, http.MethodGet, base+"/products/"+prod.ID.String(), nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = env.doJSON(t, http.MethodDelete, base+"/products/"+prod.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductRejectsImageType(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	cat := env.createCategory(t, "Phones")

	body, ct := multipartProduct(t, map[string]string{
		"name": "Phone", "description": "d", "price": "1", "category": cat.ID.String(),
	}, "anim.gif", "image/gif")
	req := httptest.NewRequest(http.MethodPost, base+"/products", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec, out := env.serve(req, env.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, out.Message, "invalid image type")

	body, ct = multipartProduct(t, map[string]string{
		"name": "Phone", "description": "d", "price": "1", "category": cat.ID.String(),
	}, "", "")
	req = httptest.NewRequest(http.MethodPost, base+"/products", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec, _ = env.serve(req, env.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLifecycle(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	cat := env.createCategory(t, "Phones")

	rec, out := env.createProduct(t, cat.ID.String(), "10.5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prod models.Product
	out.decode(t, "product", &prod)

	buyer, err := env.store.GetUserByEmail(context.Background(), "customer@x.com")
	require.NoError(t, err)

	orderBody := map[string]any{
		"orderItems":       []map[string]any{{"quantity": 2, "product": prod.ID.String()}, {"quantity": 1, "product": prod.ID.String()}},
		"shippingAddress1": "Main st 1",
		"city":             "Prague",
		"zip":              "11000",
		"country":          "CZ",
		"phone":            "+420",
		"user":             buyer.ID.String(),
	}
	rec, out = env.doJSON(t, http.MethodPost, base+"/orders", orderBody, env.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var order models.Order
	out.decode(t, "order", &order)
	require.Equal(t, "31.5", order.TotalPrice.String())
	require.Equal(t, models.StatusPending, order.Status)

	rec, out = env.doJSON(t, http.MethodGet, base+"/orders/"+order.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var full models.Order
	out.decode(t, "order", &full)
	require.Len(t, full.OrderItems, 2)
	require.Equal(t, "Phones", full.OrderItems[0].Product.Category.Name)
	require.Equal(t, "customer@x.com", full.User.Email)

	rec, out = env.doJSON(t, http.MethodPut, base+"/orders/"+order.ID.String(), map[string]string{"status": "Shipped"}, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	out.decode(t, "order", &full)
	require.Equal(t, "Shipped", full.Status)

	rec, out = env.doJSON(t, http.MethodGet, base+"/orders/get/totalsales", nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, string(out.Body["totalsales"]), "31.5")

	rec, out = env.doJSON(t, http.MethodGet, base+"/orders/get/userorders/"+buyer.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var count int
	out.decode(t, "count", &count)
	require.Equal(t, 1, count)
	require.Contains(t, out.Body, "userOrders")

	rec, _ = env.doJSON(t, http.MethodDelete, base+"/orders/"+order.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, item := range full.OrderItems {
		require.ErrorIs(t, env.store.DB.First(&models.OrderItem{}, "id = ?", item.ID).Error, service.ErrNotFound)
	}

	rec, out = env.doJSON(t, http.MethodGet, base+"/orders/get/count", nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var orderCount int64
	out.decode(t, "orderCount", &orderCount)
	require.Zero(t, orderCount)
}

func TestCreateOrderValidationDetails(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rec, out := env.doJSON(t, http.MethodPost, base+"/orders", map[string]any{
		"orderItems":       []map[string]any{{"quantity": -1, "product": "6f1c1c52-3f4e-4b8e-9a57-4d2b8e0b9f10"}},
		"shippingAddress1": "a", "city": "b", "zip": "c", "country": "d", "phone": "e",
		"user": "6f1c1c52-3f4e-4b8e-9a57-4d2b8e0b9f10",
	}, env.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "must be at least 1", out.Details["orderItems[0].quantity"])

	rec, out = env.doJSON(t, http.MethodPost, base+"/orders", map[string]any{
		"orderItems":       []map[string]any{{"quantity": 1, "product": "6f1c1c52-3f4e-4b8e-9a57-4d2b8e0b9f10"}},
		"shippingAddress1": "a", "city": "b", "zip": "c", "country": "d", "phone": "e",
		"user": "6f1c1c52-3f4e-4b8e-9a57-4d2b8e0b9f10",
	}, env.admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, out.Message, "invalid reference")
	require.Empty(t, out.Details)
}

func TestUserAdminRoutes(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	rec, out := env.doJSON(t, http.MethodPost, base+"/users", map[string]any{"name": "B", "email": "b@x.com", "password": "pw"}, env.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u models.User
	out.decode(t, "user", &u)

	rec, out = env.doJSON(t, http.MethodPut, base+"/users/"+u.ID.String(), map[string]any{"phone": "123"}, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	out.decode(t, "user", &u)
	require.Equal(t, "123", u.Phone)
	env.login(t, "b@x.com", "pw")

	rec, out = env.doJSON(t, http.MethodGet, base+"/users/get/count", nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var userCount int64
	out.decode(t, "userCount", &userCount)
	require.EqualValues(t, 3, userCount)

	rec, _ = env.doJSON(t, http.MethodDelete, base+"/users/"+u.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.doJSON(t, http.MethodGet, base+"/users/"+u.ID.String(), nil, env.admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
