package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.login")

	var req transport.LoginRequest
	if err := bindValid(c, l, "login_failed", &req); err != nil {
		return err
	}
	resp, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err, "")
	}

	l.Info("login_success", "user", resp.User)
	return transport.OK(c, http.StatusOK, echo.Map{"user": resp.User, "token": resp.Token})
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterRequest
	if err := bindValid(c, l, "register_failed", &req); err != nil {
		return err
	}
	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err, "")
	}

	l.Info("register_success", "user_id", u.ID)
	return transport.OK(c, http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")

	var req transport.RegisterRequest
	if err := bindValid(c, l, "create_user_failed", &req); err != nil {
		return err
	}
	u, err := h.Svc.CreateUser(ctx, req)
	if err != nil {
		return fail(l, "create_user_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list_users")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"count": len(users), "users": users})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, err := parseID(c, l, "get_user_failed", "user")
	if err != nil {
		return err
	}
	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(l, "get_user_failed", err, "the user with the given id was not found")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.patch_user")

	id, err := parseID(c, l, "patch_user_failed", "user")
	if err != nil {
		return err
	}
	var req transport.PatchUserRequest
	if err := bindValid(c, l, "patch_user_failed", &req); err != nil {
		return err
	}
	u, err := h.Svc.PatchUser(ctx, id, req)
	if err != nil {
		return fail(l, "patch_user_failed", err, "the user cannot be updated, it was not found")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	id, err := parseID(c, l, "delete_user_failed", "user")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		return fail(l, "delete_user_failed", err, "the user with the id of "+id.String()+" is not found")
	}
	return transport.OKMessage(c, http.StatusOK, "the user with the id of "+id.String()+" is deleted", nil)
}

func (h *UserHTTP) CountUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.count_users")

	n, err := h.Svc.CountUsers(ctx)
	if err != nil {
		return fail(l, "count_users_failed", err, "")
	}
	return transport.OK(c, http.StatusOK, echo.Map{"userCount": n})
}
