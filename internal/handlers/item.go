package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ndanilov/itemvault/internal/logging"
	middlewareauth "github.com/ndanilov/itemvault/internal/middleware/auth"
	"github.com/ndanilov/itemvault/internal/service"
	"github.com/ndanilov/itemvault/internal/transport"
	"github.com/ndanilov/itemvault/internal/util"
)

type ItemHandler struct {
	Items *service.ItemService
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_create")

	var req transport.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("item_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("item_create_error", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner := middlewareauth.CurrentUser(c)
	item, err := h.Items.Create(ctx, req, owner.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create item")
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("item_get_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	item, err := h.Items.Get(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get item")
	}
	// deleted items stay retrievable in the engine; the HTTP surface
	// treats them as gone
	if item == nil || item.Deleted {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_list")

	includeDeleted := c.QueryParam("include_deleted") == "true"
	skip := util.ParseIntDefault(c.QueryParam("skip"), 0)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
	skip, limit = util.Clamp(skip, limit)

	items, err := h.Items.List(ctx, includeDeleted, skip, limit)
	if err != nil {
		l.Error("item_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list items")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}

	skip := util.ParseIntDefault(c.QueryParam("skip"), 0)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultLimit)
	skip, limit = util.Clamp(skip, limit)

	total, items, err := h.Items.Search(ctx, q, skip, limit)
	if err != nil {
		l.Error("item_search_error", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "items": items})
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("item_update_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("item_update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("item_update_error", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.Items.Update(ctx, id, req, middlewareauth.CurrentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "not the item owner")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update item")
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "item not found or deleted")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) SoftDeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_soft_delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("item_soft_delete_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	ok, err := h.Items.SoftDelete(ctx, id, middlewareauth.CurrentUser(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "not the item owner")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete item")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

func (h *ItemHandler) HardDeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item_hard_delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("item_hard_delete_error", "status", 400, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	ok, err := h.Items.HardDelete(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete item")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	return c.JSON(http.StatusOK, echo.Map{"hard_deleted": true})
}
