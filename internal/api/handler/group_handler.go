package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceapp/user-management-system/internal/api/metrics"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

type GroupHandler struct {
	groups ports.GroupService
}

func NewGroupHandler(groups ports.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// Create registers a group one tier below the actor.
//
// @Summary      Create a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createGroupRequest  true  "New group details"
// @Success      201   {object}  groupResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/groups [post]
func (h *GroupHandler) Create(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	var req createGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	group, err := h.groups.Create(c.Request().Context(), actor, ports.CreateGroupInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Members:     req.Members,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toGroupResponse(group))
}

// List returns the groups of the tier the actor manages.
//
// @Summary      List manageable groups
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   groupResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/groups [get]
func (h *GroupHandler) List(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	groups, err := h.groups.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGroupResponses(groups))
}

// Update modifies a group. A members array in the payload replaces the whole
// member set; omitting it leaves membership untouched.
//
// @Summary      Update a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Group id"
// @Param        body  body      updateGroupRequest  true  "Fields to change"
// @Success      200   {object}  groupResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/groups/{id} [put]
func (h *GroupHandler) Update(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	var req updateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	group, err := h.groups.Update(c.Request().Context(), actor, c.Param("id"), ports.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Members:     req.Members,
	})
	if err != nil {
		return err
	}
	if req.Members != nil {
		metrics.MembershipMutationsTotal.WithLabelValues("replace").Inc()
	}
	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// Delete detaches all members and deactivates the group.
//
// @Summary      Delete a group
// @Tags         groups
// @Security     BearerAuth
// @Param        id  path  string  true  "Group id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/groups/{id} [delete]
func (h *GroupHandler) Delete(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	if err := h.groups.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddMember adds a user to the group's member set.
//
// @Summary      Add a group member
// @Tags         groups
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string         true  "Group id"
// @Param        body  body  memberRequest  true  "User record id to add"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/groups/{id}/members [post]
func (h *GroupHandler) AddMember(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.groups.AddMember(c.Request().Context(), actor, c.Param("id"), req.UserID); err != nil {
		return err
	}
	metrics.MembershipMutationsTotal.WithLabelValues("add").Inc()
	return c.NoContent(http.StatusNoContent)
}

// RemoveMember removes a user from the group's member set.
//
// @Summary      Remove a group member
// @Tags         groups
// @Security     BearerAuth
// @Param        id      path  string  true  "Group id"
// @Param        userId  path  string  true  "User record id to remove"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /api/groups/{id}/members/{userId} [delete]
func (h *GroupHandler) RemoveMember(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	if err := h.groups.RemoveMember(c.Request().Context(), actor, c.Param("id"), c.Param("userId")); err != nil {
		return err
	}
	metrics.MembershipMutationsTotal.WithLabelValues("remove").Inc()
	return c.NoContent(http.StatusNoContent)
}

// VisibleUsers resolves the group's transitive visibility chain.
//
// @Summary      List the USER accounts a group can see
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Group id"
// @Success      200  {array}   userResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/groups/{id}/visible-users [get]
func (h *GroupHandler) VisibleUsers(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	users, err := h.groups.VisibleUsers(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}
