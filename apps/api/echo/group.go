package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core/group"
)

type groupApi struct {
	svc *group.Service
}

func registerGroupAPI(g *echo.Group, svc *group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.DELETE("/:groupName", api.destroy)
	gg.GET("/:groupName/email", api.retrieveEmail)
	gg.PUT("/:groupName/email", api.updateEmail)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	names, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, names)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}

	name, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"groupName": name,
		"message":   fmt.Sprintf("Group '%s' created successfully", name),
	})
}

func (api *groupApi) destroy(ctx echo.Context) error {
	name := ctx.Param("groupName")
	if err := api.svc.Delete(name); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("Group '%s' deleted successfully", name),
	})
}

func (api *groupApi) retrieveEmail(ctx echo.Context) error {
	name := ctx.Param("groupName")
	email, err := api.svc.GetEmail(name)
	if err != nil {
		return err
	}

	res := echo.Map{"groupName": name, "email": nil}
	if email != "" {
		res["email"] = email
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *groupApi) updateEmail(ctx echo.Context) error {
	var data group.Email
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to group.Email")
	}
	data.GroupName = ctx.Param("groupName")

	if err := api.svc.SetEmail(data); err != nil {
		return err
	}

	msg := fmt.Sprintf("Email notifications configured for group '%s'", data.GroupName)
	if data.Email == "" {
		msg = fmt.Sprintf("Email notifications disabled for group '%s'", data.GroupName)
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"groupName": data.GroupName,
		"email":     data.Email,
		"message":   msg,
	})
}
