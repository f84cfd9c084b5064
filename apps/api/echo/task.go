package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
)

type taskApi struct {
	svc task.Service
}

func registerTaskAPI(authed *echo.Group, s *Server) {
	api := taskApi{svc: s.deps.TaskSvc}

	tg := authed.Group("/tasks")
	tg.GET("", api.query)
	tg.POST("", api.create, staffMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.PATCH("/:id/status", api.updateStatus)
}

// visibleTask returns the task when usr may see it: staff see every task, students their own.
func (api *taskApi) visibleTask(ctx echo.Context, usr user.User) (task.Task, error) {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	if !usr.IsStaff() && t.AssignedTo != usr.ID {
		return task.Task{}, errHttpNotFound
	}
	return t, nil
}

func (api *taskApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var filter task.QueryFilter
	if err = bindQuery(ctx, &filter); err != nil {
		return err
	}
	if !usr.IsStaff() {
		filter.AssignedTo = usr.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tasks, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	t, err := api.visibleTask(ctx, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) updateStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if _, err = api.visibleTask(ctx, usr); err != nil {
		return err
	}

	var data task.UpdateStatus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	t, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating task status")
	}
	return ctx.JSON(http.StatusOK, t)
}
