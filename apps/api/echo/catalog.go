package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core/catalog"
)

type catalogApi struct {
	svc catalog.Service
}

func registerCatalogAPI(authed *echo.Group, s *Server) {
	api := catalogApi{svc: s.deps.CatalogSvc}

	authed.GET("/cohorts", api.cohorts)
	authed.GET("/workstreams", api.workstreams)
	authed.GET("/projects", api.projects)
	authed.GET("/projects/:id", api.project)
	authed.GET("/sessions", api.sessions)
}

func (api *catalogApi) cohorts(ctx echo.Context) error {
	cohorts, err := api.svc.Cohorts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *catalogApi) workstreams(ctx echo.Context) error {
	workstreams, err := api.svc.Workstreams(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying workstreams")
	}
	return ctx.JSON(http.StatusOK, workstreams)
}

func (api *catalogApi) projects(ctx echo.Context) error {
	var filter catalog.ProjectFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	// students only see the projects they are enrolled in
	if usr, err := getContextUser(ctx); err == nil && usr.IsStudent() {
		filter.StudentID = usr.ID
	}
	projects, err := api.svc.Projects(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *catalogApi) project(ctx echo.Context) error {
	prj, err := api.svc.Project(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting project")
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *catalogApi) sessions(ctx echo.Context) error {
	var filter catalog.SessionFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	if usr, err := getContextUser(ctx); err == nil && usr.IsStudent() {
		filter.CohortID = usr.CohortID
	}
	sessions, err := api.svc.Sessions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}
