package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core/attendance"
)

type attendanceApi struct {
	svc attendance.Service
}

func registerAttendanceAPI(authed *echo.Group, s *Server) {
	api := attendanceApi{svc: s.deps.AttendanceSvc}

	ag := authed.Group("/attendance")
	ag.POST("/check-in", api.checkIn, studentMiddleware())
	ag.GET("/students/:id", api.studentSummary)
	ag.GET("", api.query, staffMiddleware())
	ag.POST("/mark", api.mark, staffMiddleware())
	ag.POST("/bulk", api.bulkMark, staffMiddleware())
	ag.POST("/all-present", api.markAllPresent, staffMiddleware())
	ag.GET("/analytics", api.analytics, staffMiddleware())
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data MarkRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	rec, err := api.svc.Mark(ctx.Request().Context(), data.SessionID, data.CohortID, data.Mark, usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) bulkMark(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data attendance.BulkMark
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkMark")
	}
	recs, err := api.svc.BulkMark(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) markAllPresent(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data attendance.MarkAllPresent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAllPresent")
	}
	recs, err := api.svc.MarkAllPresent(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking all present")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.CheckIn(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "checking in")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	recs, err := api.svc.Records(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) studentSummary(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	studentID := ctx.Param("id")
	if !usr.IsStaff() && studentID != usr.ID {
		return errHttpNotFound
	}
	summary, err := api.svc.StudentSummary(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "building student summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *attendanceApi) analytics(ctx echo.Context) error {
	a, err := api.svc.Analytics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building attendance analytics")
	}
	return ctx.JSON(http.StatusOK, a)
}

// MarkRequest marks one student at one session.
type MarkRequest struct {
	SessionID string `json:"session_id"`
	CohortID  string `json:"cohort_id"`
	attendance.Mark
}
