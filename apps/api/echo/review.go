package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/review"
)

type reviewApi struct {
	svc  review.Service
	conf core.ReviewConfig
}

func registerReviewAPI(authed *echo.Group, s *Server) {
	api := reviewApi{svc: s.deps.ReviewSvc, conf: s.deps.Conf.Review}

	authed.GET("/deliverables", api.queryDeliverables)
	authed.PATCH("/deliverables/:id/status", api.updateDeliverableStatus, staffMiddleware())

	sg := authed.Group("/submissions")
	sg.GET("", api.querySubmissions)
	sg.POST("", api.submit, studentMiddleware())
	sg.GET("/:id", api.retrieveSubmission)

	rg := authed.Group("/reviews", staffMiddleware())
	rg.GET("/queue", api.queue)
	rg.GET("/completed", api.completed)
	rg.POST("", api.assign)
	rg.POST("/grade", api.grade)
	rg.GET("/rubric/:projectId", api.rubric)

	dg := rg.Group("/:id", api.reviewerMiddleware())
	dg.GET("", api.retrieve)
	dg.POST("/start", api.start)
	dg.POST("/approve", api.approve)
	dg.POST("/request-changes", api.requestChanges)
	dg.POST("/reject", api.reject)
}

// reviewerMiddleware puts the review in context. Mentors only reach the reviews assigned to them.
func (api *reviewApi) reviewerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			rvw, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "getting review")
			}
			if !usr.IsAdmin() && rvw.ReviewerID != usr.ID {
				return errHttpNotFound
			}
			ctx.Set("object", rvw)
			return next(ctx)
		}
	}
}

// Deliverables

func (api *reviewApi) queryDeliverables(ctx echo.Context) error {
	var filter review.DeliverableFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	dlvs, err := api.svc.QueryDeliverables(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying deliverables")
	}
	return ctx.JSON(http.StatusOK, dlvs)
}

func (api *reviewApi) updateDeliverableStatus(ctx echo.Context) error {
	var data review.UpdateDeliverableStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDeliverableStatus")
	}
	dlv, err := api.svc.UpdateDeliverableStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating deliverable status")
	}
	return ctx.JSON(http.StatusOK, dlv)
}

// Submissions

func (api *reviewApi) querySubmissions(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var filter review.SubmissionFilter
	if err = bindQuery(ctx, &filter); err != nil {
		return err
	}
	if !usr.IsStaff() {
		filter.StudentID = usr.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *reviewApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	var data review.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	sub, err := api.svc.CreateSubmission(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *reviewApi) retrieveSubmission(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.GetSubmission(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting submission")
	}
	if !usr.IsStaff() && sub.StudentID != usr.ID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sub)
}

// Reviews

func (api *reviewApi) queue(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	items, err := api.svc.Queue(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "building review queue")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *reviewApi) completed(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	reviews, err := api.svc.Completed(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying completed reviews")
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *reviewApi) assign(ctx echo.Context) error {
	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	rvw, err := api.svc.CreateReview(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, rvw)
}

func (api *reviewApi) grade(ctx echo.Context) error {
	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	grade, err := review.ComputeGrade(data.RubricScores)
	if err != nil {
		return core.NewFieldError("rubric_scores", err.Error())
	}
	return ctx.JSON(http.StatusOK, GradeResponse{
		Grade: grade,
		Band:  review.Band(grade, api.conf.PassMark, api.conf.DistinctionMark),
	})
}

func (api *reviewApi) rubric(ctx echo.Context) error {
	scores, err := api.svc.RubricTemplate(ctx.Request().Context(), ctx.Param("projectId"))
	if err != nil {
		return errors.Wrap(err, "getting rubric template")
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *reviewApi) retrieve(ctx echo.Context) error {
	rvw, ok := ctx.Get("object").(review.Review)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, rvw)
}

func (api *reviewApi) start(ctx echo.Context) error {
	rvw, err := api.svc.Start(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "starting review")
	}
	return ctx.JSON(http.StatusOK, rvw)
}

func (api *reviewApi) decide(ctx echo.Context, decide func(id string, d review.Decision) (review.Review, error)) error {
	var data review.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	rvw, err := decide(ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "deciding review")
	}
	return ctx.JSON(http.StatusOK, rvw)
}

func (api *reviewApi) approve(ctx echo.Context) error {
	return api.decide(ctx, func(id string, d review.Decision) (review.Review, error) {
		return api.svc.Approve(ctx.Request().Context(), id, d)
	})
}

func (api *reviewApi) requestChanges(ctx echo.Context) error {
	return api.decide(ctx, func(id string, d review.Decision) (review.Review, error) {
		return api.svc.RequestChanges(ctx.Request().Context(), id, d)
	})
}

func (api *reviewApi) reject(ctx echo.Context) error {
	return api.decide(ctx, func(id string, d review.Decision) (review.Review, error) {
		return api.svc.Reject(ctx.Request().Context(), id, d)
	})
}

type (
	GradeRequest struct {
		RubricScores []review.RubricScore `json:"rubric_scores"`
	}

	GradeResponse struct {
		Grade int    `json:"grade"`
		Band  string `json:"band"`
	}
)
