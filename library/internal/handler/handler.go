package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/dkenzhe/library-service/library/internal/errs"
	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/library/internal/validate"
	md "github.com/dkenzhe/library-service/pkg/middleware"
	echoValidate "github.com/dkenzhe/library-service/pkg/validate"
	_ "github.com/dkenzhe/library-service/swagger"
)

type Handler struct {
	librarySvc LibraryService
	log        *zap.Logger
}

func New(librarySvc LibraryService, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = echoValidate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/password/reset-request", h.PasswordResetRequest)
	api.POST("/password/reset-confirm", h.PasswordResetConfirm)

	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.PATCH("/users/:id", h.UpdateUser)
	api.DELETE("/users/:id", h.DeleteUser)
	api.POST("/users/:id/password", h.ChangePassword)
	api.GET("/users/:id/loans", h.UserLoans)
	api.GET("/users/:id/targets", h.ListTargets)
	api.POST("/targets", h.CreateTarget)

	api.POST("/books", h.CreateBook)
	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.POST("/journals", h.CreateJournal)
	api.GET("/journals", h.ListJournals)
	api.GET("/journals/:id", h.GetJournal)
	api.DELETE("/journals/:id", h.DeleteJournal)

	api.POST("/reports", h.CreateReport)
	api.GET("/reports", h.ListReports)
	api.GET("/reports/:id", h.GetReport)
	api.DELETE("/reports/:id", h.DeleteReport)

	api.POST("/loans/books", h.borrow(model.KindBook))
	api.POST("/loans/books/:id/return", h.returnLoan(model.KindBook))
	api.POST("/loans/journals", h.borrow(model.KindJournal))
	api.POST("/loans/journals/:id/return", h.returnLoan(model.KindJournal))
	api.POST("/loans/reports", h.borrow(model.KindReport))
	api.POST("/loans/reports/:id/return", h.returnLoan(model.KindReport))

	api.GET("/audit", h.ListAudit)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// fieldErrors renders a checker failure as the {field, message} list
// clients use for per-field highlighting.
func fieldErrors(err error) *echo.HTTPError {
	var ve validate.Errors
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"errors": ve})
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func svcError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrEmailTaken),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrHasOpenLoans),
		errors.Is(err, errs.ErrItemUnavailable),
		errors.Is(err, errs.ErrLoanClosed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrWrongPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrTokenInvalid),
		errors.Is(err, errs.ErrReturnDate),
		errors.Is(err, errs.ErrEmptyUpdate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// Register godoc
// @Summary  Register a new user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    request body model.RegisterRequest true "registration payload"
// @Success  201 {object} model.User
// @Router   /register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := validate.Register(req)
	if err != nil {
		return fieldErrors(err)
	}
	user, err := h.librarySvc.Register(c.Request().Context(), in)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary  Verify credentials
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    request body model.LoginRequest true "credentials"
// @Success  200 {object} model.User
// @Router   /login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := validate.Login(req)
	if err != nil {
		return fieldErrors(err)
	}
	user, err := h.librarySvc.Login(c.Request().Context(), in)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) PasswordResetRequest(c echo.Context) error {
	var req model.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := validate.ResetRequest(req)
	if err != nil {
		return fieldErrors(err)
	}
	token, err := h.librarySvc.PasswordResetRequest(c.Request().Context(), in)
	if err != nil {
		return svcError(err)
	}
	// no mailer in this service: the token rides back to the caller,
	// which is also what keeps the flow testable end to end
	return c.JSON(http.StatusAccepted, echo.Map{"token": token})
}

func (h *Handler) PasswordResetConfirm(c echo.Context) error {
	var req model.PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := validate.ResetConfirm(req)
	if err != nil {
		return fieldErrors(err)
	}
	if err := h.librarySvc.PasswordResetConfirm(c.Request().Context(), in); err != nil {
		return svcError(err)
	}
	return c.NoContent(http.StatusOK)
}

// ListUsers godoc
// @Summary  List users with paging, role filter and search
// @Tags     users
// @Produce  json
// @Param    page   query string false "page, default 1"
// @Param    limit  query string false "page size 1..100, default 10"
// @Param    role   query string false "ADMIN | LIBRARIAN | STUDENT"
// @Param    search query string false "substring of name or email"
// @Success  200 {object} model.ListUsers
// @Router   /users [get]
func (h *Handler) ListUsers(c echo.Context) error {
	q, err := validate.UserQuery(model.UserQueryRequest{
		Page:   c.QueryParam("page"),
		Limit:  c.QueryParam("limit"),
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return fieldErrors(err)
	}
	users, err := h.librarySvc.ListUsers(c.Request().Context(), q)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	user, err := h.librarySvc.GetUser(c.Request().Context(), id)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	var req model.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := validate.UpdateUser(req)
	if err != nil {
		return fieldErrors(err)
	}
	user, err := h.librarySvc.UpdateUser(c.Request().Context(), id, in)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	if err := h.librarySvc.DeleteUser(c.Request().Context(), id); err != nil {
		return svcError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	var req model.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := validate.ChangePassword(req)
	if err != nil {
		return fieldErrors(err)
	}
	if err := h.librarySvc.ChangePassword(c.Request().Context(), id, in); err != nil {
		return svcError(err)
	}
	return c.NoContent(http.StatusOK)
}
