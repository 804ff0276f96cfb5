package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dkenzhe/library-service/library/internal/model"
	"github.com/dkenzhe/library-service/library/internal/validate"
)

func parsePaging(c echo.Context) (page, size int, err error) {
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("page is invalid"))
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if size, err = strconv.Atoi(sizeParam); err != nil {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("size is invalid"))
		}
	}
	return page, size, nil
}

// CreateBook godoc
// @Summary  Add a book to the catalog
// @Tags     catalog
// @Accept   json
// @Produce  json
// @Param    request body model.CreateBookRequest true "book"
// @Success  201 {object} model.Book
// @Router   /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	book, err := h.librarySvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) ListBooks(c echo.Context) error {
	page, size, err := parsePaging(c)
	if err != nil {
		return err
	}
	books, err := h.librarySvc.ListBooks(c.Request().Context(), c.QueryParam("category"), page, size)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	book, err := h.librarySvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	if err := h.librarySvc.DeleteBook(c.Request().Context(), id); err != nil {
		return svcError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateJournal(c echo.Context) error {
	var req model.CreateJournalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	journal, err := h.librarySvc.CreateJournal(c.Request().Context(), req)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusCreated, journal)
}

func (h *Handler) ListJournals(c echo.Context) error {
	page, size, err := parsePaging(c)
	if err != nil {
		return err
	}
	journals, err := h.librarySvc.ListJournals(c.Request().Context(), page, size)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, journals)
}

func (h *Handler) GetJournal(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	journal, err := h.librarySvc.GetJournal(c.Request().Context(), id)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, journal)
}

func (h *Handler) DeleteJournal(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	if err := h.librarySvc.DeleteJournal(c.Request().Context(), id); err != nil {
		return svcError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateReport(c echo.Context) error {
	var req model.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	report, err := h.librarySvc.CreateReport(c.Request().Context(), req)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusCreated, report)
}

func (h *Handler) ListReports(c echo.Context) error {
	page, size, err := parsePaging(c)
	if err != nil {
		return err
	}
	reports, err := h.librarySvc.ListReports(c.Request().Context(), page, size)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, reports)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	report, err := h.librarySvc.GetReport(c.Request().Context(), id)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	if err := h.librarySvc.DeleteReport(c.Request().Context(), id); err != nil {
		return svcError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// borrow godoc
// @Summary  Borrow a lendable item
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    request body model.BorrowRequest true "loan"
// @Success  201 {object} model.Loan
// @Router   /loans/books [post]
func (h *Handler) borrow(kind model.ItemKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req model.BorrowRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
		loan, err := h.librarySvc.Borrow(c.Request().Context(), kind, req)
		if err != nil {
			return svcError(err)
		}
		return c.JSON(http.StatusCreated, loan)
	}
}

func (h *Handler) returnLoan(kind model.ItemKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := validate.UserID(c.Param("id"))
		if err != nil {
			return fieldErrors(err)
		}
		var req model.ReturnRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := c.Validate(&req); err != nil {
			return err
		}
		loan, err := h.librarySvc.Return(c.Request().Context(), kind, id, req.ReturnDate.Time)
		if err != nil {
			return svcError(err)
		}
		return c.JSON(http.StatusOK, loan)
	}
}

func (h *Handler) UserLoans(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	loans, err := h.librarySvc.UserLoans(c.Request().Context(), id)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) CreateTarget(c echo.Context) error {
	var req model.CreateTargetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	target, err := h.librarySvc.CreateTarget(c.Request().Context(), req)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusCreated, target)
}

func (h *Handler) ListTargets(c echo.Context) error {
	id, err := validate.UserID(c.Param("id"))
	if err != nil {
		return fieldErrors(err)
	}
	var year int
	if yearParam := c.QueryParam("year"); yearParam != "" {
		if year, err = strconv.Atoi(yearParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("year is invalid"))
		}
	}
	targets, err := h.librarySvc.ListTargets(c.Request().Context(), id, year)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, targets)
}

func (h *Handler) ListAudit(c echo.Context) error {
	page, size, err := parsePaging(c)
	if err != nil {
		return err
	}
	logs, err := h.librarySvc.ListAudit(c.Request().Context(), page, size)
	if err != nil {
		return svcError(err)
	}
	return c.JSON(http.StatusOK, logs)
}
