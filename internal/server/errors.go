package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

const genericErrorMessage = "Something went wrong. Please try again."

func errorStatus(err error) (int, string) {
	var (
		ve usecase.ErrValidation
		nf usecase.ErrNotFound
		ce usecase.ErrConflict
	)
	switch {
	case errors.As(err, &ve):
		switch ve.Code {
		case usecase.CodeUnsupportedMediaType:
			return http.StatusUnsupportedMediaType, ve.Code
		case usecase.CodePayloadTooLarge:
			return http.StatusRequestEntityTooLarge, ve.Code
		}
		return http.StatusUnprocessableEntity, ve.Code
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Code
	case errors.As(err, &ce):
		return http.StatusConflict, ce.Code
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// errorResponse writes err as a Res. Failures the client cannot act on are
// logged in full and reported generically outside debug mode. submitted
// echoes the non-file form data back so a form can be refilled.
func (s *Server) errorResponse(ctx echo.Context, op string, err error, submitted any) error {
	status, code := errorStatus(err)
	res := Res{Data: submitted, Error: code, Message: err.Error()}

	var ve usecase.ErrValidation
	if errors.As(err, &ve) {
		res.Field = ve.Field
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "err_"+op, slog.String("err", err.Error()))
		if !config.IsDebug() {
			res.Message = genericErrorMessage
		}
	}
	return ctx.JSON(status, res)
}
