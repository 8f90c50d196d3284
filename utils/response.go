package utils

import (
	"errors"

	"homeswap-server/apperrors"

	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{
		"status": statusCode,
		"title":  title,
		"detail": detail,
	})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(
		iris.StatusInternalServerError,
		"Internal Server Error",
		"An unexpected error occurred.",
		ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(
		iris.StatusConflict,
		"Conflict",
		"Email already registered.",
		ctx)
}

// HandleAppError maps the engine's error taxonomy onto HTTP statuses.
// Unknown errors become a generic 500 without leaking internals.
func HandleAppError(err error, ctx iris.Context) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		CreateInternalServerError(ctx)
		return
	}

	switch appErr.Code {
	case apperrors.CodeInvalidInput:
		CreateError(iris.StatusBadRequest, "Validation Error", appErr.Message, ctx)
	case apperrors.CodeUnauthorized:
		CreateError(iris.StatusUnauthorized, "Credentials Error", appErr.Message, ctx)
	case apperrors.CodeForbidden:
		CreateError(iris.StatusForbidden, "Forbidden", appErr.Message, ctx)
	case apperrors.CodeNotFound:
		CreateError(iris.StatusNotFound, "Not Found", appErr.Message, ctx)
	case apperrors.CodeInvalidState, apperrors.CodeStaleState:
		CreateError(iris.StatusConflict, "Invalid State", appErr.Message, ctx)
	default:
		CreateInternalServerError(ctx)
	}
}
