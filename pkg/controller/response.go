package controller

import (
	"net/http"

	"github.com/canteiro/canteiro/pkg/server/router"
)

// OK sends a JSON response with HTTP 200.
func OK(c router.Context, body any) error {
	return c.JSON(http.StatusOK, body)
}

// Created sends a JSON response with HTTP 201, typically {"id": "<hex>"}.
func Created(c router.Context, body any) error {
	return c.JSON(http.StatusCreated, body)
}

// Error sends an error response with the status code mapped from err.
func Error(c router.Context, err error) error {
	statusCode, errorResponse := MapError(c.Request().Context(), err)
	return c.JSON(statusCode, errorResponse)
}
