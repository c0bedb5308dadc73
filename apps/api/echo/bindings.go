package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// paramID reads a numeric path parameter; malformed IDs cannot match anything.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryInt reads an optional numeric filter, 0 when absent or malformed.
func queryInt(ctx echo.Context, name string) int {
	n, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
