package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// queryInt parses an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// queryBool parses a boolean query parameter, falling back to def when
// the parameter is absent or malformed.
func queryBool(c echo.Context, name string, def bool) bool {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
