package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NotValidf("%s %q", name, raw)
	}
	return id, nil
}

// ParsePageRequest reads the page, size and sort query parameters.
func ParsePageRequest(c *gin.Context) (paging.Request, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return paging.Request{}, err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return paging.Request{}, err
	}
	return paging.NewRequest(page, size, c.Query("sort"))
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NotValidf("%s %q", name, raw)
	}
	return n, nil
}
