package httputil

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID returns the request id assigned by the requestid middleware, or uuid.Nil when
// it is missing or not a UUID.
func RequestID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(requestid.Get(c))
	if err != nil {
		return uuid.Nil
	}
	return id
}
