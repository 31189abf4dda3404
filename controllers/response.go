package controllers

import (
	"errors"
	"net/http"

	"bidding-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes a service error as {"error": message}. Errors that are
// not ServiceErrors never expose their text.
func respondError(ctx *gin.Context, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	_ = ctx.Error(err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
}

// pathUUID parses a path parameter, answering 400 when it is not a UUID.
func pathUUID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter. Absent means uuid.Nil.
func queryUUID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
