// Package handlers contains the HTTP request handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/storefront/services/orders/internal/domain"
)

// principalHeader carries the acting principal's id on API requests.
const principalHeader = "X-Principal-ID"

func principalFrom(c *gin.Context) domain.Principal {
	id := c.GetHeader(principalHeader)
	if id == "" {
		id = "anonymous"
	}
	return domain.Principal{ID: id}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsConcurrentModification(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var stockErr *domain.InsufficientStockError
		var transitionErr *domain.TransitionError
		switch {
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &transitionErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("Request failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}
