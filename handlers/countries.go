package handlers

import (
	"net/http"

	"saubio/services/countries"
	"saubio/utils"

	"github.com/gin-gonic/gin"
)

// ListCountries handles GET /api/countries.
func ListCountries(c *gin.Context) {
	c.JSON(http.StatusOK, countries.List())
}

// GetCountry handles GET /api/countries/:code.
func GetCountry(c *gin.Context) {
	code := c.Param("code")
	country, ok := countries.FindCountry(code)
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Country not found", code)
		return
	}
	c.JSON(http.StatusOK, country)
}
