package handlers

import (
	"net/http"
	"strings"

	"saubio/config"
	"saubio/services/locale"
	"saubio/utils"

	"github.com/gin-gonic/gin"
)

// resolveLocale picks ?locale=, then Accept-Language, then the catalog default.
func resolveLocale(c *gin.Context, catalog *locale.Catalog) string {
	if catalog == nil {
		return ""
	}
	return catalog.Resolve(c.Query("locale"), c.GetHeader("Accept-Language"))
}

// LocaleHandler exposes the runtime config and message catalogs to the frontends.
type LocaleHandler struct {
	Catalog    *locale.Catalog
	APIBaseURL string
}

func NewLocaleHandler(catalog *locale.Catalog, apiBaseURL string) *LocaleHandler {
	return &LocaleHandler{Catalog: catalog, APIBaseURL: apiBaseURL}
}

// GetRuntimeConfig handles GET /api/config.
func (h *LocaleHandler) GetRuntimeConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apiBaseUrl":    h.APIBaseURL,
		"defaultLocale": h.Catalog.DefaultLocale(),
		"locales":       h.Catalog.Locales(),
		"environment":   config.GetEnv(),
	})
}

// GetMessages handles GET /api/locales/:locale.
func (h *LocaleHandler) GetMessages(c *gin.Context) {
	loc := strings.ToLower(strings.TrimSpace(c.Param("locale")))
	messages, ok := h.Catalog.Messages(loc)
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "unsupported locale", loc)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locale":   loc,
		"messages": messages,
	})
}
