package handler

import (
	"net/http"

	"github.com/Pesokrava/movie_store/internal/delivery/http/request"
	"github.com/Pesokrava/movie_store/internal/delivery/http/response"
	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	"github.com/Pesokrava/movie_store/internal/usecase/catalog"
)

// TrendingHandler serves the regional trending report
type TrendingHandler struct {
	catalog *catalog.Service
	logger  *logger.Logger
}

// NewTrendingHandler creates a new trending handler
func NewTrendingHandler(catalog *catalog.Service, log *logger.Logger) *TrendingHandler {
	return &TrendingHandler{
		catalog: catalog,
		logger:  log,
	}
}

// Trending handles GET /api/v1/trending
// @Summary Regional trending movies
// @Description Most purchased movies of every region with the region's order count
// @Tags Trending
// @Produce json
// @Param limit query int false "Movies per region (max 100)"
// @Success 200 {object} map[string]interface{} "Trending report"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /trending [get]
func (h *TrendingHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit := request.GetIntQuery(r, "limit", 0)

	report, err := h.catalog.Trending(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err, "Not found")
		return
	}

	response.Success(w, report)
}

// Regions handles GET /api/v1/regions
// @Summary Sales regions
// @Description Regions an order can be tagged with
// @Tags Trending
// @Produce json
// @Success 200 {object} map[string]interface{} "Regions"
// @Router /regions [get]
func (h *TrendingHandler) Regions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, domain.Regions)
}
