package car

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tucarro/tucarro/internal/common/objstore"
	"github.com/tucarro/tucarro/internal/common/server"
)

// 上传照片的大小上限（5MB）。
const maxPhotoSize = 5 << 20

// Handler 车辆登记与检索的 HTTP 适配层。
type Handler struct {
	svc      *Service
	search   *SearchService
	uploader objstore.Uploader
}

func NewHandler(svc *Service, search *SearchService, uploader objstore.Uploader) *Handler {
	return &Handler{svc: svc, search: search, uploader: uploader}
}

// RegisterRoutes 挂载车辆路由。
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	cars := r.Group("/v1/cars")
	{
		cars.POST("", h.create)
		cars.GET("", h.list)
		cars.GET("/:id", h.get)
		cars.PUT("/:id", h.update)
		cars.DELETE("/:id", h.remove)
		cars.POST("/:id/photo", h.uploadPhoto)

		cars.GET("/plate/:plate", h.getByPlate)
		cars.GET("/plates/available", h.plateAvailable)

		cars.GET("/search", h.searchUnified)
		cars.GET("/search/page", h.searchPage)
		cars.GET("/search/general", h.generalSearch)
		cars.GET("/search/brand", h.searchByBrand)
		cars.GET("/search/model", h.searchByModel)
		cars.GET("/search/plate", h.searchByPlate)
		cars.GET("/search/color", h.filterByColor)
		cars.GET("/search/year", h.filterByYear)
		cars.GET("/search/year-range", h.filterByYearRange)
		cars.POST("/search/advanced", h.advancedSearch)

		cars.GET("/sorted", h.sorted)

		cars.GET("/filter-options", h.filterOptions)
		cars.GET("/filter-options/:type", h.filterOptionsByType)

		cars.GET("/vintage", h.vintage)
		cars.GET("/new", h.newCars)
		cars.GET("/with-photo", h.withPhoto)
		cars.GET("/without-photo", h.withoutPhoto)

		cars.GET("/stats", h.stats)
		cars.GET("/stats/years", h.yearStats)
		cars.GET("/stats/brands", h.brandStats)
	}
}

func ownerID(c *gin.Context) (string, bool) {
	ai, ok := server.AuthFromContext(c.Request.Context())
	if !ok || ai.Subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return "", false
	}
	return ai.Subject, true
}

func writeCarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPlateTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

type createCarRequest struct {
	Brand       string `json:"brand" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Year        *int   `json:"year"`
	PlateNumber string `json:"plateNumber" binding:"required"`
	Color       string `json:"color"`
	PhotoURL    string `json:"photoUrl"`
}

func (h *Handler) create(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.svc.CreateCar(c.Request.Context(), CreateCarInput{
		OwnerID:     owner,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PlateNumber: req.PlateNumber,
		Color:       req.Color,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	cars, err := h.svc.ListCars(c.Request.Context(), owner)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, cars)
}

func (h *Handler) get(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	found, err := h.svc.GetCar(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

type updateCarRequest struct {
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	Year        *int    `json:"year"`
	PlateNumber *string `json:"plateNumber"`
	Color       *string `json:"color"`
	PhotoURL    *string `json:"photoUrl"`
}

func (h *Handler) update(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req updateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.svc.UpdateCar(c.Request.Context(), owner, c.Param("id"), UpdateCarInput{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PlateNumber: req.PlateNumber,
		Color:       req.Color,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) remove(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	found, err := h.svc.GetCar(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		writeCarError(c, err)
		return
	}
	if err := h.svc.DeleteCar(c.Request.Context(), owner, found.ID); err != nil {
		writeCarError(c, err)
		return
	}
	// 记录已删除，照片清理失败不影响结果
	if h.uploader != nil && found.HasPhoto() {
		_ = h.uploader.Delete(c.Request.Context(), found.PhotoURL)
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// uploadPhoto 上传车辆照片到对象存储，并把 URL 写回车辆记录。
func (h *Handler) uploadPhoto(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage not configured"})
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}

	updated, err := h.svc.UpdateCar(c.Request.Context(), owner, c.Param("id"), UpdateCarInput{PhotoURL: &url})
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) getByPlate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	found, err := h.svc.GetCarByPlate(c.Request.Context(), owner, c.Param("plate"))
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// plateAvailable 查询车牌是否可用。excludeOwner=true 时不把
// 当前车主自己名下的占用算作冲突。
func (h *Handler) plateAvailable(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	plate := c.Query("plate")
	var (
		available bool
		err       error
	)
	if exclude, _ := strconv.ParseBool(c.Query("excludeOwner")); exclude {
		available, err = h.svc.PlateAvailableForOwner(c.Request.Context(), owner, plate)
	} else {
		available, err = h.svc.PlateAvailable(c.Request.Context(), plate)
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"plate": plate, "available": false, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plate": NormalizePlate(plate), "available": available})
}

// searchUnified 统一搜索入口：检索词 + 结构化过滤 + facet + 排序。
func (h *Handler) searchUnified(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cars, err := h.search.Search(c.Request.Context(), owner, &req)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, cars)
}

func (h *Handler) searchPage(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q := PageQuery{
		Page:       intQuery(c, "page", 0),
		Size:       intQuery(c, "size", DefaultPageSize),
		SortBy:     req.SortField(),
		Descending: req.SortDescending(),
	}
	page, err := h.search.SearchPaginated(c.Request.Context(), owner, &req, q)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) generalSearch(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.GeneralSearch(c.Request.Context(), owner, c.Query("q"))
	})
}

func (h *Handler) searchByBrand(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.SearchByBrand(c.Request.Context(), owner, c.Query("q"))
	})
}

func (h *Handler) searchByModel(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.SearchByModel(c.Request.Context(), owner, c.Query("q"))
	})
}

func (h *Handler) searchByPlate(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.SearchByPlate(c.Request.Context(), owner, c.Query("q"))
	})
}

func (h *Handler) filterByColor(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.FilterByColor(c.Request.Context(), owner, c.Query("q"))
	})
}

func (h *Handler) filterByYear(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.FilterByYear(c.Request.Context(), owner, intQueryPtr(c, "year"))
	})
}

func (h *Handler) filterByYearRange(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.FilterByYearRange(c.Request.Context(), owner,
			intQueryPtr(c, "min"), intQueryPtr(c, "max"))
	})
}

type advancedSearchRequest struct {
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        *int   `json:"year"`
	MinYear     *int   `json:"minYear"`
	MaxYear     *int   `json:"maxYear"`
	Color       string `json:"color"`
	PlateNumber string `json:"plateNumber"`
	SearchTerm  string `json:"searchTerm"`
	Sort        string `json:"sort"`
}

func (h *Handler) advancedSearch(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req advancedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cars, err := h.search.AdvancedSearch(c.Request.Context(), owner, Criteria{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		MinYear:     req.MinYear,
		MaxYear:     req.MaxYear,
		Color:       req.Color,
		PlateNumber: req.PlateNumber,
		SearchTerm:  req.SearchTerm,
		Sort:        SortOrder(req.Sort),
	})
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, cars)
}

// sorted 全量排序列表：order 给定时走封闭枚举，否则按自由字段名排序。
func (h *Handler) sorted(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		if order := c.Query("order"); order != "" {
			return h.search.Sorted(c.Request.Context(), owner, SortOrder(order))
		}
		field := c.DefaultQuery("sortBy", DefaultSortField)
		ascending := !strings.EqualFold(c.DefaultQuery("sortDirection", DefaultSortDirection), "desc")
		return h.search.SortedByField(c.Request.Context(), owner, field, ascending)
	})
}

// filterOptions 集合中实际出现过的过滤取值，供筛选控件填充。
func (h *Handler) filterOptions(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	opts, err := h.search.FilterOptions(c.Request.Context(), owner)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *Handler) filterOptionsByType(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	kind := c.Param("type")
	values, err := h.search.FilterOptionValues(c.Request.Context(), owner, kind)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":   strings.ToLower(strings.TrimSpace(kind)),
		"values": values,
		"total":  len(values),
	})
}

func (h *Handler) vintage(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.VintageCars(c.Request.Context(), owner)
	})
}

func (h *Handler) newCars(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.NewCars(c.Request.Context(), owner)
	})
}

func (h *Handler) withPhoto(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.CarsWithPhoto(c.Request.Context(), owner)
	})
}

func (h *Handler) withoutPhoto(c *gin.Context) {
	h.listResult(c, func(owner string) ([]Car, error) {
		return h.search.CarsWithoutPhoto(c.Request.Context(), owner)
	})
}

func (h *Handler) stats(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	st, err := h.svc.OwnerStats(c.Request.Context(), owner)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) yearStats(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	st, err := h.svc.OwnerYearStatistics(c.Request.Context(), owner)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) brandStats(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	freq, err := h.search.BrandFrequency(c.Request.Context(), owner)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, freq)
}

func (h *Handler) listResult(c *gin.Context, fn func(owner string) ([]Car, error)) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	cars, err := fn(owner)
	if err != nil {
		writeCarError(c, err)
		return
	}
	c.JSON(http.StatusOK, cars)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func intQueryPtr(c *gin.Context, key string) *int {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
