package car

import "strings"

// SortOrder 高级搜索使用的封闭排序枚举（旧接口保留）。
type SortOrder string

const (
	SortYearAsc     SortOrder = "year_asc"
	SortYearDesc    SortOrder = "year_desc"
	SortBrandAsc    SortOrder = "brand_asc"
	SortBrandDesc   SortOrder = "brand_desc"
	SortModelAsc    SortOrder = "model_asc"
	SortModelDesc   SortOrder = "model_desc"
	SortCreatedAsc  SortOrder = "created_asc"
	SortCreatedDesc SortOrder = "created_desc"
)

// 排序字段与方向的默认值（统一搜索入口使用）。
const (
	DefaultSortField     = "createdAt"
	DefaultSortDirection = "desc"
)

// Criteria 高级搜索条件。所有字段可选：空串 / nil 表示该维度不设约束。
// 文本字段按“包含、忽略大小写”匹配（车牌除外，车牌为精确匹配）。
type Criteria struct {
	Brand       string
	Model       string
	Year        *int
	MinYear     *int
	MaxYear     *int
	Color       string
	PlateNumber string
	SearchTerm  string
	Sort        SortOrder // 空值表示保持输入顺序
}

// HasSearchTerm 是否带有全文检索词。
func (c Criteria) HasSearchTerm() bool {
	return strings.TrimSpace(c.SearchTerm) != ""
}

// HasFilters 是否带有任意结构化过滤条件（不含检索词）。
func (c Criteria) HasFilters() bool {
	return strings.TrimSpace(c.Brand) != "" ||
		strings.TrimSpace(c.Model) != "" ||
		c.Year != nil ||
		strings.TrimSpace(c.Color) != "" ||
		c.MinYear != nil ||
		c.MaxYear != nil ||
		strings.TrimSpace(c.PlateNumber) != ""
}

// IsEmpty 没有任何搜索条件。
func (c Criteria) IsEmpty() bool {
	return !c.HasSearchTerm() && !c.HasFilters()
}

// SearchRequest 统一搜索入口的边界 DTO。
// 文本过滤字段在该路径下按“精确、忽略大小写”匹配；
// 三个布尔 facet 与分类器的派生值做等值比较，nil 表示不约束。
type SearchRequest struct {
	SearchTerm  string `json:"searchTerm" form:"searchTerm"`
	Brand       string `json:"brand" form:"brand"`
	Model       string `json:"model" form:"model"`
	Year        *int   `json:"year" form:"year"`
	MinYear     *int   `json:"minYear" form:"minYear"`
	MaxYear     *int   `json:"maxYear" form:"maxYear"`
	Color       string `json:"color" form:"color"`
	PlateNumber string `json:"plateNumber" form:"plateNumber"`
	IsVintage   *bool  `json:"isVintage" form:"isVintage"`
	IsNew       *bool  `json:"isNew" form:"isNew"`
	HasPhoto    *bool  `json:"hasPhoto" form:"hasPhoto"`

	SortBy        string `json:"sortBy" form:"sortBy"`               // 默认 createdAt
	SortDirection string `json:"sortDirection" form:"sortDirection"` // asc / desc，默认 desc
}

// HasSearchTerm 是否带有全文检索词。
func (r *SearchRequest) HasSearchTerm() bool {
	return r != nil && strings.TrimSpace(r.SearchTerm) != ""
}

// HasAnyFilter 是否带有任意条件（检索词、结构化过滤或 facet）。
func (r *SearchRequest) HasAnyFilter() bool {
	if r == nil {
		return false
	}
	return r.HasSearchTerm() ||
		strings.TrimSpace(r.Brand) != "" ||
		strings.TrimSpace(r.Model) != "" ||
		r.Year != nil ||
		r.MinYear != nil || r.MaxYear != nil ||
		strings.TrimSpace(r.Color) != "" ||
		strings.TrimSpace(r.PlateNumber) != "" ||
		r.IsVintage != nil || r.IsNew != nil || r.HasPhoto != nil
}

// SortField 返回排序字段，空白时回退到默认字段。
func (r *SearchRequest) SortField() string {
	if r == nil || strings.TrimSpace(r.SortBy) == "" {
		return DefaultSortField
	}
	return strings.TrimSpace(r.SortBy)
}

// SortDescending 是否按降序排序（默认降序）。
func (r *SearchRequest) SortDescending() bool {
	if r == nil || strings.TrimSpace(r.SortDirection) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.SortDirection), "desc")
}

// Criteria 把边界 DTO 转换为内部条件对象。
// 转换是全函数：缺失字段以“零约束”补齐，不丢失任何已填字段。
func (r *SearchRequest) Criteria() Criteria {
	if r == nil {
		return Criteria{}
	}
	return Criteria{
		SearchTerm:  r.SearchTerm,
		Brand:       r.Brand,
		Model:       r.Model,
		Year:        r.Year,
		MinYear:     r.MinYear,
		MaxYear:     r.MaxYear,
		Color:       r.Color,
		PlateNumber: r.PlateNumber,
	}
}
