package car

import (
	"context"
	"fmt"
	"strings"
)

// SearchService 车主集合之上的检索用例。点查与过滤先取出车主
// 全量集合再走内存引擎；分页路径下推到仓储。
type SearchService struct {
	repo Repository
}

func NewSearchService(repo Repository) *SearchService {
	return &SearchService{repo: repo}
}

func (s *SearchService) ownerCars(ctx context.Context, ownerID string) ([]Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("search service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner_id required")
	}
	return s.repo.FindByOwner(ctx, ownerID)
}

// SearchByBrand 品牌包含匹配（忽略大小写），空关键字返回全部。
func (s *SearchService) SearchByBrand(ctx context.Context, ownerID, brand string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SearchByBrand(cars, brand), nil
}

// SearchByModel 型号包含匹配（忽略大小写），空关键字返回全部。
func (s *SearchService) SearchByModel(ctx context.Context, ownerID, model string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SearchByModel(cars, model), nil
}

// SearchByPlate 车牌精确匹配，空车牌返回空集。
func (s *SearchService) SearchByPlate(ctx context.Context, ownerID, plate string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SearchByPlate(cars, plate), nil
}

// FilterByColor 颜色精确匹配（忽略大小写），空颜色返回全部。
func (s *SearchService) FilterByColor(ctx context.Context, ownerID, color string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterByColor(cars, color), nil
}

// FilterByYear 年份等值过滤。
func (s *SearchService) FilterByYear(ctx context.Context, ownerID string, year *int) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterByYear(cars, year), nil
}

// FilterByYearRange 年份区间过滤，缺失年份的车辆不通过。
func (s *SearchService) FilterByYearRange(ctx context.Context, ownerID string, minYear, maxYear *int) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterByYearRange(cars, minYear, maxYear), nil
}

// GeneralSearch 检索词在品牌/型号/颜色上做包含匹配。
func (s *SearchService) GeneralSearch(ctx context.Context, ownerID, term string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return GeneralSearch(cars, term), nil
}

// AdvancedSearch 组合条件过滤 + 可选排序。
func (s *SearchService) AdvancedSearch(ctx context.Context, ownerID string, cr Criteria) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return AdvancedSearch(cars, cr), nil
}

// Search 统一搜索入口：检索词、结构化过滤、facet 与排序。
func (s *SearchService) Search(ctx context.Context, ownerID string, r *SearchRequest) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SearchCars(cars, r), nil
}

// SearchPaginated 分页搜索：按请求形态选择下推策略。
func (s *SearchService) SearchPaginated(ctx context.Context, ownerID string, r *SearchRequest, q PageQuery) (Page, error) {
	if s == nil || s.repo == nil {
		return Page{}, fmt.Errorf("search service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Page{}, fmt.Errorf("owner_id required")
	}
	q = q.Normalize()
	if strings.TrimSpace(q.SortBy) == "" && r != nil {
		q.SortBy = r.SortField()
		q.Descending = r.SortDescending()
	}

	var (
		cars  []Car
		total int64
		err   error
	)
	switch {
	case r != nil && r.HasSearchTerm():
		cars, total, err = s.repo.PageByTerm(ctx, ownerID, r.SearchTerm, q)
	case r != nil && r.HasAnyFilter():
		cr := r.Criteria()
		cr.SearchTerm = ""
		cars, total, err = s.repo.PageWithFilters(ctx, ownerID, cr, q)
	default:
		cars, total, err = s.repo.PageAll(ctx, ownerID, q)
	}
	if err != nil {
		return Page{}, err
	}
	return NewPage(cars, total, q), nil
}

// VintageCars 车龄达到门槛的古董车。
func (s *SearchService) VintageCars(ctx context.Context, ownerID string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return VintageCars(cars), nil
}

// NewCars 车龄在门槛以内的新车。
func (s *SearchService) NewCars(ctx context.Context, ownerID string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return NewCars(cars), nil
}

// CarsWithPhoto 有照片的车辆。
func (s *SearchService) CarsWithPhoto(ctx context.Context, ownerID string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return CarsWithPhoto(cars), nil
}

// CarsWithoutPhoto 无照片的车辆。
func (s *SearchService) CarsWithoutPhoto(ctx context.Context, ownerID string) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return CarsWithoutPhoto(cars), nil
}

// Sorted 按枚举排序返回车主集合。
func (s *SearchService) Sorted(ctx context.Context, ownerID string, order SortOrder) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SortByOrder(cars, order), nil
}

// SortedByField 按自由字段名排序返回车主集合。
func (s *SearchService) SortedByField(ctx context.Context, ownerID, field string, ascending bool) ([]Car, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return SortByField(cars, field, ascending), nil
}

// FilterOptions 车主集合的可用过滤选项。
func (s *SearchService) FilterOptions(ctx context.Context, ownerID string) (FilterOptions, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return FilterOptions{}, err
	}
	return ComputeFilterOptions(cars), nil
}

// FilterOptionValues 车主集合单一维度的过滤值。
func (s *SearchService) FilterOptionValues(ctx context.Context, ownerID, kind string) ([]string, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterOptionValues(cars, kind)
}

// BrandFrequency 品牌频次统计。
func (s *SearchService) BrandFrequency(ctx context.Context, ownerID string) ([]BrandCount, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return BrandFrequency(cars), nil
}

// YearStatistics 年份统计。
func (s *SearchService) YearStatistics(ctx context.Context, ownerID string) (YearStatistics, error) {
	cars, err := s.ownerCars(ctx, ownerID)
	if err != nil {
		return YearStatistics{}, err
	}
	return ComputeYearStatistics(cars), nil
}
