package car

import "strings"

// 搜索引擎编排：所有调用形态最终都归结为 过滤 → 排序 →（可选）分页。
// 引擎只消费调用方给定的集合快照，只读、无状态，绝不修改入参。

func filtered(cars []Car, keep func(Car) bool) []Car {
	out := make([]Car, 0, len(cars))
	for _, c := range cars {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func copied(cars []Car) []Car {
	out := make([]Car, len(cars))
	copy(out, cars)
	return out
}

// SearchByPlate 按车牌精确检索（忽略大小写，先去空白）。
// 车牌是自然键，结果至多一条；空白车牌返回空集而不是全量。
func SearchByPlate(cars []Car, plate string) []Car {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return []Car{}
	}
	return filtered(cars, func(c Car) bool { return strings.EqualFold(c.PlateNumber, plate) })
}

// SearchByBrand 按品牌子串检索；空白条件返回全量。
func SearchByBrand(cars []Car, brand string) []Car {
	if strings.TrimSpace(brand) == "" {
		return copied(cars)
	}
	return filtered(cars, func(c Car) bool { return containsFold(c.Brand, brand) })
}

// SearchByModel 按型号子串检索；空白条件返回全量。
func SearchByModel(cars []Car, model string) []Car {
	if strings.TrimSpace(model) == "" {
		return copied(cars)
	}
	return filtered(cars, func(c Car) bool { return containsFold(c.Model, model) })
}

// FilterByColor 按颜色精确过滤（忽略大小写）；空白条件返回全量。
func FilterByColor(cars []Car, color string) []Car {
	if strings.TrimSpace(color) == "" {
		return copied(cars)
	}
	return filtered(cars, func(c Car) bool { return equalsFold(c.Color, color) })
}

// FilterByYear 按精确年份过滤；nil 条件返回全量。
func FilterByYear(cars []Car, year *int) []Car {
	if year == nil {
		return copied(cars)
	}
	return filtered(cars, func(c Car) bool { return matchYear(c.Year, year) })
}

// FilterByYearRange 按年份区间过滤（闭区间，任一端可缺省）。
// 注意：与条件搜索路径不同，直接的区间过滤会排除年份缺失的车。
func FilterByYearRange(cars []Car, minYear, maxYear *int) []Car {
	if minYear == nil && maxYear == nil {
		return copied(cars)
	}
	return filtered(cars, func(c Car) bool { return yearInRange(c.Year, minYear, maxYear) })
}

// GeneralSearch 全文检索：检索词命中品牌、型号或颜色之一即保留。
func GeneralSearch(cars []Car, term string) []Car {
	if strings.TrimSpace(term) == "" {
		return copied(cars)
	}
	return filtered(cars, func(c Car) bool { return MatchesTerm(c, term) })
}

// AdvancedSearch 高级搜索：所有已设置条件取与，然后按枚举排序项排序。
func AdvancedSearch(cars []Car, cr Criteria) []Car {
	out := cars
	if !cr.IsEmpty() {
		out = filtered(cars, func(c Car) bool { return MatchesCriteria(c, cr) })
	} else {
		out = copied(cars)
	}
	if cr.Sort != "" {
		out = SortByOrder(out, cr.Sort)
	}
	return out
}

// VintageCars 老爷车（按当前日历年判定，见 Classify）。
func VintageCars(cars []Car) []Car {
	return filtered(cars, func(c Car) bool { return IsVintage(c.Year) })
}

// NewCars 新车（车龄 <= 3 年）。
func NewCars(cars []Car) []Car {
	return filtered(cars, func(c Car) bool { return IsNew(c.Year) })
}

// CarsWithPhoto 已上传照片的车。
func CarsWithPhoto(cars []Car) []Car {
	return filtered(cars, func(c Car) bool { return c.HasPhoto() })
}

// CarsWithoutPhoto 未上传照片的车。
func CarsWithoutPhoto(cars []Car) []Car {
	return filtered(cars, func(c Car) bool { return !c.HasPhoto() })
}

// SearchCars 统一搜索入口：
//   - 无任何条件：全量按请求的字段排序（默认创建时间降序）；
//   - 有检索词：以全文检索结果为基底；
//   - 再叠加结构化过滤（与），最后按请求的字段与方向排序。
func SearchCars(cars []Car, r *SearchRequest) []Car {
	if r == nil || !r.HasAnyFilter() {
		return SortByField(cars, r.SortField(), !r.SortDescending())
	}

	base := cars
	if r.HasSearchTerm() {
		base = GeneralSearch(cars, r.SearchTerm)
	}

	out := filtered(base, func(c Car) bool { return MatchesFilters(c, r) })
	return SortByField(out, r.SortField(), !r.SortDescending())
}

// SearchPage 分页搜索的内存实现：过滤 → 排序 → 切片。
// 三种策略与存储侧下推保持同一语义：检索词基底、结构化过滤、无过滤全量。
func SearchPage(cars []Car, r *SearchRequest, q PageQuery) Page {
	q = q.Normalize()

	cr := r.Criteria()
	var full []Car
	switch {
	case cr.HasSearchTerm():
		full = GeneralSearch(cars, cr.SearchTerm)
	case cr.HasFilters():
		full = filtered(cars, func(c Car) bool { return matchesStructured(c, cr) })
	default:
		full = copied(cars)
	}

	sorted := SortByField(full, q.SortBy, !q.Descending)
	return NewPage(pageSlice(sorted, q), int64(len(full)), q)
}
