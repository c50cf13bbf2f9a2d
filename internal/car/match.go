package car

import (
	"strings"
	"time"
)

// 谓词求值器：对单条记录判定单个约束是否命中。
// 约定：空白字符串过滤值 = 未设置约束（直接命中），所有比较忽略大小写。
// 所有已设置的约束按逻辑与组合，不同过滤维度之间不支持“或”。

// containsFold 子串匹配（忽略大小写，过滤值先去空白）。
func containsFold(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}

// equalsFold 精确匹配（忽略大小写，过滤值先去空白）。
func equalsFold(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.EqualFold(value, filter)
}

func matchYear(year *int, want *int) bool {
	if want == nil {
		return true
	}
	return year != nil && *year == *want
}

// yearInRange 严格区间判定：年份缺失视为不命中。
// 区间任一端可缺省（开区间）。
func yearInRange(year *int, min, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	if year == nil {
		return false
	}
	if min != nil && *year < *min {
		return false
	}
	if max != nil && *year > *max {
		return false
	}
	return true
}

// yearInRangeLenient 条件路径使用的区间判定：年份缺失直接放行。
// 这是对历史行为的保留（未知年份的车不会被年份区间过滤掉），
// 调整此策略前先看 match_test 里对应的用例。
func yearInRangeLenient(year *int, min, max *int) bool {
	if year == nil {
		return true
	}
	return yearInRange(year, min, max)
}

// MatchesTerm 全文检索：检索词作为子串出现在品牌、型号或颜色之一即命中。
func MatchesTerm(c Car, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return containsFold(c.Brand, term) ||
		containsFold(c.Model, term) ||
		containsFold(c.Color, term)
}

// MatchesCriteria 高级搜索路径：品牌/型号按子串匹配，
// 颜色/车牌精确匹配，所有已设置条件取与。
func MatchesCriteria(c Car, cr Criteria) bool {
	return containsFold(c.Brand, cr.Brand) &&
		containsFold(c.Model, cr.Model) &&
		matchYear(c.Year, cr.Year) &&
		yearInRangeLenient(c.Year, cr.MinYear, cr.MaxYear) &&
		equalsFold(c.Color, cr.Color) &&
		equalsFold(c.PlateNumber, cr.PlateNumber) &&
		MatchesTerm(c, cr.SearchTerm)
}

// matchesStructured 结构化过滤（精确匹配族）：统一搜索路径与
// 分页下推策略共用，保证两边语义一致。不含检索词与 facet。
func matchesStructured(c Car, cr Criteria) bool {
	return equalsFold(c.Brand, cr.Brand) &&
		equalsFold(c.Model, cr.Model) &&
		matchYear(c.Year, cr.Year) &&
		yearInRangeLenient(c.Year, cr.MinYear, cr.MaxYear) &&
		equalsFold(c.Color, cr.Color) &&
		equalsFold(c.PlateNumber, cr.PlateNumber)
}

// MatchesFilters 统一搜索路径的结构化过滤：文本字段精确匹配，
// 三个布尔 facet 与分类器派生值做等值比较。
func MatchesFilters(c Car, r *SearchRequest) bool {
	return matchesFiltersAt(c, r, time.Now().Year())
}

func matchesFiltersAt(c Car, r *SearchRequest, currentYear int) bool {
	if r == nil {
		return true
	}
	cr := r.Criteria()
	cr.SearchTerm = ""
	if !matchesStructured(c, cr) {
		return false
	}

	cls := classifyAt(c.Year, currentYear)
	if r.IsVintage != nil && *r.IsVintage != cls.IsVintage {
		return false
	}
	if r.IsNew != nil && *r.IsNew != cls.IsNew {
		return false
	}
	if r.HasPhoto != nil && *r.HasPhoto != c.HasPhoto() {
		return false
	}
	return true
}
