package car

import (
	"sort"
	"strings"
	"time"
)

// 排序引擎：把排序项映射为记录上的全序。
// 统一的空值策略：缺失值（nil 年份、空白字符串、零值时间）永远排在最后，
// 与排序方向无关；反向只反转非缺失值之间的次序。
// 两个入口（封闭枚举 / 自由字段名）共享同一族比较器，排序都是稳定的。

type compareFunc func(a, b Car) int

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func direction(c int, asc bool) int {
	if asc {
		return c
	}
	return -c
}

func cmpYearPtr(a, b *int, asc bool) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	return direction(cmpInt(*a, *b), asc)
}

func cmpStringFold(a, b string, asc bool) int {
	aBlank := strings.TrimSpace(a) == ""
	bBlank := strings.TrimSpace(b) == ""
	if aBlank && bBlank {
		return 0
	}
	if aBlank {
		return 1
	}
	if bBlank {
		return -1
	}
	return direction(strings.Compare(strings.ToLower(a), strings.ToLower(b)), asc)
}

func cmpTime(a, b time.Time, asc bool) int {
	if a.IsZero() && b.IsZero() {
		return 0
	}
	if a.IsZero() {
		return 1
	}
	if b.IsZero() {
		return -1
	}
	switch {
	case a.Before(b):
		return direction(-1, asc)
	case a.After(b):
		return direction(1, asc)
	default:
		return 0
	}
}

// comparatorForOrder 把封闭枚举映射到比较器。未知值回退到默认排序
// （创建时间降序），不报错。
func comparatorForOrder(order SortOrder) compareFunc {
	switch order {
	case SortYearAsc:
		return func(a, b Car) int { return cmpYearPtr(a.Year, b.Year, true) }
	case SortYearDesc:
		return func(a, b Car) int { return cmpYearPtr(a.Year, b.Year, false) }
	case SortBrandAsc:
		return func(a, b Car) int { return cmpStringFold(a.Brand, b.Brand, true) }
	case SortBrandDesc:
		return func(a, b Car) int { return cmpStringFold(a.Brand, b.Brand, false) }
	case SortModelAsc:
		return func(a, b Car) int { return cmpStringFold(a.Model, b.Model, true) }
	case SortModelDesc:
		return func(a, b Car) int { return cmpStringFold(a.Model, b.Model, false) }
	case SortCreatedAsc:
		return func(a, b Car) int { return cmpTime(a.CreatedAt, b.CreatedAt, true) }
	default:
		return func(a, b Car) int { return cmpTime(a.CreatedAt, b.CreatedAt, false) }
	}
}

// comparatorForField 自由字段名入口。可识别字段：brand / model / year /
// color / updatedAt；其余一律回退到 createdAt。
func comparatorForField(field string, ascending bool) compareFunc {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "brand":
		return func(a, b Car) int { return cmpStringFold(a.Brand, b.Brand, ascending) }
	case "model":
		return func(a, b Car) int { return cmpStringFold(a.Model, b.Model, ascending) }
	case "year":
		return func(a, b Car) int { return cmpYearPtr(a.Year, b.Year, ascending) }
	case "color":
		return func(a, b Car) int { return cmpStringFold(a.Color, b.Color, ascending) }
	case "updatedat":
		return func(a, b Car) int { return cmpTime(a.UpdatedAt, b.UpdatedAt, ascending) }
	default:
		return func(a, b Car) int { return cmpTime(a.CreatedAt, b.CreatedAt, ascending) }
	}
}

func stableSorted(cars []Car, cmp compareFunc) []Car {
	out := make([]Car, len(cars))
	copy(out, cars)
	sort.SliceStable(out, func(i, j int) bool { return cmp(out[i], out[j]) < 0 })
	return out
}

// SortByOrder 按封闭枚举排序，返回新切片，不修改输入。
func SortByOrder(cars []Car, order SortOrder) []Car {
	return stableSorted(cars, comparatorForOrder(order))
}

// SortByField 按自由字段名排序，返回新切片，不修改输入。
func SortByField(cars []Car, field string, ascending bool) []Car {
	return stableSorted(cars, comparatorForField(field, ascending))
}
