package car

import "time"

const (
	// VintageAgeYears 车龄达到该值即视为老爷车。
	VintageAgeYears = 25
	// NewAgeYears 车龄不超过该值即视为新车。
	NewAgeYears = 3
	// UnknownAge 年份缺失时的车龄哨兵值。
	UnknownAge = -1
)

// Classification 是按当前日历年推导出的派生事实。
// 每次调用重新计算，不缓存在记录上。
type Classification struct {
	IsVintage bool
	IsNew     bool
	AgeYears  int
}

// Classify 按本地时钟的当前年份对车辆年份分类。
// 年份缺失时既不是老爷车也不是新车，车龄为 UnknownAge。
func Classify(year *int) Classification {
	return classifyAt(year, time.Now().Year())
}

func classifyAt(year *int, currentYear int) Classification {
	if year == nil {
		return Classification{AgeYears: UnknownAge}
	}
	age := currentYear - *year
	return Classification{
		IsVintage: age >= VintageAgeYears,
		IsNew:     age <= NewAgeYears,
		AgeYears:  age,
	}
}

// IsVintage 判断车辆是否为老爷车（车龄 >= 25 年）。
func IsVintage(year *int) bool {
	return Classify(year).IsVintage
}

// IsNew 判断车辆是否为新车（车龄 <= 3 年）。
func IsNew(year *int) bool {
	return Classify(year).IsNew
}
