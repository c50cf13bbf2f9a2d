package car

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// YearStatistics 年份维度统计。集合为空或全部年份缺失时
// 三个指标均为 nil，TotalCars 仍计入全部车辆。
type YearStatistics struct {
	MinYear     *int     `json:"minYear"`
	MaxYear     *int     `json:"maxYear"`
	AverageYear *float64 `json:"averageYear"`
	TotalCars   int      `json:"totalCars"`
}

// YearRange 年份跨度（max-min），任一端缺失返回 0。
func (s YearStatistics) YearRange() int {
	if s.MinYear == nil || s.MaxYear == nil {
		return 0
	}
	return *s.MaxYear - *s.MinYear
}

func (s YearStatistics) String() string {
	if s.MinYear == nil || s.MaxYear == nil || s.AverageYear == nil {
		return fmt.Sprintf("YearStatistics{total=%d}", s.TotalCars)
	}
	return fmt.Sprintf("YearStatistics{min=%d, max=%d, avg=%.2f, total=%d}",
		*s.MinYear, *s.MaxYear, *s.AverageYear, s.TotalCars)
}

// Stats 车辆集合概览统计。
type Stats struct {
	OwnerID         string `json:"ownerId,omitempty"`
	TotalCars       int    `json:"totalCars"`
	VintageCount    int    `json:"vintageCount"`
	NewCount        int    `json:"newCount"`
	WithPhotoCount  int    `json:"withPhotoCount"`
	MostCommonBrand string `json:"mostCommonBrand,omitempty"`
	NewestYear      *int   `json:"newestYear,omitempty"`
	OldestYear      *int   `json:"oldestYear,omitempty"`
}

// BrandCount 品牌出现次数，Brand 保留首次出现时的原始大小写。
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// BrandFrequency 按品牌统计出现次数。分组忽略大小写与首尾空白，
// 空品牌跳过。返回值按次数降序排列，次数相同按首次出现顺序。
func BrandFrequency(cars []Car) []BrandCount {
	type entry struct {
		display string
		count   int
		first   int
	}
	index := make(map[string]*entry)
	order := make([]*entry, 0)
	for i, c := range cars {
		brand := strings.TrimSpace(c.Brand)
		if brand == "" {
			continue
		}
		key := strings.ToLower(brand)
		e, ok := index[key]
		if !ok {
			e = &entry{display: brand, first: i}
			index[key] = e
			order = append(order, e)
		}
		e.count++
	}
	// 插入排序保持首次出现顺序的稳定性
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && order[j-1].count < order[j].count {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	out := make([]BrandCount, 0, len(order))
	for _, e := range order {
		out = append(out, BrandCount{Brand: e.display, Count: e.count})
	}
	return out
}

// MostCommonBrands 按频次降序返回品牌名（首次出现的原始大小写）。
func MostCommonBrands(cars []Car) []string {
	freq := BrandFrequency(cars)
	out := make([]string, 0, len(freq))
	for _, bc := range freq {
		out = append(out, bc.Brand)
	}
	return out
}

// FilterOptions 集合中实际出现过的过滤取值，前端用来渲染筛选控件。
type FilterOptions struct {
	Brands    []string `json:"brands"`
	Models    []string `json:"models"`
	Colors    []string `json:"colors"`
	Years     []int    `json:"years"`
	TotalCars int      `json:"totalCars"`
	MinYear   *int     `json:"minYear,omitempty"`
	MaxYear   *int     `json:"maxYear,omitempty"`
}

// ComputeFilterOptions 提取集合的可用过滤值：文本字段去重后按
// 忽略大小写排序，年份去重后降序（新年份在前），空白值跳过。
func ComputeFilterOptions(cars []Car) FilterOptions {
	opts := FilterOptions{
		Brands:    distinctValues(cars, func(c Car) string { return c.Brand }),
		Models:    distinctValues(cars, func(c Car) string { return c.Model }),
		Colors:    distinctValues(cars, func(c Car) string { return c.Color }),
		Years:     distinctYearsDesc(cars),
		TotalCars: len(cars),
	}
	if len(opts.Years) > 0 {
		min := opts.Years[len(opts.Years)-1]
		max := opts.Years[0]
		opts.MinYear = &min
		opts.MaxYear = &max
	}
	return opts
}

// FilterOptionValues 按维度名返回单一维度的过滤值，未知维度报错。
// 年份以字符串形式返回，与其余维度保持同一种载荷。
func FilterOptionValues(cars []Car, kind string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "brands":
		return distinctValues(cars, func(c Car) string { return c.Brand }), nil
	case "models":
		return distinctValues(cars, func(c Car) string { return c.Model }), nil
	case "colors":
		return distinctValues(cars, func(c Car) string { return c.Color }), nil
	case "years":
		years := distinctYearsDesc(cars)
		out := make([]string, 0, len(years))
		for _, y := range years {
			out = append(out, strconv.Itoa(y))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown filter type: %s", kind)
	}
}

// distinctValues 去重保留原始大小写，排序忽略大小写，
// 大小写不同的同名取值按首次出现顺序排列。
func distinctValues(cars []Car, field func(Car) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, c := range cars {
		v := strings.TrimSpace(field(c))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func distinctYearsDesc(cars []Car) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, c := range cars {
		if c.Year == nil {
			continue
		}
		if _, ok := seen[*c.Year]; ok {
			continue
		}
		seen[*c.Year] = struct{}{}
		out = append(out, *c.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// ComputeYearStatistics 对集合计算年份统计，忽略年份缺失的车辆。
func ComputeYearStatistics(cars []Car) YearStatistics {
	stats := YearStatistics{TotalCars: len(cars)}
	var sum, n int
	for _, c := range cars {
		if c.Year == nil {
			continue
		}
		y := *c.Year
		if stats.MinYear == nil || y < *stats.MinYear {
			v := y
			stats.MinYear = &v
		}
		if stats.MaxYear == nil || y > *stats.MaxYear {
			v := y
			stats.MaxYear = &v
		}
		sum += y
		n++
	}
	if n > 0 {
		avg := float64(sum) / float64(n)
		stats.AverageYear = &avg
	}
	return stats
}

// ComputeStats 计算集合概览：总量、古董/新车数、带照片数、
// 最常见品牌以及最新/最旧年份。
func ComputeStats(cars []Car) Stats {
	return computeStatsAt(cars, time.Now().Year())
}

func computeStatsAt(cars []Car, currentYear int) Stats {
	st := Stats{TotalCars: len(cars)}
	for _, c := range cars {
		cls := classifyAt(c.Year, currentYear)
		if cls.IsVintage {
			st.VintageCount++
		}
		if cls.IsNew {
			st.NewCount++
		}
		if c.HasPhoto() {
			st.WithPhotoCount++
		}
		if c.Year != nil {
			y := *c.Year
			if st.NewestYear == nil || y > *st.NewestYear {
				v := y
				st.NewestYear = &v
			}
			if st.OldestYear == nil || y < *st.OldestYear {
				v := y
				st.OldestYear = &v
			}
		}
	}
	if ranked := MostCommonBrands(cars); len(ranked) > 0 {
		st.MostCommonBrand = ranked[0]
	}
	return st
}
