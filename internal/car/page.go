package car

// 分页参数边界。非法入参静默钳制，不报错。
// MaxPage 限制页号上限，保证 page*size 不会溢出回绕。
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

// Page 一页搜索结果及其元数据。
type Page struct {
	Content       []Car  `json:"content"`
	Number        int    `json:"page"`
	Size          int    `json:"size"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
	HasNext       bool   `json:"hasNext"`
	HasPrevious   bool   `json:"hasPrevious"`
	SortedBy      string `json:"sortedBy"`
	SortDirection string `json:"sortDirection"`
}

// PageQuery 分页与排序指令（入参在 Normalize 后保证合法）。
type PageQuery struct {
	Page       int
	Size       int
	SortBy     string
	Descending bool
}

// Normalize 钳制分页参数：页号钳入 [0, MaxPage]，页大小超出 (0, 100] 取默认值 20。
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		q.Size = DefaultPageSize
	}
	return q
}

func (q PageQuery) direction() string {
	if q.Descending {
		return "desc"
	}
	return "asc"
}

// NewPage 根据总数和页参数组装页结构。
func NewPage(content []Car, total int64, q PageQuery) Page {
	q = q.Normalize()
	totalPages := int((total + int64(q.Size) - 1) / int64(q.Size))
	if content == nil {
		content = []Car{}
	}
	return Page{
		Content:       content,
		Number:        q.Page,
		Size:          q.Size,
		TotalPages:    totalPages,
		TotalElements: total,
		HasNext:       q.Page < totalPages-1,
		HasPrevious:   q.Page > 0,
		SortedBy:      q.SortBy,
		SortDirection: q.direction(),
	}
}

// pageSlice 在内存中切出一页（已排序的全量结果 → 指定页）。
func pageSlice(cars []Car, q PageQuery) []Car {
	q = q.Normalize()
	start := q.Page * q.Size
	if start >= len(cars) {
		return []Car{}
	}
	end := start + q.Size
	if end > len(cars) {
		end = len(cars)
	}
	out := make([]Car, end-start)
	copy(out, cars[start:end])
	return out
}
