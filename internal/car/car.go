package car

import (
	"fmt"
	"strings"
	"time"
)

// Car 是 cars 表的 GORM 模型，同时也是搜索引擎的输入记录。
// 车牌号是自然键：相等性只看 PlateNumber。
type Car struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Brand       string    `gorm:"size:30;not null" json:"brand"`
	Model       string    `gorm:"size:50;not null" json:"model"`
	Year        *int      `gorm:"index" json:"year"`
	PlateNumber string    `gorm:"uniqueIndex;size:10;not null" json:"plateNumber"`
	Color       string    `gorm:"size:20" json:"color"`
	PhotoURL    string    `gorm:"size:255" json:"photoUrl,omitempty"`
	OwnerID     string    `gorm:"index;size:36;not null" json:"ownerId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Equal 基于车牌号判断两条记录是否指同一辆车。
func (c Car) Equal(other Car) bool {
	if strings.TrimSpace(c.PlateNumber) == "" {
		return false
	}
	return c.PlateNumber == other.PlateNumber
}

// HasPhoto 判断是否已关联照片（空白 URL 视为无照片）。
func (c Car) HasPhoto() bool {
	return strings.TrimSpace(c.PhotoURL) != ""
}

// FullDescription 返回 "品牌 型号 年份" 形式的展示文本。
func (c Car) FullDescription() string {
	year := "-"
	if c.Year != nil {
		year = fmt.Sprintf("%d", *c.Year)
	}
	return fmt.Sprintf("%s %s %s", c.Brand, c.Model, year)
}
