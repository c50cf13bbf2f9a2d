package car

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// 字段长度约束
const (
	BrandMinLen = 2
	BrandMaxLen = 30
	ModelMinLen = 1
	ModelMaxLen = 50
	ColorMinLen = 3
	ColorMaxLen = 20

	MinYear = 1900
)

var (
	ErrNotFound   = errors.New("car not found")
	ErrPlateTaken = errors.New("plate number already registered")
	ErrNotOwner   = errors.New("car does not belong to user")
)

// 哥伦比亚车牌：旧式 AAA123 或摩托式 AAA12A
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$|^[A-Z]{3}[0-9]{2}[A-Z]$`)

// NormalizePlate 去空白并统一为大写，便于以车牌做自然键比较。
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.ReplaceAll(plate, " ", "")
}

// ValidatePlate 校验车牌格式，返回规范化后的车牌。
func ValidatePlate(plate string) (string, error) {
	normalized := NormalizePlate(plate)
	if normalized == "" {
		return "", errors.New("plate number is required")
	}
	if !platePattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid plate number format: %s", normalized)
	}
	return normalized, nil
}

// ValidateYear 年份允许缺失；给定时必须落在 [1900, 当前年份]。
func ValidateYear(year *int) error {
	if year == nil {
		return nil
	}
	current := time.Now().Year()
	if *year < MinYear || *year > current {
		return fmt.Errorf("year must be between %d and %d", MinYear, current)
	}
	return nil
}

// ValidateBrand 品牌必填，长度 2-30。
func ValidateBrand(brand string) error {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return errors.New("brand is required")
	}
	if len(brand) < BrandMinLen || len(brand) > BrandMaxLen {
		return fmt.Errorf("brand length must be between %d and %d", BrandMinLen, BrandMaxLen)
	}
	return nil
}

// ValidateModel 型号必填，长度 1-50。
func ValidateModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model is required")
	}
	if len(model) > ModelMaxLen {
		return fmt.Errorf("model length must be between %d and %d", ModelMinLen, ModelMaxLen)
	}
	return nil
}

// ValidateColor 颜色允许缺省；给定时长度 3-20。
func ValidateColor(color string) error {
	color = strings.TrimSpace(color)
	if color == "" {
		return nil
	}
	if len(color) < ColorMinLen || len(color) > ColorMaxLen {
		return fmt.Errorf("color length must be between %d and %d", ColorMinLen, ColorMaxLen)
	}
	return nil
}
