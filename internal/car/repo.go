package car

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Repository 车辆持久化端口。分页方法承担下推：过滤、排序与
// 切片在存储层完成，内存引擎只负责纯计算路径。
type Repository interface {
	Save(ctx context.Context, c *Car) error
	Update(ctx context.Context, c *Car) error
	FindByID(ctx context.Context, id string) (*Car, error)
	FindByPlate(ctx context.Context, plate string) (*Car, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Car, error)
	DeleteByID(ctx context.Context, id string) error
	ExistsByPlate(ctx context.Context, plate string) (bool, error)
	ExistsByPlateExcluding(ctx context.Context, plate, excludeID string) (bool, error)
	ExistsByPlateForOtherOwner(ctx context.Context, plate, ownerID string) (bool, error)
	PageByTerm(ctx context.Context, ownerID, term string, q PageQuery) ([]Car, int64, error)
	PageWithFilters(ctx context.Context, ownerID string, cr Criteria, q PageQuery) ([]Car, int64, error)
	PageAll(ctx context.Context, ownerID string, q PageQuery) ([]Car, int64, error)
}

// GormRepo 基于 gorm 的车辆仓储实现。
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

func (r *GormRepo) Save(ctx context.Context, c *Car) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) Update(ctx context.Context, c *Car) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *GormRepo) FindByID(ctx context.Context, id string) (*Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) FindByPlate(ctx context.Context, plate string) (*Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	err := r.db.WithContext(ctx).Where("plate_number = ?", NormalizePlate(plate)).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) FindByOwner(ctx context.Context, ownerID string) ([]Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var cars []Car
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *GormRepo) DeleteByID(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Car{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&Car{}).
		Where("plate_number = ?", NormalizePlate(plate)).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) ExistsByPlateExcluding(ctx context.Context, plate, excludeID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&Car{}).
		Where("plate_number = ? AND id <> ?", NormalizePlate(plate), excludeID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByPlateForOtherOwner 车牌是否已被其它车主占用。
func (r *GormRepo) ExistsByPlateForOtherOwner(ctx context.Context, plate, ownerID string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&Car{}).
		Where("plate_number = ? AND owner_id <> ?", NormalizePlate(plate), ownerID).
		Count(&count).Error
	return count > 0, err
}

// PageByTerm 检索词下推：品牌/型号/颜色任一字段包含匹配。
func (r *GormRepo) PageByTerm(ctx context.Context, ownerID, term string, q PageQuery) ([]Car, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	q = q.Normalize()
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	tx := r.db.WithContext(ctx).Model(&Car{}).
		Where("owner_id = ?", ownerID).
		Where("(LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(color) LIKE ?)",
			pattern, pattern, pattern)
	return r.page(tx, q)
}

// PageWithFilters 结构化条件下推。语义与 matchesStructured 对齐：
// 文本字段精确等值（忽略大小写），区间允许年份缺失的行通过。
func (r *GormRepo) PageWithFilters(ctx context.Context, ownerID string, cr Criteria, q PageQuery) ([]Car, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	q = q.Normalize()
	tx := r.db.WithContext(ctx).Model(&Car{}).Where("owner_id = ?", ownerID)
	if b := strings.TrimSpace(cr.Brand); b != "" {
		tx = tx.Where("LOWER(brand) = ?", strings.ToLower(b))
	}
	if m := strings.TrimSpace(cr.Model); m != "" {
		tx = tx.Where("LOWER(model) = ?", strings.ToLower(m))
	}
	if c := strings.TrimSpace(cr.Color); c != "" {
		tx = tx.Where("LOWER(color) = ?", strings.ToLower(c))
	}
	if p := strings.TrimSpace(cr.PlateNumber); p != "" {
		tx = tx.Where("LOWER(plate_number) = ?", strings.ToLower(p))
	}
	if cr.Year != nil {
		tx = tx.Where("year = ?", *cr.Year)
	}
	if cr.MinYear != nil {
		tx = tx.Where("(year IS NULL OR year >= ?)", *cr.MinYear)
	}
	if cr.MaxYear != nil {
		tx = tx.Where("(year IS NULL OR year <= ?)", *cr.MaxYear)
	}
	return r.page(tx, q)
}

// PageAll 无过滤直页。
func (r *GormRepo) PageAll(ctx context.Context, ownerID string, q PageQuery) ([]Car, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	q = q.Normalize()
	tx := r.db.WithContext(ctx).Model(&Car{}).Where("owner_id = ?", ownerID)
	return r.page(tx, q)
}

func (r *GormRepo) page(tx *gorm.DB, q PageQuery) ([]Car, int64, error) {
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cars []Car
	err := tx.Order(orderClause(q)).
		Offset(q.Page * q.Size).
		Limit(q.Size).
		Find(&cars).Error
	if err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// orderClause 与 comparatorForField 支持同一组字段，
// 空值（NULL / 空串）在两个方向上都排在最后。
func orderClause(q PageQuery) string {
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	switch strings.ToLower(strings.TrimSpace(q.SortBy)) {
	case "brand":
		return fmt.Sprintf("brand = '' ASC, LOWER(brand) %s", dir)
	case "model":
		return fmt.Sprintf("model = '' ASC, LOWER(model) %s", dir)
	case "year":
		return fmt.Sprintf("year IS NULL ASC, year %s", dir)
	case "color":
		return fmt.Sprintf("color = '' ASC, LOWER(color) %s", dir)
	case "updatedat", "updated_at":
		return fmt.Sprintf("updated_at %s", dir)
	default:
		return fmt.Sprintf("created_at %s", dir)
	}
}
