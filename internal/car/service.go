package car

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UserDirectory 用户存在性校验端口，避免直接依赖用户包。
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Service 封装车辆登记的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// CreateCarInput 登记车辆的入参。
type CreateCarInput struct {
	OwnerID     string
	Brand       string
	Model       string
	Year        *int
	PlateNumber string
	Color       string
	PhotoURL    string
}

// UpdateCarInput 部分更新：nil 字段保持原值。
type UpdateCarInput struct {
	Brand       *string
	Model       *string
	Year        *int
	PlateNumber *string
	Color       *string
	PhotoURL    *string
}

func (s *Service) CreateCar(ctx context.Context, in CreateCarInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner_id required")
	}
	if s.users != nil {
		ok, err := s.users.Exists(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("user not found: %s", ownerID)
		}
	}
	if err := ValidateBrand(in.Brand); err != nil {
		return nil, err
	}
	if err := ValidateModel(in.Model); err != nil {
		return nil, err
	}
	if err := ValidateYear(in.Year); err != nil {
		return nil, err
	}
	if err := ValidateColor(in.Color); err != nil {
		return nil, err
	}
	plate, err := ValidatePlate(in.PlateNumber)
	if err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPlateTaken
	}

	c := &Car{
		ID:          uuid.NewString(),
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Year:        in.Year,
		PlateNumber: plate,
		Color:       strings.TrimSpace(in.Color),
		PhotoURL:    strings.TrimSpace(in.PhotoURL),
		OwnerID:     ownerID,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCar 按 ID 取车并校验归属。
func (s *Service) GetCar(ctx context.Context, ownerID, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != strings.TrimSpace(ownerID) {
		return nil, ErrNotOwner
	}
	return c, nil
}

// GetCarByPlate 按车牌取车并校验归属。
func (s *Service) GetCarByPlate(ctx context.Context, ownerID, plate string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if strings.TrimSpace(plate) == "" {
		return nil, fmt.Errorf("plate required")
	}
	c, err := s.repo.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != strings.TrimSpace(ownerID) {
		return nil, ErrNotOwner
	}
	return c, nil
}

// UpdateCar 部分更新，只有给定的字段才会被校验与覆盖。
func (s *Service) UpdateCar(ctx context.Context, ownerID, id string, in UpdateCarInput) (*Car, error) {
	c, err := s.GetCar(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Brand != nil {
		if err := ValidateBrand(*in.Brand); err != nil {
			return nil, err
		}
		c.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Model != nil {
		if err := ValidateModel(*in.Model); err != nil {
			return nil, err
		}
		c.Model = strings.TrimSpace(*in.Model)
	}
	if in.Year != nil {
		if err := ValidateYear(in.Year); err != nil {
			return nil, err
		}
		c.Year = in.Year
	}
	if in.Color != nil {
		if err := ValidateColor(*in.Color); err != nil {
			return nil, err
		}
		c.Color = strings.TrimSpace(*in.Color)
	}
	if in.PhotoURL != nil {
		c.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}
	if in.PlateNumber != nil {
		plate, err := ValidatePlate(*in.PlateNumber)
		if err != nil {
			return nil, err
		}
		if plate != c.PlateNumber {
			taken, err := s.repo.ExistsByPlateExcluding(ctx, plate, c.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrPlateTaken
			}
			c.PlateNumber = plate
		}
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCar 删除归属校验通过的车辆。
func (s *Service) DeleteCar(ctx context.Context, ownerID, id string) error {
	c, err := s.GetCar(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteByID(ctx, c.ID)
}

// ListCars 返回车主的全部车辆，按登记时间倒序。
func (s *Service) ListCars(ctx context.Context, ownerID string) ([]Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner_id required")
	}
	return s.repo.FindByOwner(ctx, ownerID)
}

// PlateAvailable 查询车牌是否可用（格式不合法视为不可用）。
func (s *Service) PlateAvailable(ctx context.Context, plate string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("service not initialized")
	}
	normalized, err := ValidatePlate(plate)
	if err != nil {
		return false, err
	}
	taken, err := s.repo.ExistsByPlate(ctx, normalized)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// PlateAvailableForOwner 查询车牌对指定车主是否可用：
// 车主自己名下已占用的车牌仍视为可用（换车重挂同一车牌的场景）。
func (s *Service) PlateAvailableForOwner(ctx context.Context, ownerID, plate string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return false, fmt.Errorf("owner_id required")
	}
	normalized, err := ValidatePlate(plate)
	if err != nil {
		return false, err
	}
	taken, err := s.repo.ExistsByPlateForOtherOwner(ctx, normalized, ownerID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// OwnerStats 计算车主集合的概览统计。
func (s *Service) OwnerStats(ctx context.Context, ownerID string) (Stats, error) {
	cars, err := s.ListCars(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	st := ComputeStats(cars)
	st.OwnerID = strings.TrimSpace(ownerID)
	return st, nil
}

// OwnerYearStatistics 计算车主集合的年份统计。
func (s *Service) OwnerYearStatistics(ctx context.Context, ownerID string) (YearStatistics, error) {
	cars, err := s.ListCars(ctx, ownerID)
	if err != nil {
		return YearStatistics{}, err
	}
	return ComputeYearStatistics(cars), nil
}
