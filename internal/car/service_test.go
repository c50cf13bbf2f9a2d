package car

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// memoryRepo 测试用内存仓储，分页下推语义与 GormRepo 对齐。
type memoryRepo struct {
	cars []Car
	seq  int
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{} }

func (m *memoryRepo) Save(ctx context.Context, c *Car) error {
	m.seq++
	c.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Hour)
	c.UpdatedAt = c.CreatedAt
	m.cars = append(m.cars, *c)
	return nil
}

func (m *memoryRepo) Update(ctx context.Context, c *Car) error {
	for i := range m.cars {
		if m.cars[i].ID == c.ID {
			c.UpdatedAt = m.cars[i].UpdatedAt.Add(time.Minute)
			m.cars[i] = *c
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) FindByID(ctx context.Context, id string) (*Car, error) {
	for _, c := range m.cars {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) FindByPlate(ctx context.Context, plate string) (*Car, error) {
	plate = NormalizePlate(plate)
	for _, c := range m.cars {
		if c.PlateNumber == plate {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepo) FindByOwner(ctx context.Context, ownerID string) ([]Car, error) {
	owned := filtered(m.cars, func(c Car) bool { return c.OwnerID == ownerID })
	return SortByField(owned, "createdAt", false), nil
}

func (m *memoryRepo) DeleteByID(ctx context.Context, id string) error {
	for i := range m.cars {
		if m.cars[i].ID == id {
			m.cars = append(m.cars[:i], m.cars[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	_, err := m.FindByPlate(ctx, plate)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memoryRepo) ExistsByPlateExcluding(ctx context.Context, plate, excludeID string) (bool, error) {
	plate = NormalizePlate(plate)
	for _, c := range m.cars {
		if c.PlateNumber == plate && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) ExistsByPlateForOtherOwner(ctx context.Context, plate, ownerID string) (bool, error) {
	plate = NormalizePlate(plate)
	for _, c := range m.cars {
		if c.PlateNumber == plate && c.OwnerID != ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) pageOf(owned []Car, q PageQuery) ([]Car, int64, error) {
	q = q.Normalize()
	sorted := SortByField(owned, q.SortBy, !q.Descending)
	return pageSlice(sorted, q), int64(len(owned)), nil
}

func (m *memoryRepo) PageByTerm(ctx context.Context, ownerID, term string, q PageQuery) ([]Car, int64, error) {
	owned, _ := m.FindByOwner(ctx, ownerID)
	return m.pageOf(GeneralSearch(owned, term), q)
}

func (m *memoryRepo) PageWithFilters(ctx context.Context, ownerID string, cr Criteria, q PageQuery) ([]Car, int64, error) {
	owned, _ := m.FindByOwner(ctx, ownerID)
	return m.pageOf(filtered(owned, func(c Car) bool { return matchesStructured(c, cr) }), q)
}

func (m *memoryRepo) PageAll(ctx context.Context, ownerID string, q PageQuery) ([]Car, int64, error) {
	owned, _ := m.FindByOwner(ctx, ownerID)
	return m.pageOf(owned, q)
}

type allowAllUsers struct{}

func (allowAllUsers) Exists(ctx context.Context, id string) (bool, error) { return true, nil }

func newTestService() (*Service, *SearchService, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, allowAllUsers{}), NewSearchService(repo), repo
}

func mustCreate(t *testing.T, svc *Service, owner string, in CreateCarInput) *Car {
	t.Helper()
	in.OwnerID = owner
	c, err := svc.CreateCar(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateCar(%s): %v", in.PlateNumber, err)
	}
	return c
}

func TestCreateCarValidatesAndNormalizes(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created := mustCreate(t, svc, "u-1", CreateCarInput{
		Brand: "  Toyota ", Model: "Corolla", Year: intp(2010),
		PlateNumber: " abc 123 ", Color: "Rojo",
	})
	if created.PlateNumber != "ABC123" {
		t.Fatalf("plate not normalized: %q", created.PlateNumber)
	}
	if created.Brand != "Toyota" {
		t.Fatalf("brand not trimmed: %q", created.Brand)
	}
	if created.ID == "" {
		t.Fatalf("id must be assigned")
	}

	// 无效入参
	if _, err := svc.CreateCar(ctx, CreateCarInput{OwnerID: "u-1", Brand: "X", Model: "M", PlateNumber: "DEF456"}); err == nil {
		t.Fatalf("short brand must be rejected")
	}
	if _, err := svc.CreateCar(ctx, CreateCarInput{OwnerID: "u-1", Brand: "Honda", Model: "Civic", PlateNumber: "BAD"}); err == nil {
		t.Fatalf("bad plate must be rejected")
	}
	if _, err := svc.CreateCar(ctx, CreateCarInput{OwnerID: "u-1", Brand: "Honda", Model: "Civic", Year: intp(1800), PlateNumber: "DEF456"}); err == nil {
		t.Fatalf("out-of-range year must be rejected")
	}
}

func TestCreateCarRejectsDuplicatePlate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", PlateNumber: "ABC123"})
	_, err := svc.CreateCar(ctx, CreateCarInput{OwnerID: "u-2", Brand: "Honda", Model: "Civic", PlateNumber: "abc123"})
	if !errors.Is(err, ErrPlateTaken) {
		t.Fatalf("expected ErrPlateTaken, got %v", err)
	}
}

func TestGetCarOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created := mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", PlateNumber: "ABC123"})

	if _, err := svc.GetCar(ctx, "u-1", created.ID); err != nil {
		t.Fatalf("owner must read own car: %v", err)
	}
	if _, err := svc.GetCar(ctx, "u-2", created.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.GetCar(ctx, "u-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCarPartial(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created := mustCreate(t, svc, "u-1", CreateCarInput{
		Brand: "Toyota", Model: "Corolla", Year: intp(2010), PlateNumber: "ABC123", Color: "Rojo",
	})

	color := "Negro"
	updated, err := svc.UpdateCar(ctx, "u-1", created.ID, UpdateCarInput{Color: &color})
	if err != nil {
		t.Fatalf("UpdateCar: %v", err)
	}
	if updated.Color != "Negro" {
		t.Fatalf("color not updated: %q", updated.Color)
	}
	if updated.Brand != "Toyota" || updated.Year == nil || *updated.Year != 2010 {
		t.Fatalf("unset fields must keep values: %+v", updated)
	}

	// 换牌需要可用性检查
	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Honda", Model: "Civic", PlateNumber: "DEF456"})
	taken := "DEF456"
	if _, err := svc.UpdateCar(ctx, "u-1", created.ID, UpdateCarInput{PlateNumber: &taken}); !errors.Is(err, ErrPlateTaken) {
		t.Fatalf("expected ErrPlateTaken, got %v", err)
	}
	// 改成自己现在的牌照是允许的
	same := "abc123"
	if _, err := svc.UpdateCar(ctx, "u-1", created.ID, UpdateCarInput{PlateNumber: &same}); err != nil {
		t.Fatalf("re-setting own plate must pass: %v", err)
	}
}

func TestDeleteCar(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created := mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", PlateNumber: "ABC123"})

	if err := svc.DeleteCar(ctx, "u-2", created.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.DeleteCar(ctx, "u-1", created.ID); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}
	if _, err := svc.GetCar(ctx, "u-1", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPlateAvailable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	available, err := svc.PlateAvailable(ctx, "abc123")
	if err != nil || !available {
		t.Fatalf("unused plate must be available: %v %v", available, err)
	}
	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", PlateNumber: "ABC123"})
	available, err = svc.PlateAvailable(ctx, "ABC123")
	if err != nil || available {
		t.Fatalf("used plate must be unavailable: %v %v", available, err)
	}
	if _, err := svc.PlateAvailable(ctx, "NOPE"); err == nil {
		t.Fatalf("invalid plate must error")
	}
}

// 车主自己名下的车牌对其仍算可用，其它车主占用才算冲突。
func TestPlateAvailableForOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", PlateNumber: "ABC123"})

	available, err := svc.PlateAvailableForOwner(ctx, "u-1", "abc123")
	if err != nil || !available {
		t.Fatalf("own plate must stay available to its owner: %v %v", available, err)
	}
	available, err = svc.PlateAvailableForOwner(ctx, "u-2", "ABC123")
	if err != nil || available {
		t.Fatalf("plate held by another owner must be unavailable: %v %v", available, err)
	}
	available, err = svc.PlateAvailableForOwner(ctx, "u-2", "XYZ999")
	if err != nil || !available {
		t.Fatalf("unused plate must be available: %v %v", available, err)
	}
	if _, err := svc.PlateAvailableForOwner(ctx, "  ", "ABC123"); err == nil {
		t.Fatalf("blank owner must error")
	}
}

func TestOwnerStats(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	now := time.Now().Year()

	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", Year: intp(now - 30), PlateNumber: "AAA111"})
	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Hilux", Year: intp(now - 1), PlateNumber: "BBB222", PhotoURL: "http://x/b.jpg"})
	mustCreate(t, svc, "u-2", CreateCarInput{Brand: "Honda", Model: "Civic", Year: intp(now - 5), PlateNumber: "CCC333"})

	st, err := svc.OwnerStats(ctx, "u-1")
	if err != nil {
		t.Fatalf("OwnerStats: %v", err)
	}
	if st.TotalCars != 2 {
		t.Fatalf("stats must be owner-scoped: total=%d", st.TotalCars)
	}
	if st.VintageCount != 1 || st.NewCount != 1 || st.WithPhotoCount != 1 {
		t.Fatalf("counts wrong: %+v", st)
	}
	if st.MostCommonBrand != "Toyota" {
		t.Fatalf("mostCommonBrand=%q", st.MostCommonBrand)
	}

	ys, err := svc.OwnerYearStatistics(ctx, "u-1")
	if err != nil {
		t.Fatalf("OwnerYearStatistics: %v", err)
	}
	if ys.TotalCars != 2 || ys.MinYear == nil || *ys.MinYear != now-30 {
		t.Fatalf("year stats wrong: %+v", ys)
	}
}

func TestSearchServiceScopesByOwner(t *testing.T) {
	svc, search, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", PlateNumber: "AAA111"})
	mustCreate(t, svc, "u-2", CreateCarInput{Brand: "Toyota", Model: "Hilux", PlateNumber: "BBB222"})

	got, err := search.SearchByBrand(ctx, "u-1", "toyota")
	if err != nil {
		t.Fatalf("SearchByBrand: %v", err)
	}
	if len(got) != 1 || got[0].PlateNumber != "AAA111" {
		t.Fatalf("search must be owner-scoped: %v", plates(got))
	}

	if _, err := search.SearchByBrand(ctx, "  ", "toyota"); err == nil {
		t.Fatalf("blank owner must error")
	}
}

func TestSearchPaginatedStrategies(t *testing.T) {
	svc, search, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", Year: intp(2010), PlateNumber: "AAA111", Color: "Rojo"})
	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Hilux", Year: intp(2020), PlateNumber: "BBB222", Color: "Negro"})
	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Honda", Model: "Civic", PlateNumber: "CCC333", Color: "Rojo"})

	// 检索词策略
	page, err := search.SearchPaginated(ctx, "u-1", &SearchRequest{SearchTerm: "toyota"}, PageQuery{Size: 10})
	if err != nil {
		t.Fatalf("SearchPaginated: %v", err)
	}
	if page.TotalElements != 2 {
		t.Fatalf("term strategy: total=%d", page.TotalElements)
	}

	// 结构化过滤策略：颜色精确匹配
	page, err = search.SearchPaginated(ctx, "u-1", &SearchRequest{Color: "rojo"}, PageQuery{Size: 10})
	if err != nil {
		t.Fatalf("SearchPaginated: %v", err)
	}
	if page.TotalElements != 2 {
		t.Fatalf("filter strategy: total=%d", page.TotalElements)
	}

	// 区间过滤放行年份缺失的车
	page, err = search.SearchPaginated(ctx, "u-1", &SearchRequest{MinYear: intp(2015)}, PageQuery{Size: 10})
	if err != nil {
		t.Fatalf("SearchPaginated: %v", err)
	}
	if page.TotalElements != 2 {
		t.Fatalf("lenient range: total=%d, want 2 (2020 + nil year)", page.TotalElements)
	}

	// 无过滤策略 + 默认排序（创建时间降序）
	page, err = search.SearchPaginated(ctx, "u-1", &SearchRequest{}, PageQuery{Size: 2})
	if err != nil {
		t.Fatalf("SearchPaginated: %v", err)
	}
	if page.TotalElements != 3 || page.TotalPages != 2 || !page.HasNext {
		t.Fatalf("unfiltered page metadata wrong: %+v", page)
	}
	if len(page.Content) != 2 || page.Content[0].PlateNumber != "CCC333" {
		t.Fatalf("default order must be createdAt desc: %v", plates(page.Content))
	}
}

func TestSearchServicePointQueries(t *testing.T) {
	svc, search, _ := newTestService()
	ctx := context.Background()
	now := time.Now().Year()

	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Toyota", Model: "Corolla", Year: intp(now - 30), PlateNumber: "AAA111", Color: "Rojo"})
	mustCreate(t, svc, "u-1", CreateCarInput{Brand: "Honda", Model: "Civic", Year: intp(now - 1), PlateNumber: "BBB222", Color: "Azul", PhotoURL: "http://x/c.jpg"})

	if got, _ := search.SearchByPlate(ctx, "u-1", "aaa111"); len(got) != 1 {
		t.Fatalf("plate search: %v", plates(got))
	}
	if got, _ := search.SearchByPlate(ctx, "u-1", ""); len(got) != 0 {
		t.Fatalf("blank plate must return empty")
	}
	if got, _ := search.VintageCars(ctx, "u-1"); len(got) != 1 || got[0].PlateNumber != "AAA111" {
		t.Fatalf("vintage: %v", plates(got))
	}
	if got, _ := search.NewCars(ctx, "u-1"); len(got) != 1 || got[0].PlateNumber != "BBB222" {
		t.Fatalf("new: %v", plates(got))
	}
	if got, _ := search.CarsWithPhoto(ctx, "u-1"); len(got) != 1 || got[0].PlateNumber != "BBB222" {
		t.Fatalf("with photo: %v", plates(got))
	}
	if got, _ := search.FilterByColor(ctx, "u-1", "ROJO"); len(got) != 1 {
		t.Fatalf("color filter: %v", plates(got))
	}
	if freq, _ := search.BrandFrequency(ctx, "u-1"); len(freq) != 2 {
		t.Fatalf("brand frequency: %+v", freq)
	}
}

func TestCreateCarChecksUserDirectory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, userDirectoryFunc(func(ctx context.Context, id string) (bool, error) {
		return strings.HasPrefix(id, "u-"), nil
	}))

	if _, err := svc.CreateCar(context.Background(), CreateCarInput{
		OwnerID: "ghost", Brand: "Toyota", Model: "Corolla", PlateNumber: "AAA111",
	}); err == nil {
		t.Fatalf("unknown owner must be rejected")
	}
}

type userDirectoryFunc func(ctx context.Context, id string) (bool, error)

func (f userDirectoryFunc) Exists(ctx context.Context, id string) (bool, error) { return f(ctx, id) }
