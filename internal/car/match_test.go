package car

import "testing"

func TestContainsFold(t *testing.T) {
	if !containsFold("Toyota", "toy") {
		t.Fatalf("expected substring match to ignore case")
	}
	if !containsFold("Toyota", "  ") {
		t.Fatalf("blank filter must match everything")
	}
	if containsFold("Toyota", "honda") {
		t.Fatalf("unexpected match")
	}
}

func TestEqualsFold(t *testing.T) {
	if !equalsFold("Rojo", "rojo") {
		t.Fatalf("expected exact match to ignore case")
	}
	if equalsFold("Rojo", "roj") {
		t.Fatalf("exact match must not accept substrings")
	}
	if !equalsFold("Rojo", "") {
		t.Fatalf("blank filter must match everything")
	}
}

// 两条区间判定的空年份策略不同：直接过滤排除，条件路径放行。
func TestYearRangeNullYearPolicy(t *testing.T) {
	min, max := intp(2000), intp(2010)

	if yearInRange(nil, min, max) {
		t.Fatalf("strict range must reject missing year")
	}
	if !yearInRangeLenient(nil, min, max) {
		t.Fatalf("lenient range must let missing year pass")
	}
	if !yearInRange(nil, nil, nil) {
		t.Fatalf("unconstrained range must pass missing year")
	}

	// 同一组输入走两条可见路径
	cars := []Car{
		{PlateNumber: "ABC123", Brand: "Toyota", Year: intp(2005)},
		{PlateNumber: "DEF456", Brand: "Honda", Year: nil},
	}
	direct := FilterByYearRange(cars, min, max)
	if len(direct) != 1 || direct[0].PlateNumber != "ABC123" {
		t.Fatalf("direct range filter: got %d cars", len(direct))
	}
	viaCriteria := AdvancedSearch(cars, Criteria{MinYear: min, MaxYear: max})
	if len(viaCriteria) != 2 {
		t.Fatalf("criteria range filter: got %d cars, want 2", len(viaCriteria))
	}
}

func TestYearInRangeOpenEnds(t *testing.T) {
	if !yearInRange(intp(2015), intp(2010), nil) {
		t.Fatalf("open max must pass")
	}
	if yearInRange(intp(2005), intp(2010), nil) {
		t.Fatalf("below min must fail")
	}
	if !yearInRange(intp(2005), nil, intp(2010)) {
		t.Fatalf("open min must pass")
	}
	if yearInRange(intp(2015), nil, intp(2010)) {
		t.Fatalf("above max must fail")
	}
}

func TestMatchesTerm(t *testing.T) {
	c := Car{Brand: "Toyota", Model: "Corolla", Color: "Rojo", PlateNumber: "ABC123"}

	for _, term := range []string{"toy", "COROLLA", "rojo", ""} {
		if !MatchesTerm(c, term) {
			t.Fatalf("term %q should match", term)
		}
	}
	// 检索词不会匹配车牌
	if MatchesTerm(c, "ABC123") {
		t.Fatalf("term must not match plate number")
	}
}

func TestMatchesCriteriaMixedSemantics(t *testing.T) {
	c := Car{Brand: "Toyota", Model: "Corolla", Color: "Rojo", PlateNumber: "ABC123", Year: intp(2010)}

	// 品牌/型号是子串匹配
	if !MatchesCriteria(c, Criteria{Brand: "toy"}) {
		t.Fatalf("brand substring should match")
	}
	if !MatchesCriteria(c, Criteria{Model: "rolla"}) {
		t.Fatalf("model substring should match")
	}
	// 颜色/车牌是精确匹配
	if MatchesCriteria(c, Criteria{Color: "roj"}) {
		t.Fatalf("color substring must not match")
	}
	if !MatchesCriteria(c, Criteria{Color: "ROJO"}) {
		t.Fatalf("color exact ci should match")
	}
	if MatchesCriteria(c, Criteria{PlateNumber: "ABC"}) {
		t.Fatalf("plate substring must not match")
	}
	// 条件取与
	if MatchesCriteria(c, Criteria{Brand: "toy", Color: "Negro"}) {
		t.Fatalf("AND composition must reject on any miss")
	}
	if !MatchesCriteria(c, Criteria{Brand: "toy", Color: "rojo", MinYear: intp(2005), MaxYear: intp(2015)}) {
		t.Fatalf("all-set conjunction should match")
	}
}

func TestMatchesFiltersExactTextSemantics(t *testing.T) {
	c := Car{Brand: "Toyota", Model: "Corolla", Color: "Rojo", PlateNumber: "ABC123", Year: intp(2010)}

	// 统一搜索路径的文本字段是精确匹配，不是子串
	if matchesFiltersAt(c, &SearchRequest{Brand: "toy"}, 2025) {
		t.Fatalf("brand substring must not match on unified path")
	}
	if !matchesFiltersAt(c, &SearchRequest{Brand: "TOYOTA"}, 2025) {
		t.Fatalf("brand exact ci should match")
	}
	if !matchesFiltersAt(c, nil, 2025) {
		t.Fatalf("nil request must match everything")
	}
}

func TestMatchesFiltersFacets(t *testing.T) {
	vintage := Car{PlateNumber: "AAA111", Year: intp(1995)}
	fresh := Car{PlateNumber: "BBB222", Year: intp(2024), PhotoURL: "http://x/p.jpg"}
	unknown := Car{PlateNumber: "CCC333"}

	vTrue, vFalse := true, false

	if !matchesFiltersAt(vintage, &SearchRequest{IsVintage: &vTrue}, 2025) {
		t.Fatalf("expected vintage facet hit")
	}
	if matchesFiltersAt(fresh, &SearchRequest{IsVintage: &vTrue}, 2025) {
		t.Fatalf("fresh car is not vintage")
	}
	if !matchesFiltersAt(fresh, &SearchRequest{IsNew: &vTrue, HasPhoto: &vTrue}, 2025) {
		t.Fatalf("expected new+photo facets hit")
	}
	if matchesFiltersAt(fresh, &SearchRequest{HasPhoto: &vFalse}, 2025) {
		t.Fatalf("hasPhoto=false must reject car with photo")
	}
	// 年份缺失的车既不命中 vintage=true 也不命中 new=true
	if matchesFiltersAt(unknown, &SearchRequest{IsVintage: &vTrue}, 2025) {
		t.Fatalf("unknown year is not vintage")
	}
	if !matchesFiltersAt(unknown, &SearchRequest{IsVintage: &vFalse}, 2025) {
		t.Fatalf("unknown year should hit vintage=false")
	}
}

// 统一搜索路径的区间约束沿用宽松策略：年份缺失放行。
func TestMatchesFiltersLenientRange(t *testing.T) {
	unknown := Car{PlateNumber: "CCC333"}
	if !matchesFiltersAt(unknown, &SearchRequest{MinYear: intp(2000), MaxYear: intp(2010)}, 2025) {
		t.Fatalf("unified path range must pass missing year")
	}
}
