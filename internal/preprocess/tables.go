package preprocess

// Tables holds the lookup values used to fill missing price and area.
type Tables struct {
	CityMedianPrice map[string]float64
	DefaultPrice    float64
	TypeAvgSqft     map[PropertyType]int64
	DefaultSqft     int64
}

var (
	cityMedianPrice = map[string]float64{
		"Chennai": 15000000,
		"Salem":   5000000,
	}
	typeAvgSqft = map[PropertyType]int64{
		Residential: 1400,
		Commercial:  3500,
		Land:        5000,
	}
)

// DefaultTables returns the built-in imputation tables.
func DefaultTables() Tables {
	return Tables{
		CityMedianPrice: cityMedianPrice,
		DefaultPrice:    8000000,
		TypeAvgSqft:     typeAvgSqft,
		DefaultSqft:     1500,
	}
}

// MedianPrice returns the median price for city, or the default.
func (t Tables) MedianPrice(city string) float64 {
	if p, ok := t.CityMedianPrice[city]; ok {
		return p
	}
	return t.DefaultPrice
}

// AverageSqft returns the average area for a property type, or the default.
func (t Tables) AverageSqft(pt PropertyType) int64 {
	if s, ok := t.TypeAvgSqft[pt]; ok {
		return s
	}
	return t.DefaultSqft
}
