// Package dashboard computes the aggregate views shown on the EstateBI
// dashboard. City filters are optional; "" and "all" mean every city.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/estatebi/internal/transaction"
)

// Limits for the list views.
const (
	TrendMonths       = 12
	RegionLimit       = 10
	RecentTransaction = 10
)

// CityCount is a city with its number of properties.
type CityCount struct {
	City          string `json:"city"`
	PropertyCount int64  `json:"property_count"`
}

// Metrics are the headline figures.
type Metrics struct {
	TotalInventory int64   `json:"total_inventory"`
	AvgPrice       int64   `json:"avg_price"`
	OccupancyRate  float64 `json:"occupancy_rate"`
	PendingSales   int64   `json:"pending_sales"`
}

// TrendPoint is the average sale amount for one month.
type TrendPoint struct {
	Month    string `json:"month"`
	AvgPrice int64  `json:"avg_price"`
}

// RegionCount is a region with its number of properties.
type RegionCount struct {
	Region string `json:"region"`
	Count  int64  `json:"count"`
}

// CityStat summarizes the properties in one city.
type CityStat struct {
	City        string  `json:"city"`
	Count       int64   `json:"count"`
	AvgPrice    int64   `json:"avg_price"`
	TotalValue  float64 `json:"total_value"`
	ActiveCount int64   `json:"active_count"`
	SoldCount   int64   `json:"sold_count"`
}

// Overview is the portfolio-wide part of the summary.
type Overview struct {
	TotalProperties int64 `json:"total_properties"`
	Active          int64 `json:"active"`
	Sold            int64 `json:"sold"`
	Pending         int64 `json:"pending"`
	AvgPrice        int64 `json:"avg_price"`
	AvgSqft         int64 `json:"avg_sqft"`
}

// CityAverage is a city with its count and average price.
type CityAverage struct {
	City     string `json:"city"`
	Count    int64  `json:"count"`
	AvgPrice int64  `json:"avg_price"`
}

// TypeCount is a property type with its count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Summary combines the overview with per-city and per-type breakdowns.
type Summary struct {
	Overview Overview      `json:"overview"`
	ByCity   []CityAverage `json:"byCity"`
	ByType   []TypeCount   `json:"byType"`
}

// Service answers dashboard queries.
type Service struct {
	db           *sql.DB
	transactions *transaction.Repository
}

// NewService creates a dashboard service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, transactions: transaction.NewRepository(db)}
}

// Cities lists every city that has properties, busiest first.
func (s *Service) Cities(ctx context.Context) (cities []CityCount, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT city, COUNT(*) AS property_count
		FROM properties
		WHERE city != ''
		GROUP BY city
		ORDER BY property_count DESC, city`)
	if err != nil {
		return nil, fmt.Errorf("listing cities: %w", err)
	}
	defer closeRows(rows, &err)

	cities = []CityCount{}
	for rows.Next() {
		var c CityCount
		if err := rows.Scan(&c.City, &c.PropertyCount); err != nil {
			return nil, fmt.Errorf("scanning city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// Metrics returns inventory, average price, occupancy and pending sales.
func (s *Service) Metrics(ctx context.Context, city string) (*Metrics, error) {
	city = cityFilter(city)

	query := `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'Active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Sold' THEN 1 ELSE 0 END), 0),
			AVG(CASE WHEN status = 'Active' THEN price END)
		FROM properties`
	var args []interface{}
	if city != "" {
		query += " WHERE city = ?"
		args = append(args, city)
	}

	var (
		total, active, sold int64
		avg                 sql.NullFloat64
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total, &active, &sold, &avg); err != nil {
		return nil, fmt.Errorf("querying metrics: %w", err)
	}

	pending, err := s.transactions.CountPending(ctx, city)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		TotalInventory: active,
		AvgPrice:       roundNull(avg),
		PendingSales:   pending,
	}
	if total > 0 {
		m.OccupancyRate = decimal.NewFromInt(sold).
			DivRound(decimal.NewFromInt(total), 4).
			InexactFloat64()
	}
	return m, nil
}

// PriceTrends returns the monthly average of non-cancelled sale amounts for
// the most recent months with sales, oldest first.
func (s *Service) PriceTrends(ctx context.Context) ([]TrendPoint, error) {
	amounts, err := s.transactions.ListAmounts(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		sum   decimal.Decimal
		count int64
	}
	buckets := make(map[string]*bucket)
	for _, a := range amounts {
		if len(a.Date) < 7 {
			continue
		}
		key := a.Date[:7]
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum = b.sum.Add(decimal.NewFromFloat(a.Amount))
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > TrendMonths {
		keys = keys[len(keys)-TrendMonths:]
	}

	trends := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		month, err := time.Parse("2006-01", k)
		if err != nil {
			continue
		}
		b := buckets[k]
		trends = append(trends, TrendPoint{
			Month:    month.Format("Jan"),
			AvgPrice: b.sum.Div(decimal.NewFromInt(b.count)).Round(0).IntPart(),
		})
	}
	return trends, nil
}

// RegionalDistribution returns the regions with the most properties.
func (s *Service) RegionalDistribution(ctx context.Context, city string) (dist []RegionCount, err error) {
	city = cityFilter(city)

	query := `SELECT r.name, COUNT(p.id) AS cnt
		FROM regions r
		JOIN properties p ON p.region_id = r.id`
	var args []interface{}
	if city != "" {
		query += " WHERE p.city = ?"
		args = append(args, city)
	}
	query += " GROUP BY r.id, r.name ORDER BY cnt DESC, r.name LIMIT ?"
	args = append(args, RegionLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying regional distribution: %w", err)
	}
	defer closeRows(rows, &err)

	dist = []RegionCount{}
	for rows.Next() {
		var rc RegionCount
		if err := rows.Scan(&rc.Region, &rc.Count); err != nil {
			return nil, fmt.Errorf("scanning region count: %w", err)
		}
		dist = append(dist, rc)
	}
	return dist, rows.Err()
}

// RecentTransactions returns the latest sales with a suggested action.
func (s *Service) RecentTransactions(ctx context.Context, city string) ([]transaction.Recent, error) {
	return s.transactions.ListRecent(ctx, cityFilter(city), RecentTransaction)
}

// CityStats returns per-city counts and values.
func (s *Service) CityStats(ctx context.Context) (stats []CityStat, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT city,
			COUNT(*),
			AVG(price),
			COALESCE(SUM(price), 0),
			COALESCE(SUM(CASE WHEN status = 'Active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Sold' THEN 1 ELSE 0 END), 0)
		FROM properties
		GROUP BY city
		ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("querying city stats: %w", err)
	}
	defer closeRows(rows, &err)

	stats = []CityStat{}
	for rows.Next() {
		var (
			cs  CityStat
			avg sql.NullFloat64
		)
		if err := rows.Scan(&cs.City, &cs.Count, &avg, &cs.TotalValue, &cs.ActiveCount, &cs.SoldCount); err != nil {
			return nil, fmt.Errorf("scanning city stats: %w", err)
		}
		cs.AvgPrice = roundNull(avg)
		stats = append(stats, cs)
	}
	return stats, rows.Err()
}

// Summary runs the overview, per-city and per-type queries concurrently.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o, err := s.overview(ctx)
		if err != nil {
			return err
		}
		sum.Overview = *o
		return nil
	})
	g.Go(func() error {
		byCity, err := s.byCity(ctx)
		if err != nil {
			return err
		}
		sum.ByCity = byCity
		return nil
	})
	g.Go(func() error {
		byType, err := s.byType(ctx)
		if err != nil {
			return err
		}
		sum.ByType = byType
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *Service) overview(ctx context.Context) (*Overview, error) {
	var (
		o           Overview
		price, sqft sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'Active' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Sold' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0),
			AVG(price),
			AVG(sqft)
		FROM properties`).Scan(&o.TotalProperties, &o.Active, &o.Sold, &o.Pending, &price, &sqft)
	if err != nil {
		return nil, fmt.Errorf("querying overview: %w", err)
	}
	o.AvgPrice = roundNull(price)
	o.AvgSqft = roundNull(sqft)
	return &o, nil
}

func (s *Service) byCity(ctx context.Context) (out []CityAverage, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT city, COUNT(*), AVG(price) FROM properties GROUP BY city ORDER BY city")
	if err != nil {
		return nil, fmt.Errorf("querying city averages: %w", err)
	}
	defer closeRows(rows, &err)

	out = []CityAverage{}
	for rows.Next() {
		var (
			ca  CityAverage
			avg sql.NullFloat64
		)
		if err := rows.Scan(&ca.City, &ca.Count, &avg); err != nil {
			return nil, fmt.Errorf("scanning city average: %w", err)
		}
		ca.AvgPrice = roundNull(avg)
		out = append(out, ca)
	}
	return out, rows.Err()
}

func (s *Service) byType(ctx context.Context) (out []TypeCount, err error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT type, COUNT(*) FROM properties GROUP BY type ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("querying type counts: %w", err)
	}
	defer closeRows(rows, &err)

	out = []TypeCount{}
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func cityFilter(city string) string {
	if city == "all" {
		return ""
	}
	return city
}

func roundNull(v sql.NullFloat64) int64 {
	if !v.Valid {
		return 0
	}
	return decimal.NewFromFloat(v.Float64).Round(0).IntPart()
}

func closeRows(rows *sql.Rows, err *error) {
	if cerr := rows.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing rows: %w", cerr)
	}
}
