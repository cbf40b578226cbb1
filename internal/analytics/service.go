package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	dayLayout        = "2006-01-02"
	topListingsLimit = 5
	averagePrecision = 16
)

type shopLookup interface {
	ForOwner(ctx context.Context, ownerID uuid.UUID) (*models.TackShop, error)
}

type Overview struct {
	TotalListings  int64           `json:"totalListings"`
	ActiveListings int64           `json:"activeListings"`
	SoldCount      int64           `json:"soldCount"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	AveragePrice   decimal.Decimal `json:"averagePrice"`
	TotalViews     int64           `json:"totalViews"`
	SavedCount     int64           `json:"savedCount"`
}

type DayViews struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

type CategorySales struct {
	Name    string          `json:"name"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopListing struct {
	ID     uuid.UUID           `json:"id"`
	Title  string              `json:"title"`
	Price  decimal.Decimal     `json:"price"`
	Views  int64               `json:"views"`
	Saves  int64               `json:"saves"`
	Status enums.ListingStatus `json:"status"`
}

// Dashboard is the shop analytics payload for one period.
type Dashboard struct {
	Overview        Overview        `json:"overview"`
	ViewsOverTime   []DayViews      `json:"viewsOverTime"`
	SalesByCategory []CategorySales `json:"salesByCategory"`
	TopListings     []TopListing    `json:"topListings"`
}

// DayRow is one line of the CSV export.
type DayRow struct {
	Date       string
	Views      int64
	Sales      int64
	Revenue    decimal.Decimal
	SavedCount int64
}

type Service interface {
	Dashboard(ctx context.Context, ownerID uuid.UUID, period enums.AnalyticsPeriod) (*Dashboard, error)
	Export(ctx context.Context, ownerID uuid.UUID, period enums.AnalyticsPeriod) ([]DayRow, error)
}

type ServiceParams struct {
	Repo  *Repository
	Shops shopLookup
}

type service struct {
	repo  *Repository
	shops shopLookup
	now   func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analytics repository required")
	}
	if params.Shops == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shop lookup required")
	}
	return &service{
		repo:  params.Repo,
		shops: params.Shops,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Dashboard runs the eight aggregates concurrently; the first failure cancels the rest.
func (s *service) Dashboard(ctx context.Context, ownerID uuid.UUID, period enums.AnalyticsPeriod) (*Dashboard, error) {
	shop, err := s.shops.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	start := period.StartDate(s.now())
	active := enums.ListingStatusActive

	var (
		total, activeCount, views, saves int64
		sold                             []SoldRow
		viewRows                         []ViewRow
		top                              []TopRow
		byCategory                       []CategorySales
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.CountListings(gctx, shop.ID, nil)
		return err
	})
	g.Go(func() (err error) {
		activeCount, err = s.repo.CountListings(gctx, shop.ID, &active)
		return err
	})
	g.Go(func() (err error) {
		sold, err = s.repo.SoldSince(gctx, shop.ID, start)
		return err
	})
	g.Go(func() (err error) {
		views, err = s.repo.TotalViews(gctx, shop.ID, start)
		return err
	})
	g.Go(func() (err error) {
		saves, err = s.repo.SavesSince(gctx, shop.ID, start)
		return err
	})
	g.Go(func() (err error) {
		viewRows, err = s.repo.ViewRows(gctx, shop.ID, start)
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.SoldSince(gctx, shop.ID, start)
		if err != nil {
			return err
		}
		byCategory = salesByCategory(rows)
		return nil
	})
	g.Go(func() (err error) {
		top, err = s.repo.TopListings(gctx, shop.ID, start, topListingsLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate shop analytics")
	}

	totalSales := decimal.Zero
	for _, row := range sold {
		totalSales = totalSales.Add(row.Price)
	}
	soldCount := int64(len(sold))
	average := decimal.Zero
	if soldCount > 0 {
		average = totalSales.DivRound(decimal.NewFromInt(soldCount), averagePrecision)
	}

	topListings := make([]TopListing, 0, len(top))
	for _, row := range top {
		topListings = append(topListings, TopListing{
			ID:     row.ID,
			Title:  row.Title,
			Price:  row.Price,
			Views:  row.Views,
			Saves:  row.Saves,
			Status: row.Status,
		})
	}

	return &Dashboard{
		Overview: Overview{
			TotalListings:  total,
			ActiveListings: activeCount,
			SoldCount:      soldCount,
			TotalSales:     totalSales,
			AveragePrice:   average,
			TotalViews:     views,
			SavedCount:     saves,
		},
		ViewsOverTime:   viewsByDay(viewRows),
		SalesByCategory: byCategory,
		TopListings:     topListings,
	}, nil
}

// Export builds one row per day that had views, sales or saves.
func (s *service) Export(ctx context.Context, ownerID uuid.UUID, period enums.AnalyticsPeriod) ([]DayRow, error) {
	shop, err := s.shops.ForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	start := period.StartDate(s.now())

	var (
		viewRows  []ViewRow
		sold      []SoldRow
		saveTimes []time.Time
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		viewRows, err = s.repo.ViewRows(gctx, shop.ID, start)
		return err
	})
	g.Go(func() (err error) {
		sold, err = s.repo.SoldSince(gctx, shop.ID, start)
		return err
	})
	g.Go(func() (err error) {
		saveTimes, err = s.repo.SaveTimes(gctx, shop.ID, start)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate analytics export")
	}

	days := map[string]*DayRow{}
	day := func(t time.Time) *DayRow {
		key := t.UTC().Format(dayLayout)
		row, ok := days[key]
		if !ok {
			row = &DayRow{Date: key, Revenue: decimal.Zero}
			days[key] = row
		}
		return row
	}
	for _, v := range viewRows {
		if v.Views > 0 {
			day(v.CreatedAt).Views += v.Views
		}
	}
	for _, sale := range sold {
		row := day(sale.UpdatedAt)
		row.Sales++
		row.Revenue = row.Revenue.Add(sale.Price)
	}
	for _, t := range saveTimes {
		day(t).SavedCount++
	}

	out := make([]DayRow, 0, len(days))
	for _, row := range days {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func viewsByDay(rows []ViewRow) []DayViews {
	totals := map[string]int64{}
	for _, row := range rows {
		totals[row.CreatedAt.UTC().Format(dayLayout)] += row.Views
	}
	out := make([]DayViews, 0, len(totals))
	for date, views := range totals {
		out = append(out, DayViews{Date: date, Views: views})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func salesByCategory(rows []SoldRow) []CategorySales {
	byName := map[string]*CategorySales{}
	for _, row := range rows {
		entry, ok := byName[row.Category]
		if !ok {
			entry = &CategorySales{Name: row.Category, Revenue: decimal.Zero}
			byName[row.Category] = entry
		}
		entry.Count++
		entry.Revenue = entry.Revenue.Add(row.Price)
	}
	out := make([]CategorySales, 0, len(byName))
	for _, entry := range byName {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
