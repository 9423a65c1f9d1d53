package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/indicator"
)

// List sizes
const (
	TopMoversLimit = 20
	DividendsLimit = 100
	HeatmapLimit   = 50
	sectorPicks    = 3
)

// IndexEntry is one index level in the market overview
type IndexEntry struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Level     float64 `json:"level"`
	ChangePct float64 `json:"changePct"`
}

// FXEntry is one currency pair rate in the market overview
type FXEntry struct {
	Pair      string  `json:"pair"`
	Rate      float64 `json:"rate"`
	ChangePct float64 `json:"changePct"`
}

// HeatmapEntry is one heatmap tile, sized by traded volume
type HeatmapEntry struct {
	Symbol    string  `json:"symbol"`
	Sector    string  `json:"sector"`
	ChangePct float64 `json:"changePct"`
	Weight    float64 `json:"weight"`
	LastClose float64 `json:"lastClose"`
}

// MarketOverview is markets/overview.json
type MarketOverview struct {
	LastUpdated string         `json:"lastUpdated"`
	RunID       string         `json:"runId"`
	Indices     []IndexEntry   `json:"indices"`
	FX          []FXEntry      `json:"fx"`
	Heatmap     []HeatmapEntry `json:"heatmap"`
}

// Sector summarizes one sector's performance with its leaders and laggards
type Sector struct {
	Name          string   `json:"name"`
	Theme         string   `json:"theme"`
	Performance1D float64  `json:"performance1d"`
	Performance1M float64  `json:"performance1m"`
	Leaders       []string `json:"leaders"`
	Laggards      []string `json:"laggards"`
	Tags          []string `json:"tags"`
}

// SectorOverview is sectors/overview.json
type SectorOverview struct {
	LastUpdated string   `json:"lastUpdated"`
	RunID       string   `json:"runId"`
	Data        []Sector `json:"data"`
}

// Mover is a ranked top gainer
type Mover struct {
	Rank      int     `json:"rank"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	ChangePct float64 `json:"changePct"`
	LastPrice float64 `json:"lastPrice"`
}

// Dividend is a ranked dividend payer
type Dividend struct {
	Rank          int     `json:"rank"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Exchange      string  `json:"exchange"`
	DividendYield float64 `json:"dividendYield"`
	LastPrice     float64 `json:"lastPrice"`
}

// Rankings is rankings/top_lists.json
type Rankings struct {
	LastUpdated string     `json:"lastUpdated"`
	RunID       string     `json:"runId"`
	Gainers     []Mover    `json:"gainers"`
	Dividends   []Dividend `json:"dividends"`
}

// RankingList is a single ranking published on its own
type RankingList[T any] struct {
	LastUpdated string `json:"lastUpdated"`
	RunID       string `json:"runId"`
	Items       []T    `json:"items"`
}

// SymbolEntry is one row of symbols/index.json
type SymbolEntry struct {
	ID        int       `json:"id"`
	Symbol    string    `json:"symbol"`
	Exchange  string    `json:"exchange"`
	Currency  string    `json:"currency"`
	TZ        string    `json:"tz"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector"`
	UpdatedAt time.Time `json:"updatedAt"`
	Country   string    `json:"country"`
}

// Aggregates are the cross-symbol documents of one run
type Aggregates struct {
	Market       MarketOverview
	Sectors      SectorOverview
	Rankings     Rankings
	TopMovers    RankingList[Mover]
	Dividends    RankingList[Dividend]
	SymbolsIndex []SymbolEntry
}

// Build derives every aggregate from the successful snapshots, kept in
// universe order. indices and fx may be empty.
func Build(snapshots []*Snapshot, indices, fx []Quote, asOf time.Time, runID string) (*Aggregates, error) {
	if len(snapshots) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no symbol data could be generated"))
	}

	stamp := asOf.UTC().Format(time.RFC3339)
	rankings := BuildRankings(snapshots)
	rankings.LastUpdated, rankings.RunID = stamp, runID

	market := BuildMarketOverview(snapshots, indices, fx)
	market.LastUpdated, market.RunID = stamp, runID

	return &Aggregates{
		Market:       market,
		Sectors:      SectorOverview{LastUpdated: stamp, RunID: runID, Data: BuildSectors(snapshots)},
		Rankings:     rankings,
		TopMovers:    RankingList[Mover]{LastUpdated: stamp, RunID: runID, Items: rankings.Gainers},
		Dividends:    RankingList[Dividend]{LastUpdated: stamp, RunID: runID, Items: rankings.Dividends},
		SymbolsIndex: BuildSymbolsIndex(snapshots),
	}, nil
}

// sortedBy returns a copy ordered by key descending, ties keeping input order
func sortedBy(snapshots []*Snapshot, key func(*Snapshot) float64) []*Snapshot {
	out := make([]*Snapshot, len(snapshots))
	copy(out, snapshots)
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	return out
}

// BuildRankings ranks gainers by 1-day change and payers by dividend yield
func BuildRankings(snapshots []*Snapshot) Rankings {
	gainers := indicator.TakeFirst(sortedBy(snapshots, func(s *Snapshot) float64 { return s.ChangePct }), TopMoversLimit)
	payers := indicator.TakeFirst(sortedBy(snapshots, func(s *Snapshot) float64 { return s.DividendYield }), DividendsLimit)

	r := Rankings{
		Gainers:   make([]Mover, len(gainers)),
		Dividends: make([]Dividend, len(payers)),
	}
	for i, s := range gainers {
		r.Gainers[i] = Mover{
			Rank:      i + 1,
			Symbol:    s.Meta.Symbol,
			Name:      s.Meta.Name,
			Exchange:  s.Meta.Exchange,
			ChangePct: s.ChangePct,
			LastPrice: s.Indicators.LastClose,
		}
	}
	for i, s := range payers {
		r.Dividends[i] = Dividend{
			Rank:          i + 1,
			Symbol:        s.Meta.Symbol,
			Name:          s.Meta.Name,
			Exchange:      s.Meta.Exchange,
			DividendYield: s.DividendYield,
			LastPrice:     s.Indicators.LastClose,
		}
	}
	return r
}

// BuildSectors groups snapshots by sector in first-seen order
func BuildSectors(snapshots []*Snapshot) []Sector {
	var order []string
	groups := make(map[string][]*Snapshot)
	for _, s := range snapshots {
		name := s.Meta.Sector
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], s)
	}

	sectors := make([]Sector, 0, len(order))
	for _, name := range order {
		members := groups[name]
		daily := make([]float64, len(members))
		monthly := make([]float64, len(members))
		for i, s := range members {
			daily[i] = s.ChangePct
			monthly[i] = s.Change1M
		}

		ranked := sortedBy(members, func(s *Snapshot) float64 { return s.ChangePct })
		sectors = append(sectors, Sector{
			Name:          name,
			Theme:         name,
			Performance1D: indicator.Mean(daily),
			Performance1M: indicator.Mean(monthly),
			Leaders:       symbols(indicator.TakeFirst(ranked, sectorPicks)),
			Laggards:      symbols(indicator.TakeLast(ranked, sectorPicks)),
			Tags:          []string{members[0].Meta.Country},
		})
	}
	return sectors
}

func symbols(snapshots []*Snapshot) []string {
	out := make([]string, len(snapshots))
	for i, s := range snapshots {
		out[i] = s.Meta.Symbol
	}
	return out
}

// HeatmapWeight sizes a heatmap tile from traded volume
func HeatmapWeight(volume float64) float64 {
	w := math.Log10(volume + 1)
	return max(1, w*w)
}

// BuildMarketOverview assembles indices, FX and the first HeatmapLimit symbols
func BuildMarketOverview(snapshots []*Snapshot, indices, fx []Quote) MarketOverview {
	m := MarketOverview{
		Indices: make([]IndexEntry, len(indices)),
		FX:      make([]FXEntry, len(fx)),
	}
	for i, q := range indices {
		m.Indices[i] = IndexEntry{Symbol: q.Symbol, Name: q.Name, Level: q.LastClose, ChangePct: q.ChangePct}
	}
	for i, q := range fx {
		m.FX[i] = FXEntry{Pair: q.Symbol, Rate: q.LastClose, ChangePct: q.ChangePct}
	}

	tiles := indicator.TakeFirst(snapshots, HeatmapLimit)
	m.Heatmap = make([]HeatmapEntry, len(tiles))
	for i, s := range tiles {
		m.Heatmap[i] = HeatmapEntry{
			Symbol:    s.Meta.Symbol,
			Sector:    s.Meta.Sector,
			ChangePct: s.ChangePct,
			Weight:    HeatmapWeight(s.Latest.Volume),
			LastClose: s.Latest.Close,
		}
	}
	return m
}

// BuildSymbolsIndex lists every snapshot with a 1-based id
func BuildSymbolsIndex(snapshots []*Snapshot) []SymbolEntry {
	entries := make([]SymbolEntry, len(snapshots))
	for i, s := range snapshots {
		entries[i] = SymbolEntry{
			ID:        i + 1,
			Symbol:    s.Meta.Symbol,
			Exchange:  s.Meta.Exchange,
			Currency:  s.Meta.Currency,
			TZ:        s.Meta.TZ,
			Name:      s.Meta.Name,
			Sector:    s.Meta.Sector,
			UpdatedAt: s.Latest.Time,
			Country:   s.Meta.Country,
		}
	}
	return entries
}
