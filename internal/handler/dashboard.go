package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"market-mood/internal/domain"

	"github.com/gin-gonic/gin"
)

// dashboardRefreshSecs drives the page's own meta refresh; the server-side
// poller keeps the cache warm on the same cadence.
const dashboardRefreshSecs = 30

var componentTitles = map[string]string{
	"market_momentum_sp500": "S&P 500 Momentum",
	"stock_price_strength":  "Stock Price Strength",
	"stock_price_breadth":   "Stock Price Breadth",
	"put_call_options":      "Put/Call Options",
	"market_volatility_vix": "Market Volatility (VIX)",
	"junk_bond_demand":      "Junk Bond Demand",
	"safe_haven_demand":     "Safe Haven Demand",
	"exposure":              "Mean Equity Exposure",
	"previous_close":        "Previous Close",
	"previous_1_week":       "1 Week Ago",
	"previous_1_month":      "1 Month Ago",
	"previous_1_year":       "1 Year Ago",
}

type componentRow struct {
	Title  string
	Value  float64
	Rating string
}

type gaugeView struct {
	Title      string
	Score      float64
	Label      string
	Color      string
	Demo       bool
	NeedleDeg  float64
	Gradient   template.CSS
	Components []componentRow
	History    []componentRow
	UpdatedAt  string
}

type dashboardPage struct {
	RefreshSecs int
	GeneratedAt string
	Gauges      []gaugeView
}

// newGaugeView maps a reading onto gauge geometry: the half-circle spans
// 180 degrees, so one score point is 1.8 degrees of arc.
func newGaugeView(r *domain.Reading) gaugeView {
	band := domain.BandFor(r.Source, r.Score)

	stops := make([]string, 0, 5)
	for _, b := range domain.Bands(r.Source) {
		stops = append(stops, fmt.Sprintf("%s %.1fdeg %.1fdeg", b.Color, b.Lo*1.8, b.Hi*1.8))
	}
	gradient := template.CSS("conic-gradient(from 270deg at 50% 100%, " + strings.Join(stops, ", ") + ")")

	return gaugeView{
		Title:      r.Source.DisplayName(),
		Score:      r.Score,
		Label:      r.Label,
		Color:      band.Color,
		Demo:       r.IsDemo,
		NeedleDeg:  r.Score*1.8 - 90,
		Gradient:   gradient,
		Components: componentRows(r.Components),
		History:    componentRows(r.History),
		UpdatedAt:  r.Timestamp.UTC().Format(time.RFC3339),
	}
}

func componentRows(components []domain.Component) []componentRow {
	rows := make([]componentRow, 0, len(components))
	for _, comp := range components {
		title, ok := componentTitles[comp.Name]
		if !ok {
			title = comp.Name
		}
		rows = append(rows, componentRow{Title: title, Value: comp.Value, Rating: comp.Rating})
	}
	return rows
}

// Dashboard godoc
// @Summary      Sentiment gauge dashboard
// @Description  Renders both indicator gauges as an HTML page that refreshes itself every 30 seconds
// @Tags         dashboard
// @Produce      html
// @Success      200  {string}  string
// @Failure      500  {string}  string
// @Router       / [get]
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.dashboard")
	defer span.End()

	readings, err := h.sentiment.LatestAll(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "dashboard unavailable: %v", err)
		return
	}

	page := dashboardPage{
		RefreshSecs: dashboardRefreshSecs,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
	}
	for _, r := range readings {
		page.Gauges = append(page.Gauges, newGaugeView(r))
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(c.Writer, page); err != nil {
		c.String(http.StatusInternalServerError, "render dashboard: %v", err)
	}
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSecs}}">
<title>Market Mood</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; background: #11151c; color: #e6e8eb; margin: 0; padding: 2rem; }
h1 { font-weight: 600; }
.grid { display: flex; flex-wrap: wrap; gap: 2rem; }
.card { background: #1a2029; border-radius: 12px; padding: 1.5rem; flex: 1 1 380px; }
.gauge { position: relative; width: 260px; height: 130px; margin: 1rem auto; overflow: hidden; }
.gauge .arc { width: 260px; height: 260px; border-radius: 50%; }
.gauge .hole { position: absolute; left: 40px; top: 40px; width: 180px; height: 180px; border-radius: 50%; background: #1a2029; }
.gauge .needle { position: absolute; left: 50%; bottom: 0; width: 4px; height: 110px; background: #e6e8eb; transform-origin: bottom center; }
.score { font-size: 2.4rem; font-weight: 700; text-align: center; margin: 0.25rem 0 0; }
.label { text-align: center; font-size: 1.1rem; margin: 0; }
.demo { display: inline-block; background: #8e44ad; color: #fff; border-radius: 4px; padding: 0.1rem 0.5rem; font-size: 0.8rem; margin-left: 0.5rem; vertical-align: middle; }
table { width: 100%; border-collapse: collapse; margin-top: 1rem; font-size: 0.9rem; }
td, th { padding: 0.35rem 0.5rem; border-bottom: 1px solid #2a3240; text-align: left; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.footer { margin-top: 2rem; color: #7c8694; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Market Mood</h1>
<div class="grid">
{{range .Gauges}}
  <div class="card">
    <h2>{{.Title}}{{if .Demo}}<span class="demo">DEMO DATA</span>{{end}}</h2>
    <div class="gauge">
      <div class="arc" style="background: {{.Gradient}};"></div>
      <div class="hole"></div>
      <div class="needle" style="transform: rotate({{printf "%.1f" .NeedleDeg}}deg);"></div>
    </div>
    <p class="score" style="color: {{.Color}};">{{printf "%.1f" .Score}}</p>
    <p class="label">{{.Label}}</p>
    {{if .Components}}
    <table>
      <tr><th>Component</th><th>Value</th><th>Rating</th></tr>
      {{range .Components}}<tr><td>{{.Title}}</td><td class="num">{{printf "%.1f" .Value}}</td><td>{{.Rating}}</td></tr>
      {{end}}
    </table>
    {{end}}
    {{if .History}}
    <table>
      <tr><th>History</th><th>Value</th></tr>
      {{range .History}}<tr><td>{{.Title}}</td><td class="num">{{printf "%.1f" .Value}}</td></tr>
      {{end}}
    </table>
    {{end}}
    <div class="footer">Updated {{.UpdatedAt}}</div>
  </div>
{{end}}
</div>
<div class="footer">Generated {{.GeneratedAt}} &middot; auto-refresh every {{.RefreshSecs}}s</div>
</body>
</html>
`))
