package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"cryptiq/pkg/common"
	"cryptiq/pkg/utils"

	"github.com/dustin/go-humanize"
)

// FormatUSD renders an amount as "$1,234.56".
func FormatUSD(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatPriceAlert builds the message sent when a price alert fires.
func FormatPriceAlert(symbol string, current, target float64, at time.Time) string {
	return fmt.Sprintf("Alert: %s has reached %s (target: %s)!\nTime: %s%s",
		strings.ToUpper(symbol),
		FormatUSD(current),
		FormatUSD(target),
		utils.PrettyDate(at),
		common.DISCLAIMER,
	)
}

// NewsItem is a headline rendered by FormatNews.
type NewsItem struct {
	Title string
	URL   string
}

// FormatNews renders headlines as an HTML list for ParseMode HTML.
func FormatNews(items []NewsItem) string {
	if len(items) == 0 {
		return "No news found." + common.DISCLAIMER
	}
	var sb strings.Builder
	sb.WriteString("📰 Latest Crypto News:\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("\n• <a href=\"%s\">%s</a>", html.EscapeString(item.URL), html.EscapeString(item.Title)))
	}
	sb.WriteString(common.DISCLAIMER)
	return sb.String()
}
