// Package format 把数值和时间转换成界面上展示的字符串，均为纯函数。
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Tone 盈亏展示色调
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// round 四舍五入（远离零），避免二进制浮点带来的 x.xx5 误差
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Currency 美元金额，两位小数带千分位，例如 $1,234.50
func Currency(amount float64) string {
	s := humanize.FormatFloat("#,###.##", math.Abs(round(amount, 2)))
	if amount < 0 && round(amount, 2) != 0 {
		return "-$" + s
	}
	return "$" + s
}

var compactUnits = []struct {
	suffix string
	scale  float64
}{
	{"T", 1e12},
	{"B", 1e9},
	{"M", 1e6},
	{"K", 1e3},
}

// compact 紧凑写法，保留一位小数：21000 -> 21.0K，1560000 -> 1.6M
func compact(v float64) string {
	abs := math.Abs(v)
	sign := ""
	if v < 0 {
		sign = "-"
	}
	for i, u := range compactUnits {
		if abs < u.scale {
			continue
		}
		scaled := round(abs/u.scale, 1)
		// 999.95K 进位后应显示为 1.0M
		if scaled >= 1000 && i > 0 {
			up := compactUnits[i-1]
			return sign + fixed(round(abs/up.scale, 1), 1) + up.suffix
		}
		return sign + fixed(scaled, 1) + u.suffix
	}
	scaled := round(abs, 1)
	if scaled >= 1000 {
		return sign + "1.0K"
	}
	return sign + fixed(scaled, 1)
}

// CompactCurrency 例如 $1.2K、$3.4M
func CompactCurrency(amount float64) string {
	s := compact(amount)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

// CompactNumber 例如 1.2K、3.4M
func CompactNumber(n float64) string {
	return compact(n)
}

// Probability 0-1 的概率转百分比，一位小数
func Probability(p float64) string {
	return decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// Percentage 已是百分数的值，指定小数位
func Percentage(value float64, decimals int) string {
	return fixed(value, int32(decimals)) + "%"
}

// Price 订单簿价格，默认调用方传 4 位
func Price(price float64, decimals int) string {
	return fixed(price, int32(decimals))
}

// PnLResult 盈亏展示结果
type PnLResult struct {
	Formatted string
	Tone      Tone
}

// PnL 带正负号的金额以及色调
func PnL(pnl float64) PnLResult {
	formatted := Currency(math.Abs(pnl))
	switch {
	case pnl > 0:
		return PnLResult{Formatted: "+" + formatted, Tone: ToneSuccess}
	case pnl < 0:
		return PnLResult{Formatted: "-" + formatted, Tone: ToneDanger}
	default:
		return PnLResult{Formatted: formatted, Tone: ToneNeutral}
	}
}

var relativeUnits = []struct {
	name    string
	seconds int64
	prev    string
	next    string
}{
	{"year", 31536000, "last year", "next year"},
	{"month", 2592000, "last month", "next month"},
	{"day", 86400, "yesterday", "tomorrow"},
	{"hour", 3600, "", ""},
	{"minute", 60, "", ""},
	{"second", 1, "", ""},
}

// RelativeTime 相对时间，例如 "2 hours ago"、"in 3 days"、"yesterday"
func RelativeTime(t, now time.Time) string {
	diff := int64(math.Floor(now.Sub(t).Seconds()))
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	for _, u := range relativeUnits {
		if abs < u.seconds {
			continue
		}
		// 向下取整：未来 90 秒显示为 in 2 minutes
		value := int64(math.Floor(float64(diff) / float64(u.seconds)))
		return relativePhrase(-value, u.name, u.prev, u.next)
	}
	return "now"
}

func relativePhrase(n int64, unit, prev, next string) string {
	switch {
	case n == -1 && prev != "":
		return prev
	case n == 1 && next != "":
		return next
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	label := unit
	if abs != 1 {
		label += "s"
	}
	if n < 0 {
		return fmt.Sprintf("%s %s ago", humanize.Comma(abs), label)
	}
	return fmt.Sprintf("in %s %s", humanize.Comma(abs), label)
}

// Date 例如 "Dec 31, 2024, 11:59 PM"
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006, 03:04 PM")
}

// Truncate 超长文本截断并追加省略号，按字符计数
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(runes[:max(maxLength, 0)])
	}
	return string(runes[:maxLength-3]) + "..."
}

// Address 钱包地址缩写，例如 0x1234...5678；合法地址先做 EIP-55 校验和
func Address(address string) string {
	if len(address) < 10 {
		return address
	}
	if common.IsHexAddress(address) {
		address = common.HexToAddress(address).Hex()
	}
	return address[:6] + "..." + address[len(address)-4:]
}
