// Package renderer formats realized gain results as markdown and HTML reports.
package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/realized"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// GainsMarkdown renders a realized gains report.
func GainsMarkdown(res *realized.Result, currency string) string {
	var b strings.Builder
	win := res.Window
	fmt.Fprintf(&b, "# Realized Gains Report from %s to %s\n\n", win.Range.From, win.Range.To)
	fmt.Fprintf(&b, "Baseline: %s\n\n", win.Baseline)

	renderSummary(&b, res, currency)
	ConditionalBlock(&b, func(w io.Writer) bool { return renderDaily(w, res, currency) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderSymbols(w, res, currency) })
	ConditionalBlock(&b, func(w io.Writer) bool { return renderIssues(w, res) })
	return b.String()
}

// CategoriesMarkdown renders one report per account category, in reporting order.
func CategoriesMarkdown(results map[realized.AccountCategory]*realized.Result, currency string) string {
	var b strings.Builder
	for _, c := range realized.Categories() {
		res, ok := results[c]
		if !ok {
			continue
		}
		md := GainsMarkdown(res, currency)
		// demote headings so that categories sit under a single document
		fmt.Fprintf(&b, "# %s\n\n#%s\n", c, strings.ReplaceAll(md, "\n#", "\n##"))
	}
	return b.String()
}

func renderSummary(w io.Writer, res *realized.Result, currency string) {
	fmt.Fprint(w, "## Summary\n\n")
	fmt.Fprintln(w, "| Category | Realized | Dividends |")
	fmt.Fprintln(w, "|:---|---:|---:|")
	for _, s := range res.Summary {
		fmt.Fprintf(w, "| %s | %s | %s |\n", s.Category, Money(s.TotalRealized, currency), Money(s.TotalDividends, currency))
	}
	fmt.Fprintf(w, "| **%s** | **%s** | **%s** |\n\n",
		"Total",
		Money(res.TotalRealized(), currency),
		Money(res.TotalDividends(), currency),
	)
}

// renderDaily prints the days with a realized amount.
func renderDaily(w io.Writer, res *realized.Result, currency string) bool {
	fmt.Fprint(w, "## Daily Realized\n\n")
	fmt.Fprintln(w, "| Date | Gain | Loss | Net |")
	fmt.Fprintln(w, "|:---|---:|---:|---:|")
	var gain, loss realized.Amount
	rows := 0
	for _, d := range res.Daily {
		if d.IsZero() {
			continue
		}
		rows++
		gain, loss = gain.Add(d.Gain), loss.Add(d.Loss)
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", d.Date, SignedMoney(d.Gain, currency), SignedMoney(d.Loss, currency), SignedMoney(d.Net(), currency))
	}
	fmt.Fprintf(w, "| **%s** | **%s** | **%s** | **%s** |\n\n",
		"Total",
		SignedMoney(gain, currency),
		SignedMoney(loss, currency),
		SignedMoney(gain.Add(loss), currency),
	)
	return rows > 0
}

func renderSymbols(w io.Writer, res *realized.Result, currency string) bool {
	fmt.Fprint(w, "## Realized per Symbol\n\n")
	fmt.Fprintln(w, "| Date | Symbol | Category | Realized |")
	fmt.Fprintln(w, "|:---|:---|:---|---:|")
	for _, s := range res.Symbols {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", s.Date, s.Symbol, s.Category, SignedMoney(s.Amount, currency))
	}
	fmt.Fprintln(w)
	return len(res.Symbols) > 0
}

func renderIssues(w io.Writer, res *realized.Result) bool {
	fmt.Fprint(w, "## Issues\n\n")
	for _, i := range res.Issues {
		fmt.Fprintf(w, "- %s %s", i.Date, i.Kind)
		if i.Category != "" {
			fmt.Fprintf(w, " %s", i.Category)
		}
		if i.Symbol != "" {
			fmt.Fprintf(w, " %s", i.Symbol)
		}
		fmt.Fprintf(w, ": %v\n", i.Err)
	}
	fmt.Fprintln(w)
	return len(res.Issues) > 0
}

// PositionsMarkdown renders the ledger positions at the end of the window.
func PositionsMarkdown(res *realized.Result, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Positions on %s\n\n", res.Window.Range.To)
	for _, c := range realized.Categories() {
		positions, ok := res.Positions[c]
		if !ok {
			continue
		}
		ConditionalBlock(&b, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s\n\n", c)
			fmt.Fprintln(w, "| Symbol | Quantity | Average Cost | Total Cost |")
			fmt.Fprintln(w, "|:---|---:|---:|---:|")
			rows := 0
			for _, p := range positions {
				if p.Quantity.IsZero() {
					continue
				}
				rows++
				fmt.Fprintf(w, "| %s | %s | %s | %s |\n", p.Symbol, p.Quantity, Money(p.AverageCost, currency), Money(p.TotalCost(), currency))
			}
			fmt.Fprintln(w)
			return rows > 0
		})
	}
	return b.String()
}

// HTML converts a markdown report into an HTML fragment.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := converter.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting report to html: %w", err)
	}
	return buf.String(), nil
}
