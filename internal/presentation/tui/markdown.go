package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/wizard"
)

// StepMarkdown describes the active step of v. directory lists the stores offered on step 3.
func StepMarkdown(v wizard.View, directory []domain.StoreSelection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", v.Title)

	switch v.Step {
	case domain.StepName:
		name := v.PromotionName
		if name == "" {
			name = "_(empty)_"
		}
		fmt.Fprintf(&b, "**Promotion name:** %s\n\n", name)
		b.WriteString("Type a name and press enter.\n")
	case domain.StepProducts:
		writeCatalog(&b, v)
	case domain.StepStores:
		writeStores(&b, v, directory)
	}

	if v.ValidationMessage != "" {
		fmt.Fprintf(&b, "\n> **%s**\n", v.ValidationMessage)
	}

	b.WriteString("\n---\n\n")
	b.WriteString(help(v))
	return b.String()
}

func writeCatalog(b *strings.Builder, v wizard.View) {
	fmt.Fprintf(b, "**Promotion:** %s\n\n", v.PromotionName)

	c := v.Catalog
	if c == nil {
		return
	}
	if c.Error != "" {
		fmt.Fprintf(b, "> %s\n\n", c.Error)
	}
	if len(c.Page.Items) == 0 {
		b.WriteString("_No products to show._\n")
		return
	}

	b.WriteString("| | ID | Product | Category | Discount |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, item := range c.Page.Items {
		mark, discount := "[ ]", "-"
		if item.IsSelected {
			mark = "[x]"
			discount = formatPercent(item.DiscountPercent)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", mark, item.ID, cell(item.Name), cell(item.DisplayCategory()), discount)
	}
	fmt.Fprintf(b, "\n_%s (page %d/%d), %d selected_\n", c.PageInfo, c.Page.PageNumber, c.TotalPages, c.SelectedCount)
}

func writeStores(b *strings.Builder, v wizard.View, directory []domain.StoreSelection) {
	fmt.Fprintf(b, "**Promotion:** %s (%d product(s))\n\n", v.PromotionName, len(v.State.Products))

	chosen := func(id string) bool {
		return slices.ContainsFunc(v.Stores, func(s domain.StoreSelection) bool { return s.StoreID == id })
	}

	listed := directory
	for _, s := range v.Stores {
		if !slices.ContainsFunc(listed, func(d domain.StoreSelection) bool { return d.StoreID == s.StoreID }) {
			listed = append(slices.Clone(listed), s)
		}
	}
	if len(listed) == 0 {
		b.WriteString("_No stores available._\n")
		return
	}

	b.WriteString("| | ID | Store | Group |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, s := range listed {
		mark := "[ ]"
		if chosen(s.StoreID) {
			mark = "[x]"
		}
		group := s.LocationGroup
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", mark, s.StoreID, cell(s.StoreName), cell(group))
	}
}

func help(v wizard.View) string {
	var cmds []string
	switch v.Step {
	case domain.StepProducts:
		cmds = append(cmds, "`t <id>` toggle", "`d <id> <percent>` discount", "`n`/`p` page")
	case domain.StepStores:
		cmds = append(cmds, "`s <id>` toggle store")
	}
	if v.ShowNext {
		cmds = append(cmds, "`next`")
	}
	if v.ShowPrevious {
		cmds = append(cmds, "`back`")
	}
	if v.ShowFinish {
		cmds = append(cmds, "`submit`")
	}
	cmds = append(cmds, "`quit`")
	return "Commands: " + strings.Join(cmds, ", ") + "\n"
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// cell escapes pipes so values cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
