package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/simp-lee/catalog/internal/domain"
)

const (
	ascIndicator  = "▲"
	descIndicator = "▼"
)

// RenderTable writes page as an aligned text table. The column the filters
// sort by carries an order indicator; a footer reports the page position.
func RenderTable(w io.Writer, page *domain.ProductPage, f Filters) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "ID\t%s\t%s\t%s\tDESCRIPTION\n",
		header("NAME", string(domain.SortByName), f),
		header("PRICE", string(domain.SortByPrice), f),
		header("CREATED", string(domain.SortByCreatedAt), f),
	)

	if page == nil || len(page.Products) == 0 {
		fmt.Fprintln(tw, "\t(no products)\t\t\t")
	} else {
		for _, p := range page.Products {
			fmt.Fprintf(tw, "%d\t%s\t$%s\t%s\t%s\n",
				p.ID, p.Name, p.Price.StringFixed(2), p.CreatedAt.Format("2006-01-02 15:04"), p.Description)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pageNo, totalPages, total := 1, 1, int64(0)
	if page != nil {
		pageNo, totalPages, total = page.Page, page.TotalPages, page.Total
	}
	_, err := fmt.Fprintf(w, "Page %d of %d (%d total)\n", pageNo, totalPages, total)
	return err
}

func header(label, field string, f Filters) string {
	if f.Sort != field {
		return label
	}
	if f.Order == string(domain.SortDesc) {
		return label + " " + descIndicator
	}
	return label + " " + ascIndicator
}
