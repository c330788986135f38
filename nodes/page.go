package nodes

import (
	"fmt"

	"eaisdo/model"
)

// PageSizes are the selectable table page sizes; the first is the default.
var PageSizes = []int{20, 50, 100}

type Page struct {
	Items []model.Node
	Page  int
	Size  int
	Pages int
	Total int
	From  int // 1-based, 0 when empty
	To    int
}

// Summary is the table footer line.
func (p Page) Summary() string {
	return fmt.Sprintf("Показано %d-%d из %d записей", p.From, p.To, p.Total)
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.Pages }

// Paginate slices nodes into the requested page. Unknown sizes fall back to
// the default and out-of-range pages are clamped.
func Paginate(nodes []model.Node, page, size int) Page {
	valid := false
	for _, s := range PageSizes {
		if s == size {
			valid = true
		}
	}
	if !valid {
		size = PageSizes[0]
	}
	total := len(nodes)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	p := Page{Items: nodes[start:end], Page: page, Size: size, Pages: pages, Total: total}
	if total > 0 {
		p.From, p.To = start+1, end
	}
	return p
}

// Page paginates the current filtered view.
func (s *Screen) Page(page, size int) Page {
	return Paginate(s.Filtered(), page, size)
}
