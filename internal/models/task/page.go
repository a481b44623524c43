package task

import "math"

type Page struct {
	Items    []*Task `json:"items"`
	Page     int     `json:"page"`
	PerPage  int     `json:"per_page"`
	Total    int     `json:"total"`
	LastPage int     `json:"last_page"`
}

func NewPage(items []*Task, page, perPage, total int) *Page {
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = (total + perPage - 1) / perPage
	}
	if items == nil {
		items = []*Task{}
	}
	return &Page{
		Items:    items,
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: lastPage,
	}
}

func (p *Page) NextPage() (int, bool) {
	if p.Page >= p.LastPage {
		return 0, false
	}
	return p.Page + 1, true
}

// Offset смещение для offset-пагинации, страницы нумеруются с 1.
// При переполнении возвращает math.MaxInt: такая страница заведомо пуста
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
