package pkg

import (
	"fmt"

	appErrors "Caixinha/internal/errors"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Sort é a ordem pedida pelo cliente. Só os valores abaixo chegam ao SQL.
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

var sortDirections = map[Sort]string{
	SortNewest: "DESC",
	SortOldest: "ASC",
}

func ParseSort(raw string) (Sort, bool) {
	sort := Sort(raw)
	_, ok := sortDirections[sort]
	return sort, ok
}

type PaginationParams struct {
	Page  int
	Limit int
	Sort  Sort
}

func (p *PaginationParams) Offset() int {
	if p == nil {
		return 0
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.Limit
}

func (p *PaginationParams) Normalize() {
	if p == nil {
		return
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if _, ok := sortDirections[p.Sort]; !ok {
		p.Sort = ""
	}
}

func NormalizePagination(p *PaginationParams) *PaginationParams {
	if p == nil {
		return &PaginationParams{Page: 1, Limit: DefaultLimit}
	}
	p.Normalize()
	return p
}

// OrderClause monta o ORDER BY por created_at da tabela, com o id ULID como
// desempate para que páginas consecutivas não repitam nem pulem linhas.
func (p *PaginationParams) OrderClause(table string, fallback Sort) string {
	sort := fallback
	if p != nil && p.Sort != "" {
		sort = p.Sort
	}
	direction, ok := sortDirections[sort]
	if !ok {
		direction = sortDirections[SortNewest]
	}
	return fmt.Sprintf("%[1]s.created_at %[2]s, %[1]s.id %[2]s", table, direction)
}

type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
}

func NewPaginatedResponse[T any](data []T, page, limit int, total int64) *PaginatedResponse[T] {
	if limit < 1 {
		limit = DefaultLimit
	}
	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return &PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Paginate conta e busca uma página de table convertendo cada linha D no
// modelo de domínio T. Toda falha sai como AppError, DATABASE_ERROR quando
// não vier classificada.
func Paginate[T any, D any](
	query *gorm.DB,
	table string,
	pagination *PaginationParams,
	fallback Sort,
	converter func(*D) (*T, error),
) ([]*T, int64, error) {
	pagination = NormalizePagination(pagination)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	if total == 0 {
		return []*T{}, 0, nil
	}

	var rows []D
	err := query.Order(pagination.OrderClause(table, fallback)).
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, appErrors.NewDatabaseError(err)
	}

	out := make([]*T, 0, len(rows))
	for i := range rows {
		item, err := converter(&rows[i])
		if err != nil {
			if _, ok := appErrors.AsAppError(err); ok {
				return nil, 0, err
			}
			return nil, 0, appErrors.NewDatabaseError(err)
		}
		out = append(out, item)
	}

	return out, total, nil
}
