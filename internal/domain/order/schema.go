package order

import "github.com/danielgtaylor/huma/v2"

// Schema описывает ID для OpenAPI: число для серверных id,
// строка для временных.
func (ID) Schema(_ huma.Registry) *huma.Schema {
	// У huma нет константы для null-типа, только строковый литерал.
	return &huma.Schema{
		OneOf: []*huma.Schema{
			{Type: huma.TypeInteger},
			{Type: huma.TypeString},
			{Type: "null"},
		},
	}
}
