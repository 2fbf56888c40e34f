package middleware

import "github.com/danielgtaylor/huma/v2"

// Container накапливает middleware для очередного обработчика.
type Container struct {
	middlewares huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw func(huma.Context, func(huma.Context))) {
	c.middlewares = append(c.middlewares, mw)
}

// GetAllAndClear отдает накопленный набор и очищает контейнер.
func (c *Container) GetAllAndClear() huma.Middlewares {
	mws := c.middlewares
	c.middlewares = nil
	return mws
}
