package gateway

import (
	"golang.org/x/sync/singleflight"
)

type group struct {
	g singleflight.Group
}

func (g *group) Do(key string, fn func() (interface{}, error)) (interface{}, error, bool) {
	v, err, shared := g.g.Do(key, fn)
	return v, err, shared
}
