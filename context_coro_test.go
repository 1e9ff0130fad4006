//go:build !purego && !race

package fiber

func init() {
	backends = append(backends, backend{name: "coro", factory: newCoroContext})
}
