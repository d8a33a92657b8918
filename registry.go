package canopy

import "sort"

// LayerFactory builds the implementation of a layer kind. base is the
// lifecycle wrapper the implementation will run inside; factories keep it
// to reach DrawSublayer, the theme and the layer options.
type LayerFactory func(base *Layer) (LayerImpl, error)

var layerRegistry = map[string]LayerFactory{}

// RegisterLayer makes a layer kind available to Chart.CreateLayer.
// Registering a kind twice replaces the earlier factory.
func RegisterLayer(kind string, f LayerFactory) {
	if f == nil {
		panic("canopy: RegisterLayer factory is nil")
	}
	layerRegistry[kind] = f
}

// LayerKinds lists registered layer kinds in sorted order.
func LayerKinds() []string {
	kinds := make([]string, 0, len(layerRegistry))
	for k := range layerRegistry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func layerFactory(kind string) (LayerFactory, error) {
	f, ok := layerRegistry[kind]
	if !ok {
		return nil, NewError(ErrCodeConfiguration, "unknown layer kind %q", kind)
	}
	return f, nil
}
