package hostfuncs

// Bundle is a pre-configured set of related host functions.
// Bundles allow registering multiple functions at once.
type Bundle interface {
	Functions() []Function
}

type staticBundle struct {
	functions []Function
}

func (b *staticBundle) Functions() []Function {
	return b.functions
}

// NewBundle returns a bundle of the given functions.
func NewBundle(fns ...Function) Bundle {
	return &staticBundle{functions: fns}
}

type compositeBundle struct {
	bundles []Bundle
}

func (b *compositeBundle) Functions() []Function {
	var result []Function
	for _, bundle := range b.bundles {
		result = append(result, bundle.Functions()...)
	}
	return result
}

// CombineBundles returns a bundle with the functions of every bundle.
// Duplicate names surface as a registry error.
func CombineBundles(bundles ...Bundle) Bundle {
	return &compositeBundle{bundles: bundles}
}

// WithBundle registers all functions from a bundle.
func WithBundle(bundle Bundle) RegistryOption {
	return func(b *registryBuilder) {
		for _, fn := range bundle.Functions() {
			if err := b.addFunction(fn); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
