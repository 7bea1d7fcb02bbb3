package domain

import (
	"errors"
	"fmt"
)

// Registry is the fixed set of devices the controller can address.
type Registry struct {
	primary   DeviceRef
	auxiliary []DeviceRef
	byName    map[string]DeviceRef
}

func NewRegistry(primary DeviceRef, auxiliary ...DeviceRef) (*Registry, error) {
	if primary.ID == "" {
		return nil, errors.New("primary device id is required")
	}
	if primary.Name == "" {
		primary.Name = "primary"
	}
	primary.Kind = DeviceKindPrimary

	r := &Registry{
		primary:   primary,
		auxiliary: make([]DeviceRef, 0, len(auxiliary)),
		byName:    map[string]DeviceRef{primary.Name: primary},
	}

	for _, ref := range auxiliary {
		if ref.Name == "" || ref.ID == "" {
			return nil, fmt.Errorf("auxiliary device %q: name and id are required", ref.Name)
		}
		if _, exists := r.byName[ref.Name]; exists {
			return nil, fmt.Errorf("duplicate device name %q", ref.Name)
		}
		if ref.Label == "" {
			ref.Label = ref.Name
		}
		ref.Kind = DeviceKindAuxiliary
		r.auxiliary = append(r.auxiliary, ref)
		r.byName[ref.Name] = ref
	}

	return r, nil
}

func (r *Registry) Primary() DeviceRef {
	return r.primary
}

func (r *Registry) Auxiliary() []DeviceRef {
	result := make([]DeviceRef, len(r.auxiliary))
	copy(result, r.auxiliary)
	return result
}

// Lookup resolves a logical name. Matching is exact and case-sensitive.
func (r *Registry) Lookup(name string) (DeviceRef, bool) {
	ref, ok := r.byName[name]
	return ref, ok
}
