package zoo

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ServiceDirectory maps processing service names to base URLs.
// Machines reference services by name so the same serialized graph can be
// served against different deployments.
type ServiceDirectory struct {
	mu       sync.RWMutex
	services map[string]string
}

// NewServiceDirectory creates an empty directory.
func NewServiceDirectory() *ServiceDirectory {
	return &ServiceDirectory{services: make(map[string]string)}
}

// Set binds name to url, replacing any previous binding.
func (d *ServiceDirectory) Set(name, url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services[name] = strings.TrimRight(url, "/")
}

// Lookup returns the URL bound to name.
func (d *ServiceDirectory) Lookup(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	url, ok := d.services[name]
	if !ok {
		return "", fmt.Errorf("processing service %q is not configured", name)
	}
	return url, nil
}

// Names returns the configured service names in sorted order.
func (d *ServiceDirectory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.services))
	for name := range d.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
