package zoo

import (
	"net/http"

	"github.com/aretw0/wca/pkg/callable"
)

// Class names of the built-in callables, as written to the wire.
const (
	AlwaysName         = "Always"
	HasObjectClassName = "HasObjectClass"
	DummyName          = "DummyCallable"
	EmptyName          = "Empty"
	ImageInfoName      = "ImageInfo"
	HTTPDetectorName   = "HTTPDetector"
)

type options struct {
	services *ServiceDirectory
	client   *http.Client
}

// Option configures the callables installed by Register.
type Option func(*options)

// WithServices sets the directory used to resolve named processing services.
func WithServices(dir *ServiceDirectory) Option {
	return func(o *options) {
		o.services = dir
	}
}

// WithHTTPClient sets the client used by HTTP backed processors.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// Register installs every built-in callable into regs.
func Register(regs *callable.Registries, opts ...Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.services == nil {
		o.services = NewServiceDirectory()
	}
	if o.client == nil {
		o.client = NewHTTPClient()
	}

	regs.Predicates.Register(AlwaysName, newAlways)
	regs.Predicates.Register(HasObjectClassName, newHasObjectClass)

	regs.Processors.Register(DummyName, newDummy)
	regs.Processors.Register(EmptyName, newEmpty)
	regs.Processors.Register(ImageInfoName, newImageInfo)
	regs.Processors.Register(HTTPDetectorName, func(args callable.Args) (callable.Processor, error) {
		return newHTTPDetector(args, o.services, o.client)
	})
}

// Default returns fresh registries with the built-in callables installed.
func Default(opts ...Option) *callable.Registries {
	regs := callable.NewRegistries()
	Register(regs, opts...)
	return regs
}
