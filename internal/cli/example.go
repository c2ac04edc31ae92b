package cli

import (
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/callable/zoo"
	"github.com/aretw0/wca/pkg/dsl"
	"github.com/aretw0/wca/pkg/fsm"
)

// ExampleName is the machine name written by the example command.
const ExampleName = "example"

// ExampleOptions tunes the example machine.
type ExampleOptions struct {
	// Detector names the object detection service. When empty, frames are
	// only decoded as images.
	Detector string
	// Class is the object class the detector waits for.
	Class string
}

// ExampleMachine builds a welcome, detect and confirm loop:
//
//	start --always--> detect --object seen--> done --always--> detect
func ExampleMachine(opts ExampleOptions) (*fsm.State, error) {
	var (
		proc callable.Processor
		seen callable.Predicate
		say  string
	)

	if opts.Detector != "" {
		class := opts.Class
		if class == "" {
			class = "person"
		}
		det, err := zoo.NewHTTPDetector(zoo.HTTPDetectorConfig{
			Service:       opts.Detector,
			ConfThreshold: 0.5,
		}, nil, nil)
		if err != nil {
			return nil, err
		}
		proc, seen, say = det, zoo.NewHasObjectClass(class), "I can see a "+class+"."
	} else {
		proc, seen, say = zoo.NewImageInfo(true), zoo.NewHasObjectClass(zoo.ImageWidthKey), "Got a picture."
	}

	b := dsl.New()
	b.State("start").
		On("detect").Named("welcome").When(zoo.NewAlways()).Say("Welcome! Show me something.").Done()
	b.State("detect").
		ProcessNamed("look", proc).
		On("done").Named("seen").WhenNamed("seen", seen).Say(say).Done()
	b.State("done").
		On("detect").Named("again").When(zoo.NewAlways()).Say("Show me another one.").Done()

	return b.Build("start")
}
